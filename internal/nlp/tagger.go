package nlp

import (
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// TaggedToken is a token with its Penn Treebank tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// IsNoun reports common and proper nouns (NN, NNS, NNP, NNPS).
func (t TaggedToken) IsNoun() bool { return strings.HasPrefix(t.Tag, "NN") }

// IsVerb reports any verb form (VB, VBD, VBG, VBN, VBP, VBZ).
func (t TaggedToken) IsVerb() bool { return strings.HasPrefix(t.Tag, "VB") }

// Tagger assigns part-of-speech tags to the tokens of one sentence.
type Tagger interface {
	Tag(sentence string) ([]TaggedToken, error)
}

// ProseTagger tags with the prose averaged perceptron model. It holds no
// state and is safe to share across runs.
type ProseTagger struct{}

func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

func (*ProseTagger) Tag(sentence string) ([]TaggedToken, error) {
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	toks := doc.Tokens()
	out := make([]TaggedToken, 0, len(toks))
	for _, tok := range toks {
		out = append(out, TaggedToken{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}

// MemoTagger memoizes another Tagger per sentence, since several synthesizers
// tag the same input. Build one per run; it never evicts.
type MemoTagger struct {
	next  Tagger
	mu    sync.Mutex
	cache map[string][]TaggedToken
}

func NewMemoTagger(next Tagger) *MemoTagger {
	return &MemoTagger{next: next, cache: make(map[string][]TaggedToken)}
}

func (m *MemoTagger) Tag(sentence string) ([]TaggedToken, error) {
	m.mu.Lock()
	cached, ok := m.cache[sentence]
	m.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := m.next.Tag(sentence)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.cache[sentence] = out
	m.mu.Unlock()
	return out, nil
}

// Len reports how many sentences are memoized.
func (m *MemoTagger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// Nouns returns the noun tokens of tagged, in order.
func Nouns(tagged []TaggedToken) []string {
	var out []string
	for _, t := range tagged {
		if t.IsNoun() {
			out = append(out, t.Text)
		}
	}
	return out
}

// Verbs returns the verb tokens of tagged, in order.
func Verbs(tagged []TaggedToken) []string {
	var out []string
	for _, t := range tagged {
		if t.IsVerb() {
			out = append(out, t.Text)
		}
	}
	return out
}
