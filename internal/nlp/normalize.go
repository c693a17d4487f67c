package nlp

import (
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
)

// MinSentenceTokens is the shortest sentence, in whitespace tokens, kept by Normalize.
const MinSentenceTokens = 5

// Normalized is the output of one normalization pass.
type Normalized struct {
	// Sentences are lemmatized, in document order.
	Sentences []domain.Sentence
	// Ranked holds the most central sentences, or the lemmatized list when ranking failed.
	Ranked  domain.Outcome[[]domain.Sentence]
	Cleaned string
}

type Normalizer struct {
	segmenter  Segmenter
	lemmatizer Lemmatizer
	ranker     *Ranker
	log        *logger.Logger
}

func NewNormalizer(seg Segmenter, lem Lemmatizer, ranker *Ranker, log *logger.Logger) *Normalizer {
	if ranker == nil {
		ranker = NewRanker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{segmenter: seg, lemmatizer: lem, ranker: ranker, log: log}
}

// NewDefaultNormalizer wires the Punkt segmenter and the golem lemmatizer.
func NewDefaultNormalizer(log *logger.Logger) (*Normalizer, error) {
	seg, err := NewPunktSegmenter()
	if err != nil {
		return nil, err
	}
	lem, err := NewGolemLemmatizer()
	if err != nil {
		return nil, err
	}
	return NewNormalizer(seg, lem, NewRanker(), log), nil
}

// Normalize cleans raw, splits it into sentences, drops short ones, lemmatizes
// the rest and ranks the cleaned sentences. Only unreadable input is an error.
func (n *Normalizer) Normalize(raw string) (Normalized, error) {
	if err := CheckReadable(raw); err != nil {
		return Normalized{}, err
	}
	cleaned := Clean(raw)

	segmented := n.segmenter.Split(cleaned)
	kept := keepLong(segmented)
	if len(kept) == 0 {
		n.log.Debug("segmenter produced no usable sentences, splitting on punctuation", "segmented", len(segmented))
		kept = keepLong(FallbackSplit(cleaned))
	}

	lemmatized := make([]domain.Sentence, 0, len(kept))
	for _, s := range kept {
		lemmatized = append(lemmatized, domain.NewSentence(n.lemmatize(s)))
	}

	return Normalized{
		Sentences: lemmatized,
		Ranked:    n.rank(segmented, lemmatized),
		Cleaned:   cleaned,
	}, nil
}

func (n *Normalizer) rank(segmented []string, fallback []domain.Sentence) domain.Outcome[[]domain.Sentence] {
	top, err := n.ranker.Top(segmented)
	if err != nil {
		n.log.Warn("sentence ranking failed, using lemmatized sentences", "error", err)
		return domain.Degraded(fallback, err.Error())
	}
	ranked := make([]domain.Sentence, 0, len(top))
	for _, s := range top {
		ranked = append(ranked, domain.NewSentence(s))
	}
	return domain.Ok(ranked)
}

func (n *Normalizer) lemmatize(sentence string) string {
	words := Words(sentence)
	out := make([]string, 0, len(words))
	for _, w := range words {
		lemma, err := n.lemmatizer.Lemma(w)
		if err != nil || lemma == "" {
			out = append(out, w)
			continue
		}
		out = append(out, lemma)
	}
	return strings.Join(out, " ")
}

func keepLong(sentences []string) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if len(strings.Fields(s)) >= MinSentenceTokens {
			out = append(out, s)
		}
	}
	return out
}
