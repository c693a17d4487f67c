package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits text into sentences.
type Segmenter interface {
	Split(text string) []string
}

// PunktSegmenter uses the pre-trained English Punkt model.
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktSegmenter() (*PunktSegmenter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tok}, nil
}

func (p *PunktSegmenter) Split(text string) []string {
	out := make([]string, 0)
	for _, s := range p.tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var fallbackSplitRe = regexp.MustCompile(`[.;:\n]`)

// FallbackSplit cuts on '.', ';', ':' and newlines. It is the last resort when
// the segmenter yields nothing usable.
func FallbackSplit(text string) []string {
	parts := fallbackSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
