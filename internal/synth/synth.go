// Package synth turns normalized sentences into quiz questions. Each
// synthesizer is pure apart from its random source and yields lazily.
package synth

import (
	"iter"
	"regexp"
	"strings"
	"unicode"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
)

// Rand is the randomness a synthesizer consumes. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type Synthesizer interface {
	Type() domain.QuestionType
	Generate(sentences []domain.Sentence) iter.Seq[domain.Question]
}

// Default returns one synthesizer per question type in canonical order.
func Default(tagger nlp.Tagger, rnd Rand, log *logger.Logger) []Synthesizer {
	return []Synthesizer{
		NewMCQ(tagger, rnd, log),
		NewFillBlank(),
		NewTrueFalse(rnd),
		NewShortAnswer(tagger, rnd, log),
	}
}

// Chain concatenates the output of each synthesizer over the same sentences.
func Chain(sentences []domain.Sentence, synths ...Synthesizer) iter.Seq[domain.Question] {
	return func(yield func(domain.Question) bool) {
		for _, s := range synths {
			for q := range s.Generate(sentences) {
				if !yield(q) {
					return
				}
			}
		}
	}
}

// blankFirst replaces the first word-bounded occurrence of word in text with
// the blank marker, falling back to a plain substring match.
func blankFirst(text, word string) (string, bool) {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err == nil {
		if loc := re.FindStringIndex(text); loc != nil {
			return text[:loc[0]] + domain.Blank + text[loc[1]:], true
		}
	}
	if i := strings.Index(text, word); i >= 0 {
		return text[:i] + domain.Blank + text[i+len(word):], true
	}
	return text, false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func hasLetter(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}

func wordsOnly(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if hasLetter(t) && t != domain.Blank {
			out = append(out, t)
		}
	}
	return out
}
