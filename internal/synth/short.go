package synth

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
)

const (
	minShortTokens = 6
	maxShortTokens = 25
)

var (
	// Lemmatized text carries "12." as "12 .".
	numberedOrCodeRe = regexp.MustCompile(`^(\d+\s*\.|[A-Za-z]{2,4}\d{2,})`)
	leadingNumberRe  = regexp.MustCompile(`^\d+\s*\.\s*`)
)

// ShortTemplates are the question frames; %s receives a verb from the sentence.
var ShortTemplates = [...]string{
	"Which activity is responsible for %s in software engineering?",
	"Which phase deals with %s during development?",
	"What ensures %s in software engineering?",
	"What concept is related to %s in software design?",
	"Which step focuses on %s within the project?",
}

// ShortAnswer asks for a noun of the sentence using a templated question
// anchored on one of its verbs.
type ShortAnswer struct {
	tagger nlp.Tagger
	rnd    Rand
	log    *logger.Logger
}

func NewShortAnswer(tagger nlp.Tagger, rnd Rand, log *logger.Logger) *ShortAnswer {
	if log == nil {
		log = logger.Nop()
	}
	return &ShortAnswer{tagger: tagger, rnd: rnd, log: log}
}

func (*ShortAnswer) Type() domain.QuestionType { return domain.ShortAnswerType }

func (sa *ShortAnswer) Generate(sentences []domain.Sentence) iter.Seq[domain.Question] {
	return func(yield func(domain.Question) bool) {
		for _, s := range sentences {
			q, ok := sa.build(s)
			if !ok {
				continue
			}
			if !yield(q) {
				return
			}
		}
	}
}

func (sa *ShortAnswer) build(s domain.Sentence) (domain.ShortAnswer, bool) {
	if n := len(s.Tokens); n < minShortTokens || n > maxShortTokens {
		return domain.ShortAnswer{}, false
	}
	if numberedOrCodeRe.MatchString(s.Text) {
		return domain.ShortAnswer{}, false
	}
	text := strings.Trim(leadingNumberRe.ReplaceAllString(s.Text, ""), " .")

	tagged, err := sa.tagger.Tag(text)
	if err != nil {
		sa.log.Debug("short answer: tagging failed, skipping sentence", "sentence", text, "error", err)
		return domain.ShortAnswer{}, false
	}
	nouns := wordsOnly(nlp.Nouns(tagged))
	verbs := wordsOnly(nlp.Verbs(tagged))
	if len(nouns) == 0 || len(verbs) == 0 {
		return domain.ShortAnswer{}, false
	}

	answer := nouns[sa.rnd.IntN(len(nouns))]
	anchor := verbs[sa.rnd.IntN(len(verbs))]
	question := fmt.Sprintf(ShortTemplates[sa.rnd.IntN(len(ShortTemplates))], anchor)
	if containsFold(question, answer) {
		return domain.ShortAnswer{}, false
	}
	return domain.ShortAnswer{Text: question, Answer: answer}, true
}
