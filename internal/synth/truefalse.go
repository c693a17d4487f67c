package synth

import (
	"iter"

	"quizforge/internal/domain"
)

// minStatementTokens is exclusive: statements need more tokens than this.
const minStatementTokens = 4

// TrueFalse turns every long enough sentence into a statement. The truth
// label is a coin flip; nothing evaluates the statement itself.
type TrueFalse struct {
	rnd Rand
}

func NewTrueFalse(rnd Rand) *TrueFalse { return &TrueFalse{rnd: rnd} }

func (*TrueFalse) Type() domain.QuestionType { return domain.TrueFalseType }

func (t *TrueFalse) Generate(sentences []domain.Sentence) iter.Seq[domain.Question] {
	return func(yield func(domain.Question) bool) {
		for _, s := range sentences {
			if len(s.Tokens) <= minStatementTokens {
				continue
			}
			q := domain.TrueFalse{Statement: s.Text, Answer: t.rnd.IntN(2) == 1}
			if !yield(q) {
				return
			}
		}
	}
}
