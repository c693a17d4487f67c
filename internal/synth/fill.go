package synth

import (
	"iter"
	"regexp"

	"quizforge/internal/domain"
)

var fillWordRe = regexp.MustCompile(`\b([A-Za-z]{4,})\b`)

// FillBlank blanks the first word of four or more letters.
type FillBlank struct{}

func NewFillBlank() *FillBlank { return &FillBlank{} }

func (*FillBlank) Type() domain.QuestionType { return domain.FillBlankType }

func (f *FillBlank) Generate(sentences []domain.Sentence) iter.Seq[domain.Question] {
	return func(yield func(domain.Question) bool) {
		for _, s := range sentences {
			loc := fillWordRe.FindStringSubmatchIndex(s.Text)
			if loc == nil {
				continue
			}
			answer := s.Text[loc[2]:loc[3]]
			prompt := s.Text[:loc[2]] + domain.Blank + s.Text[loc[3]:]
			if containsFold(prompt, answer) {
				continue
			}
			if !yield(domain.FillBlank{Text: prompt, Answer: answer}) {
				return
			}
		}
	}
}
