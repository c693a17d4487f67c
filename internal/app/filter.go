package app

import (
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/synth"
)

// Filter selects which question types a run synthesizes.
type Filter struct {
	Name  string
	Types []domain.QuestionType
}

var filterSynonyms = map[string]Filter{
	"mcq": {Name: "mcq", Types: []domain.QuestionType{domain.MCQType}},

	"fill":               {Name: "fill", Types: []domain.QuestionType{domain.FillBlankType}},
	"fill_blanks":        {Name: "fill", Types: []domain.QuestionType{domain.FillBlankType}},
	"fill-in-the-blanks": {Name: "fill", Types: []domain.QuestionType{domain.FillBlankType}},
	"fill-in-the-blank":  {Name: "fill", Types: []domain.QuestionType{domain.FillBlankType}},
	"fill in the blanks": {Name: "fill", Types: []domain.QuestionType{domain.FillBlankType}},

	"tf":            {Name: "tf", Types: []domain.QuestionType{domain.TrueFalseType}},
	"true_false":    {Name: "tf", Types: []domain.QuestionType{domain.TrueFalseType}},
	"true/false":    {Name: "tf", Types: []domain.QuestionType{domain.TrueFalseType}},
	"truefalse":     {Name: "tf", Types: []domain.QuestionType{domain.TrueFalseType}},
	"true or false": {Name: "tf", Types: []domain.QuestionType{domain.TrueFalseType}},

	"short":        {Name: "short", Types: []domain.QuestionType{domain.ShortAnswerType}},
	"short_answer": {Name: "short", Types: []domain.QuestionType{domain.ShortAnswerType}},
	"short answer": {Name: "short", Types: []domain.QuestionType{domain.ShortAnswerType}},
}

// AllTypes is the filter used for "all", the empty string and anything unrecognized.
var AllTypes = Filter{Name: "all", Types: domain.QuestionTypes}

// ParseFilter maps a user supplied question type to a Filter. It never fails.
func ParseFilter(s string) Filter {
	if f, ok := filterSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return AllTypes
}

func (f Filter) includes(t domain.QuestionType) bool {
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}

// Select keeps the synthesizers whose type passes the filter, in their given order.
func (f Filter) Select(all []synth.Synthesizer) []synth.Synthesizer {
	out := make([]synth.Synthesizer, 0, len(all))
	for _, s := range all {
		if f.includes(s.Type()) {
			out = append(out, s)
		}
	}
	return out
}
