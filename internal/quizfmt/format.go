// Package quizfmt reads and writes the flat question listing:
//
//	1) (MCQ) the _____ sat on the mat .
//	  - cat
//	  - cating
//	  - cated
//	  - cion
//	Answer: cat
//
// Records are separated by a blank line. Numbers are optional on read.
package quizfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"quizforge/internal/domain"
)

// Record is one parsed or to-be-written listing entry.
type Record struct {
	Number  int
	Type    domain.QuestionType
	Text    string
	Options []string
	Answer  string
}

// RecordOf flattens a question into its listing form.
func RecordOf(q domain.Question) Record {
	r := Record{Type: q.Type(), Text: q.Prompt(), Answer: q.AnswerText()}
	if m, ok := q.(domain.MCQ); ok {
		r.Options = append([]string(nil), m.Options[:]...)
	}
	return r
}

// Question rebuilds the typed question a record was written from.
func (r Record) Question() (domain.Question, error) {
	switch r.Type {
	case domain.MCQType:
		if len(r.Options) != 4 {
			return nil, fmt.Errorf("%w: mcq needs 4 options, got %d", domain.ErrMalformedRecord, len(r.Options))
		}
		var opts [4]string
		copy(opts[:], r.Options)
		return domain.MCQ{Text: r.Text, Answer: r.Answer, Options: opts}, nil
	case domain.FillBlankType:
		return domain.FillBlank{Text: r.Text, Answer: r.Answer}, nil
	case domain.TrueFalseType:
		var answer bool
		switch {
		case strings.EqualFold(r.Answer, "true"):
			answer = true
		case strings.EqualFold(r.Answer, "false"):
		default:
			return nil, fmt.Errorf("%w: true/false answer %q", domain.ErrMalformedRecord, r.Answer)
		}
		return domain.TrueFalse{Statement: strings.TrimPrefix(r.Text, domain.TrueFalsePrefix), Answer: answer}, nil
	case domain.ShortAnswerType:
		return domain.ShortAnswer{Text: r.Text, Answer: r.Answer}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %d", domain.ErrMalformedRecord, r.Type)
}

// Serialize renders batch as a listing numbered from 1.
func Serialize(batch []domain.Question) string {
	var b strings.Builder
	_ = Write(&b, batch)
	return b.String()
}

// Write streams batch to w as a listing numbered from 1.
func Write(w io.Writer, batch []domain.Question) error {
	records := make([]Record, 0, len(batch))
	for _, q := range batch {
		records = append(records, RecordOf(q))
	}
	return WriteRecords(w, records)
}

// WriteRecords writes records numbered by position, ignoring Record.Number.
func WriteRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range records {
		fmt.Fprintf(bw, "%d) (%s) %s\n", i+1, r.Type.Tag(), r.Text)
		for _, o := range r.Options {
			fmt.Fprintf(bw, "  - %s\n", o)
		}
		fmt.Fprintf(bw, "Answer: %s\n\n", r.Answer)
	}
	return bw.Flush()
}

// FormatRecords is WriteRecords into a string.
func FormatRecords(records []Record) string {
	var b strings.Builder
	_ = WriteRecords(&b, records)
	return b.String()
}
