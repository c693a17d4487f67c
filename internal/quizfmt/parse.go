package quizfmt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"quizforge/internal/domain"
)

var (
	headerRe = regexp.MustCompile(`^(?:(\d+)\)\s*)?\(([^)]+)\)\s?(.*)$`)
	optionRe = regexp.MustCompile(`^\s*-(?:\s+(.*))?$`)
	answerRe = regexp.MustCompile(`^Answer:\s*(.*)$`)
)

// ParseError describes a record that could not be read.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return domain.ErrMalformedRecord }

// Parse reads a listing. Malformed records are reported as joined
// *ParseError values; every well-formed record is still returned.
func Parse(text string) ([]Record, error) {
	var (
		records []Record
		errs    []error
		block   []string
		start   int
	)
	flush := func() {
		if len(block) == 0 {
			return
		}
		r, err := parseBlock(block, start)
		if err != nil {
			errs = append(errs, err)
		} else {
			records = append(records, r)
		}
		block = block[:0]
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(block) == 0 {
			start = i + 1
		}
		block = append(block, line)
	}
	flush()

	return records, errors.Join(errs...)
}

func parseBlock(lines []string, start int) (Record, error) {
	m := headerRe.FindStringSubmatch(lines[0])
	if m == nil {
		return Record{}, &ParseError{Line: start, Reason: fmt.Sprintf("no type header in %q", lines[0])}
	}
	typ, ok := domain.ParseTypeTag(m[2])
	if !ok {
		return Record{}, &ParseError{Line: start, Reason: fmt.Sprintf("unknown question type %q", m[2])}
	}
	r := Record{Type: typ, Text: strings.TrimSpace(m[3])}
	if m[1] != "" {
		r.Number, _ = strconv.Atoi(m[1])
	}

	answered := false
	for i, line := range lines[1:] {
		if answered {
			return Record{}, &ParseError{Line: start + i + 1, Reason: "text after answer line"}
		}
		if am := answerRe.FindStringSubmatch(line); am != nil {
			r.Answer = strings.TrimSpace(am[1])
			answered = true
			continue
		}
		if om := optionRe.FindStringSubmatch(line); om != nil {
			r.Options = append(r.Options, strings.TrimSpace(om[1]))
			continue
		}
		if len(r.Options) > 0 {
			return Record{}, &ParseError{Line: start + i + 1, Reason: fmt.Sprintf("unexpected line %q", line)}
		}
		// Wrapped question text.
		r.Text = strings.TrimSpace(r.Text + " " + strings.TrimSpace(line))
	}
	if !answered {
		return Record{}, &ParseError{Line: start, Reason: "missing Answer line"}
	}
	return r, nil
}
