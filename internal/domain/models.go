package domain

import (
	"strings"
	"time"
)

// Blank replaces the answer inside MCQ and fill-in-the-blank prompts.
const Blank = "_____"

// TrueFalsePrefix starts every true/false prompt.
const TrueFalsePrefix = "True or False: "

// QuestionType tags one of the four question families.
type QuestionType int

const (
	MCQType QuestionType = iota
	FillBlankType
	TrueFalseType
	ShortAnswerType
)

// QuestionTypes lists every type in canonical bucket order.
var QuestionTypes = []QuestionType{MCQType, FillBlankType, TrueFalseType, ShortAnswerType}

// Tag returns the wire tag used in the flat question listing.
func (t QuestionType) Tag() string {
	switch t {
	case MCQType:
		return "MCQ"
	case FillBlankType:
		return "Fill-in-the-Blank"
	case TrueFalseType:
		return "True/False"
	case ShortAnswerType:
		return "Short Answer"
	default:
		return "Unknown"
	}
}

func (t QuestionType) String() string { return t.Tag() }

// ParseTypeTag maps a wire tag back to its type.
func ParseTypeTag(tag string) (QuestionType, bool) {
	for _, t := range QuestionTypes {
		if strings.EqualFold(strings.TrimSpace(tag), t.Tag()) {
			return t, true
		}
	}
	return 0, false
}

// Sentence is one normalized sentence. Tokens are whitespace-delimited words.
type Sentence struct {
	Text   string
	Tokens []string
}

// NewSentence builds a Sentence from normalized text.
func NewSentence(text string) Sentence {
	text = strings.Join(strings.Fields(text), " ")
	return Sentence{Text: text, Tokens: strings.Fields(text)}
}

// Question is a sealed union over MCQ, FillBlank, TrueFalse and ShortAnswer.
type Question interface {
	Type() QuestionType
	Prompt() string
	AnswerText() string
	isQuestion()
}

// MCQ is a multiple-choice question with exactly four options.
type MCQ struct {
	Text    string
	Answer  string
	Options [4]string
}

func (MCQ) Type() QuestionType { return MCQType }
func (q MCQ) Prompt() string { return q.Text }
func (q MCQ) AnswerText() string { return q.Answer }
func (MCQ) isQuestion() {}

// FillBlank is a cloze question; the answer never appears in Text.
type FillBlank struct {
	Text   string
	Answer string
}

func (FillBlank) Type() QuestionType { return FillBlankType }
func (q FillBlank) Prompt() string { return q.Text }
func (q FillBlank) AnswerText() string { return q.Answer }
func (FillBlank) isQuestion() {}

// TrueFalse carries a statement with a randomly assigned truth label.
// The label is not derived from the statement.
type TrueFalse struct {
	Statement string
	Answer    bool
}

func (TrueFalse) Type() QuestionType { return TrueFalseType }
func (q TrueFalse) Prompt() string { return TrueFalsePrefix + q.Statement }
func (q TrueFalse) AnswerText() string {
	if q.Answer {
		return "True"
	}
	return "False"
}
func (TrueFalse) isQuestion() {}

// ShortAnswer is a templated open question with a one-word answer.
type ShortAnswer struct {
	Text   string
	Answer string
}

func (ShortAnswer) Type() QuestionType { return ShortAnswerType }
func (q ShortAnswer) Prompt() string { return q.Text }
func (q ShortAnswer) AnswerText() string { return q.Answer }
func (ShortAnswer) isQuestion() {}

// CountByType tallies questions per type.
func CountByType(qs []Question) map[QuestionType]int {
	counts := make(map[QuestionType]int, len(QuestionTypes))
	for _, q := range qs {
		counts[q.Type()]++
	}
	return counts
}

// InputKind says whether an input is a PDF file or literal text.
type InputKind string

const (
	InputPDF  InputKind = "pdf"
	InputText InputKind = "text"
)

// Input is a resolved pipeline input.
type Input struct {
	Kind InputKind
	Path string
	Text string
}

// RunState is a pipeline state machine position.
type RunState string

const (
	StateIdle         RunState = "idle"
	StateExtracting   RunState = "extracting"
	StateNormalizing  RunState = "normalizing"
	StateSynthesizing RunState = "synthesizing"
	StateRandomizing  RunState = "randomizing"
	StateRendering    RunState = "rendering"
	StateDone         RunState = "done"
	StateFailed       RunState = "failed"
)

// Terminal reports whether no further transition follows.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// RunStatus is the externally visible snapshot of a run.
type RunStatus struct {
	RunID     string         `json:"runId"`
	State     RunState       `json:"state"`
	Filter    string         `json:"filter"`
	Counts    map[string]int `json:"counts,omitempty"`
	Degraded  []string       `json:"degraded,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
