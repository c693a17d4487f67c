package synth

import (
	"iter"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
)

// MCQ blanks a random noun and offers it among three suffix-mangled distractors.
type MCQ struct {
	tagger nlp.Tagger
	rnd    Rand
	log    *logger.Logger
}

func NewMCQ(tagger nlp.Tagger, rnd Rand, log *logger.Logger) *MCQ {
	if log == nil {
		log = logger.Nop()
	}
	return &MCQ{tagger: tagger, rnd: rnd, log: log}
}

func (m *MCQ) Type() domain.QuestionType { return domain.MCQType }

func (m *MCQ) Generate(sentences []domain.Sentence) iter.Seq[domain.Question] {
	return func(yield func(domain.Question) bool) {
		for _, s := range sentences {
			q, ok := m.build(s)
			if !ok {
				continue
			}
			if !yield(q) {
				return
			}
		}
	}
}

func (m *MCQ) build(s domain.Sentence) (domain.MCQ, bool) {
	tagged, err := m.tagger.Tag(s.Text)
	if err != nil {
		m.log.Debug("mcq: tagging failed, skipping sentence", "sentence", s.Text, "error", err)
		return domain.MCQ{}, false
	}
	nouns := wordsOnly(nlp.Nouns(tagged))
	if len(nouns) == 0 {
		return domain.MCQ{}, false
	}
	answer := nouns[m.rnd.IntN(len(nouns))]
	text, ok := blankFirst(s.Text, answer)
	if !ok {
		return domain.MCQ{}, false
	}

	d := Distractors(answer)
	opts := [4]string{answer, d[0], d[1], d[2]}
	m.rnd.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return domain.MCQ{Text: text, Answer: answer, Options: opts}, true
}

// Distractors derives three wrong options from answer. Any option that would
// equal the answer is replaced so the answer is offered exactly once.
func Distractors(answer string) [3]string {
	r := []rune(answer)
	out := [3]string{
		answer + "ing",
		answer + "ed",
		string(r[:len(r)/2]) + "ion",
	}
	for i, d := range out {
		if strings.EqualFold(d, answer) {
			out[i] = answer + "s"
		}
	}
	return out
}
