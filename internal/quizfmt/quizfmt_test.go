package quizfmt

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"quizforge/internal/domain"
)

func sampleBatch() []domain.Question {
	return []domain.Question{
		domain.MCQ{Text: "the _____ sit on the mat .", Answer: "cat", Options: [4]string{"cion", "cat", "cated", "cating"}},
		domain.MCQ{Text: "the _____ run in the park .", Answer: "dog", Options: [4]string{"dog", "doging", "doged", "dion"}},
		domain.FillBlank{Text: "the _____ sort the list", Answer: "algorithm"},
		domain.TrueFalse{Statement: "the cat sit on the mat .", Answer: true},
		domain.TrueFalse{Statement: "the dog run in the park .", Answer: false},
		domain.ShortAnswer{Text: "What ensures translates in software engineering?", Answer: "compiler"},
	}
}

func TestSerializeFormat(t *testing.T) {
	got := Serialize(sampleBatch()[:1])
	want := "1) (MCQ) the _____ sit on the mat .\n  - cion\n  - cat\n  - cated\n  - cating\nAnswer: cat\n\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseIsLeftInverseOfSerialize(t *testing.T) {
	batch := sampleBatch()
	records, err := Parse(Serialize(batch))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != len(batch) {
		t.Fatalf("expected %d records, got %d", len(batch), len(records))
	}
	for i, r := range records {
		if r.Number != i+1 {
			t.Fatalf("record %d numbered %d", i, r.Number)
		}
		q, err := r.Question()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if q != batch[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, batch[i], q)
		}
	}
}

func TestParseToleratesLooseLayout(t *testing.T) {
	text := "\r\n\r\n(Fill-in-the-Blank) the _____ sort the list   \r\nAnswer: algorithm  \r\n\r\n\r\n" +
		"7) (true/false) True or False: water is wet\nAnswer: True\n\n\n"
	records, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].Number != 0 || records[0].Text != "the _____ sort the list" || records[0].Answer != "algorithm" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].Number != 7 || records[1].Type != domain.TrueFalseType {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestParseReportsMalformedRecordsAndKeepsGoodOnes(t *testing.T) {
	text := "1) (MCQ) no answer here\n  - a\n  - b\n\n" +
		"2) (Essay) what is love\nAnswer: baby\n\n" +
		"3) (Short Answer) What ensures testing in software engineering?\nAnswer: suite\n\n"
	records, err := Parse(text)
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 1 {
		t.Fatalf("expected ParseError at line 1, got %v", err)
	}
	if !strings.Contains(err.Error(), "Essay") {
		t.Fatalf("expected unknown tag reported, got %v", err)
	}
	if len(records) != 1 || records[0].Answer != "suite" {
		t.Fatalf("expected the well-formed record kept, got %+v", records)
	}
}

func TestRecordQuestionRejectsBadTrueFalse(t *testing.T) {
	r := Record{Type: domain.TrueFalseType, Text: "True or False: x", Answer: "maybe"}
	if _, err := r.Question(); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestGroupByTypeCanonicalOrder(t *testing.T) {
	batch := sampleBatch()
	// Interleave types so grouping has work to do.
	mixed := []domain.Question{batch[5], batch[3], batch[0], batch[2], batch[4], batch[1]}
	g, err := GroupByType(Serialize(mixed))
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	want := []domain.QuestionType{domain.MCQType, domain.FillBlankType, domain.TrueFalseType, domain.ShortAnswerType}
	if !slices.Equal(g.Types(), want) {
		t.Fatalf("expected %v, got %v", want, g.Types())
	}
	flat := g.Flat()
	if flat[0].Answer != "cat" || flat[1].Answer != "dog" || flat[3].Answer != "True" || flat[4].Answer != "False" {
		t.Fatalf("expected relative order kept within buckets, got %+v", flat)
	}
	for i, r := range flat {
		if r.Number != i+1 {
			t.Fatalf("expected renumbering, record %d has %d", i, r.Number)
		}
	}
}

func TestGroupedSkipsEmptyBuckets(t *testing.T) {
	g := Group([]Record{{Type: domain.ShortAnswerType, Text: "q", Answer: "a"}})
	if types := g.Types(); len(types) != 1 || types[0] != domain.ShortAnswerType {
		t.Fatalf("unexpected types %v", types)
	}
	if !strings.HasPrefix(g.String(), "1) (Short Answer) q\n") {
		t.Fatalf("unexpected listing %q", g.String())
	}
}

func manyRecords() []Record {
	var rs []Record
	for i := 0; i < 12; i++ {
		rs = append(rs, Record{Type: domain.FillBlankType, Text: "fill " + string(rune('a'+i)), Answer: "x"})
	}
	for i := 0; i < 12; i++ {
		rs = append(rs, Record{Type: domain.TrueFalseType, Text: "tf " + string(rune('a'+i)), Answer: "True"})
	}
	return rs
}

func texts(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text
	}
	return out
}

func TestRandomizeWithinTypesIsPerBucketPermutation(t *testing.T) {
	g := Group(manyRecords())
	before := texts(g.Flat())

	out := RandomizeWithinTypes(g, rand.New(rand.NewPCG(11, 12)))

	if !slices.Equal(texts(g.Flat()), before) {
		t.Fatalf("input grouping was mutated")
	}
	if !slices.Equal(out.Types(), g.Types()) {
		t.Fatalf("bucket order changed: %v", out.Types())
	}
	for _, typ := range g.Types() {
		a, b := texts(g[typ]), texts(out[typ])
		if len(a) != len(b) {
			t.Fatalf("%s: bucket size changed", typ)
		}
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			t.Fatalf("%s: not a permutation", typ)
		}
		for _, r := range out[typ] {
			if r.Type != typ {
				t.Fatalf("record %q crossed into %s", r.Text, typ)
			}
		}
	}
}

func TestRandomizeWithinTypesVariesWithSeed(t *testing.T) {
	g := Group(manyRecords())
	a := texts(RandomizeWithinTypes(g, rand.New(rand.NewPCG(1, 1))).Flat())
	b := texts(RandomizeWithinTypes(g, rand.New(rand.NewPCG(2, 2))).Flat())
	c := texts(RandomizeWithinTypes(g, rand.New(rand.NewPCG(1, 1))).Flat())
	if !slices.Equal(a, c) {
		t.Fatalf("expected same seed to reproduce order")
	}
	if slices.Equal(a, b) {
		t.Fatalf("expected different seeds to produce different orders")
	}
}
