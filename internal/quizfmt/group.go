package quizfmt

import (
	"slices"

	"quizforge/internal/domain"
)

// Shuffler permutes n elements through swap. *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Grouped buckets records by question type.
type Grouped map[domain.QuestionType][]Record

// Group buckets records, keeping their relative order inside each bucket.
func Group(records []Record) Grouped {
	g := make(Grouped, len(domain.QuestionTypes))
	for _, r := range records {
		g[r.Type] = append(g[r.Type], r)
	}
	return g
}

// GroupByType parses text and buckets the well-formed records. The error is
// whatever Parse reported.
func GroupByType(text string) (Grouped, error) {
	records, err := Parse(text)
	return Group(records), err
}

// Types returns the non-empty buckets in canonical order.
func (g Grouped) Types() []domain.QuestionType {
	var out []domain.QuestionType
	for _, t := range domain.QuestionTypes {
		if len(g[t]) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func (g Grouped) Len() int {
	n := 0
	for _, rs := range g {
		n += len(rs)
	}
	return n
}

// Flat lists every record bucket by bucket, renumbered from 1.
func (g Grouped) Flat() []Record {
	out := make([]Record, 0, g.Len())
	for _, t := range g.Types() {
		for _, r := range g[t] {
			r.Number = len(out) + 1
			out = append(out, r)
		}
	}
	return out
}

// String renders Flat as a listing.
func (g Grouped) String() string {
	return FormatRecords(g.Flat())
}

// RandomizeWithinTypes shuffles each bucket independently. Records never move
// across buckets and g is left untouched.
func RandomizeWithinTypes(g Grouped, rnd Shuffler) Grouped {
	out := make(Grouped, len(g))
	for _, t := range domain.QuestionTypes {
		rs := g[t]
		if len(rs) == 0 {
			continue
		}
		cp := slices.Clone(rs)
		rnd.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
		out[t] = cp
	}
	return out
}
