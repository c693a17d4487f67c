package nlp

import (
	"math"
	"sort"
	"strings"

	"quizforge/internal/domain"
)

const (
	DefaultDamping   = 0.85
	DefaultTolerance = 1e-4
	DefaultMaxIter   = 100
	MinSummary       = 5
)

// Ranker scores sentences with TextRank: weighted PageRank over a graph whose
// edges count shared content words.
type Ranker struct {
	Damping   float64
	Tolerance float64
	MaxIter   int
}

func NewRanker() *Ranker {
	return &Ranker{Damping: DefaultDamping, Tolerance: DefaultTolerance, MaxIter: DefaultMaxIter}
}

// Scored is a sentence with its centrality and document position.
type Scored struct {
	Text  string
	Index int
	Score float64
}

// SummaryCount is the number of sentences Top keeps out of total.
func SummaryCount(total int) int {
	return max(MinSummary, total/3)
}

// Top ranks sentences and returns the best SummaryCount of them, highest score
// first, ties broken by document order.
func (r *Ranker) Top(sentences []string) ([]string, error) {
	scored, err := r.Rank(sentences)
	if err != nil {
		return nil, err
	}
	k := min(SummaryCount(len(scored)), len(scored))
	out := make([]string, 0, k)
	for _, s := range scored[:k] {
		out = append(out, s.Text)
	}
	return out, nil
}

// Rank returns every sentence ordered by descending score.
func (r *Ranker) Rank(sentences []string) ([]Scored, error) {
	n := len(sentences)
	if n == 0 {
		return nil, domain.ErrNoSentences
	}

	terms := make([]map[string]struct{}, n)
	lengths := make([]int, n)
	for i, s := range sentences {
		terms[i], lengths[i] = contentTerms(s)
	}

	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := similarity(terms[i], terms[j], lengths[i], lengths[j])
			weights[i][j], weights[j][i] = w, w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores, err := r.pageRank(weights, outSum)
	if err != nil {
		return nil, err
	}

	out := make([]Scored, n)
	for i, s := range sentences {
		out[i] = Scored{Text: s, Index: i, Score: scores[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}

func (r *Ranker) pageRank(weights [][]float64, outSum []float64) ([]float64, error) {
	n := len(weights)
	d := r.Damping
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	next := make([]float64, n)

	for iter := 0; iter < r.MaxIter; iter++ {
		// Sentences with no edges spread their mass evenly.
		dangling := 0.0
		for j := 0; j < n; j++ {
			if outSum[j] == 0 {
				dangling += scores[j]
			}
		}
		delta := 0.0
		for i := 0; i < n; i++ {
			sum := dangling / float64(n)
			for j := 0; j < n; j++ {
				if w := weights[j][i]; w > 0 {
					sum += w / outSum[j] * scores[j]
				}
			}
			next[i] = (1-d)/float64(n) + d*sum
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if delta < r.Tolerance {
			return scores, nil
		}
	}
	return nil, domain.ErrNoConvergence
}

func similarity(a, b map[string]struct{}, la, lb int) float64 {
	if la == 0 || lb == 0 {
		return 0
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	denom := math.Log(float64(la)) + math.Log(float64(lb))
	if denom <= 0 {
		return float64(shared)
	}
	return float64(shared) / denom
}

// contentTerms returns the distinct non-stopword terms of s and its word count.
func contentTerms(s string) (map[string]struct{}, int) {
	set := make(map[string]struct{})
	count := 0
	for _, w := range Words(strings.ToLower(s)) {
		if !isWordToken(w) {
			continue
		}
		count++
		if _, stop := stopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set, count
}

func isWordToken(w string) bool {
	for _, r := range w {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during
each few for from further had has have having he her here hers herself him
himself his how i if in into is it its itself just me more most my myself no nor
not now of off on once only or other our ours ourselves out over own same she
should so some such than that the their theirs them themselves then there these
they this those through to too under until up very was we were what when where
which while who whom why will with would you your yours yourself yourselves`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
