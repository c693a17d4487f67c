package nlp

import (
	"errors"
	"strings"
	"testing"

	"quizforge/internal/domain"
)

type splitSegmenter struct{}

func (splitSegmenter) Split(text string) []string {
	var out []string
	for _, s := range strings.SplitAfter(text, ". ") {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type emptySegmenter struct{}

func (emptySegmenter) Split(string) []string { return nil }

type mapLemmatizer struct {
	lemmas map[string]string
	fail   map[string]bool
}

func (m mapLemmatizer) Lemma(token string) (string, error) {
	if m.fail[token] {
		return "", ErrNoLemma
	}
	if l, ok := m.lemmas[token]; ok {
		return l, nil
	}
	return token, nil
}

func TestCleanStripsPageNumbersAndSymbols(t *testing.T) {
	got := Clean("Page 3\nHello   WORLD @#$ test.\n\npage12 Done!")
	if got != "hello world test. done!" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestCheckReadable(t *testing.T) {
	if err := CheckReadable("  a b c \n "); !errors.Is(err, domain.ErrUnreadableContent) {
		t.Fatalf("expected ErrUnreadableContent, got %v", err)
	}
	if err := CheckReadable("0123456789"); err != nil {
		t.Fatalf("expected ten characters to be readable, got %v", err)
	}
}

func TestWordsSplitsPunctuation(t *testing.T) {
	got := Words("the cat's well-known toy, (really).")
	want := []string{"the", "cat's", "well-known", "toy", ",", "(", "really", ")", "."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFallbackSplit(t *testing.T) {
	got := FallbackSplit("one two; three: four.\nfive")
	if len(got) != 4 || got[0] != "one two" || got[3] != "five" {
		t.Fatalf("unexpected fallback split %v", got)
	}
}

func TestNormalizeRejectsUnreadable(t *testing.T) {
	n := NewNormalizer(splitSegmenter{}, mapLemmatizer{}, nil, nil)
	if _, err := n.Normalize("   hi   "); !errors.Is(err, domain.ErrUnreadableContent) {
		t.Fatalf("expected ErrUnreadableContent, got %v", err)
	}
}

func TestNormalizeDropsShortSentencesAndLemmatizes(t *testing.T) {
	lem := mapLemmatizer{lemmas: map[string]string{"cats": "cat", "sat": "sit"}}
	n := NewNormalizer(splitSegmenter{}, lem, nil, nil)

	res, err := n.Normalize("The cats sat on the mat. Too short here. The dog ran in the park.")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(res.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(res.Sentences), res.Sentences)
	}
	if res.Sentences[0].Text != "the cat sit on the mat ." {
		t.Fatalf("unexpected lemmatized text %q", res.Sentences[0].Text)
	}
	for _, s := range res.Sentences {
		if len(s.Tokens) < MinSentenceTokens {
			t.Fatalf("sentence %q kept with %d tokens", s.Text, len(s.Tokens))
		}
	}
	if res.Cleaned != "the cats sat on the mat. too short here. the dog ran in the park." {
		t.Fatalf("unexpected cleaned text %q", res.Cleaned)
	}
}

func TestNormalizeFallsBackToPunctuationSplit(t *testing.T) {
	n := NewNormalizer(emptySegmenter{}, mapLemmatizer{}, nil, nil)
	res, err := n.Normalize("alpha beta gamma delta epsilon; zeta eta theta iota kappa: no")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(res.Sentences) != 2 {
		t.Fatalf("expected 2 fallback sentences, got %+v", res.Sentences)
	}
	if !res.Ranked.IsDegraded() {
		t.Fatalf("expected degraded ranking when segmenter yields nothing")
	}
}

func TestNormalizeLemmaFailureKeepsToken(t *testing.T) {
	lem := mapLemmatizer{fail: map[string]bool{"running": true}}
	n := NewNormalizer(splitSegmenter{}, lem, nil, nil)
	res, err := n.Normalize("the running man owns five dogs")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(res.Sentences) != 1 || res.Sentences[0].Tokens[1] != "running" {
		t.Fatalf("expected failing token to survive, got %+v", res.Sentences)
	}
}

func TestNormalizeRankingFailureDegrades(t *testing.T) {
	n := NewNormalizer(splitSegmenter{}, mapLemmatizer{}, &Ranker{Damping: DefaultDamping, Tolerance: DefaultTolerance}, nil)
	res, err := n.Normalize("the cat sat on the mat. the dog ran in the park.")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !res.Ranked.IsDegraded() {
		t.Fatalf("expected degraded ranking")
	}
	if len(res.Ranked.Value) != len(res.Sentences) {
		t.Fatalf("expected lemmatized fallback, got %+v", res.Ranked.Value)
	}
}

func TestRankerEmpty(t *testing.T) {
	if _, err := NewRanker().Rank(nil); !errors.Is(err, domain.ErrNoSentences) {
		t.Fatalf("expected ErrNoSentences, got %v", err)
	}
}

func TestRankerCentralSentenceFirst(t *testing.T) {
	sentences := []string{
		"birds sing songs",
		"cats chase mice daily",
		"dogs chase cats",
		"mice fear cats",
	}
	ranked, err := NewRanker().Rank(sentences)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if ranked[0].Index != 1 {
		t.Fatalf("expected sentence 1 first, got %+v", ranked)
	}
	if ranked[len(ranked)-1].Index != 0 {
		t.Fatalf("expected isolated sentence last, got %+v", ranked)
	}
}

func TestRankerNoConvergence(t *testing.T) {
	r := NewRanker()
	r.MaxIter = 1
	_, err := r.Rank([]string{"birds sing songs", "cats chase mice daily", "dogs chase cats", "mice fear cats"})
	if !errors.Is(err, domain.ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
}

func TestRankerTopKeepsDocumentOrderOnTies(t *testing.T) {
	var sentences []string
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf"} {
		sentences = append(sentences, w+" stands alone")
	}
	// "stands" and "alone" are shared by all, so every node is symmetric.
	top, err := NewRanker().Top(sentences)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != MinSummary {
		t.Fatalf("expected %d sentences, got %d", MinSummary, len(top))
	}
	for i, s := range top {
		if s != sentences[i] {
			t.Fatalf("expected document order on ties, got %v", top)
		}
	}
}

func TestSummaryCount(t *testing.T) {
	cases := map[int]int{0: 5, 3: 5, 15: 5, 18: 6, 30: 10}
	for total, want := range cases {
		if got := SummaryCount(total); got != want {
			t.Fatalf("SummaryCount(%d): expected %d, got %d", total, want, got)
		}
	}
}

func TestPunktSegmenter(t *testing.T) {
	seg, err := NewPunktSegmenter()
	if err != nil {
		t.Fatalf("punkt: %v", err)
	}
	got := seg.Split("The cat sat on the mat. The dog ran in the park.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %v", got)
	}
}

func TestGolemLemmatizer(t *testing.T) {
	lem, err := NewGolemLemmatizer()
	if err != nil {
		t.Fatalf("golem: %v", err)
	}
	if got, _ := lem.Lemma("cats"); got != "cat" {
		t.Fatalf("expected cat, got %q", got)
	}
	if got, _ := lem.Lemma("."); got != "." {
		t.Fatalf("expected punctuation untouched, got %q", got)
	}
}

type countingTagger struct {
	calls int
	fail  bool
}

func (c *countingTagger) Tag(sentence string) ([]TaggedToken, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("tagger down")
	}
	return []TaggedToken{{Text: sentence, Tag: "NN"}}, nil
}

func TestMemoTaggerCachesPerInstance(t *testing.T) {
	inner := &countingTagger{}
	memo := NewMemoTagger(inner)
	for i := 0; i < 3; i++ {
		if _, err := memo.Tag("the cat sit"); err != nil {
			t.Fatalf("tag: %v", err)
		}
	}
	if inner.calls != 1 || memo.Len() != 1 {
		t.Fatalf("expected one underlying call and one entry, got %d calls, %d entries", inner.calls, memo.Len())
	}

	fresh := NewMemoTagger(inner)
	if fresh.Len() != 0 {
		t.Fatalf("expected a new memo to start empty, got %d", fresh.Len())
	}
	if _, err := fresh.Tag("the cat sit"); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected a new memo to tag again, got %d calls", inner.calls)
	}
}

func TestMemoTaggerDoesNotCacheErrors(t *testing.T) {
	inner := &countingTagger{fail: true}
	memo := NewMemoTagger(inner)
	if _, err := memo.Tag("x"); err == nil {
		t.Fatalf("expected error")
	}
	inner.fail = false
	if _, err := memo.Tag("x"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.calls)
	}
}

func TestProseTaggerFindsNounsAndVerbs(t *testing.T) {
	tagged, err := NewProseTagger().Tag("the compiler translates source code into machine instructions")
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if len(Nouns(tagged)) == 0 || len(Verbs(tagged)) == 0 {
		t.Fatalf("expected nouns and verbs, got %+v", tagged)
	}
}
