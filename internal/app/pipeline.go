package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/extract"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
	"quizforge/internal/quizfmt"
	"quizforge/internal/synth"
)

// Intermediate artifacts written into the work dir on every run.
const (
	ArtifactCleanedSentences = "cleaned_sentences.txt"
	ArtifactRankedSentences  = "ranked_sentences.txt"
	ArtifactCleanedText      = "cleaned_text.txt"
	ArtifactGenerated        = "generated_questions.txt"
	ArtifactRandomized       = "randomized_questions.txt"
	ArtifactPreview          = "generated_questions_preview.txt"

	previewRecords = 10
)

// TextSource resolves and loads a run's input.
type TextSource interface {
	Resolve(req extract.Request) (domain.Input, error)
	Load(ctx context.Context, in domain.Input) (domain.Outcome[string], error)
}

// Normalizer turns raw text into sentences.
type Normalizer interface {
	Normalize(raw string) (nlp.Normalized, error)
}

// Renderer writes the final artifact. Implementations must write atomically.
type Renderer interface {
	Render(g quizfmt.Grouped, path string) error
}

// StateObserver is told about every pipeline transition.
type StateObserver interface {
	OnState(state domain.RunState)
}

// ObserverFunc adapts a function to StateObserver.
type ObserverFunc func(domain.RunState)

func (f ObserverFunc) OnState(s domain.RunState) { f(s) }

// RunRequest carries everything a single run needs.
type RunRequest struct {
	Filter string
	Input  extract.Request
	// Seed fixes the random source; zero draws a fresh seed.
	Seed uint64
}

// Result summarizes a run, as far as it got.
type Result struct {
	Filter     Filter
	Counts     map[domain.QuestionType]int
	Degraded   []string
	Randomized bool
	FinalPath  string
}

type PipelineConfig struct {
	WorkDir   string
	FinalName string
}

// Pipeline sequences extraction, normalization, synthesis, randomization and
// rendering for one run at a time.
type Pipeline struct {
	cfg        PipelineConfig
	source     TextSource
	normalizer Normalizer
	tagger     nlp.Tagger
	renderer   Renderer
	log        *logger.Logger
}

func NewPipeline(cfg PipelineConfig, source TextSource, normalizer Normalizer, tagger nlp.Tagger, renderer Renderer, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{cfg: cfg, source: source, normalizer: normalizer, tagger: tagger, renderer: renderer, log: log}
}

// FinalPath is where the rendered quiz lands.
func (p *Pipeline) FinalPath() string {
	return filepath.Join(p.cfg.WorkDir, p.cfg.FinalName)
}

// ArtifactPath resolves an intermediate artifact name inside the work dir.
func (p *Pipeline) ArtifactPath(name string) string {
	return filepath.Join(p.cfg.WorkDir, name)
}

// Run executes one pipeline pass. The observer, if any, sees every state
// from Extracting through Done or Failed.
func (p *Pipeline) Run(ctx context.Context, req RunRequest, obs StateObserver) (Result, error) {
	if obs == nil {
		obs = ObserverFunc(func(domain.RunState) {})
	}
	res := Result{Filter: ParseFilter(req.Filter), FinalPath: p.FinalPath()}

	err := p.run(ctx, req, obs, &res)
	if err != nil {
		p.removeFinal()
		p.log.Error("quiz run failed", "error", err)
		obs.OnState(domain.StateFailed)
		return res, err
	}
	obs.OnState(domain.StateDone)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req RunRequest, obs StateObserver, res *Result) error {
	obs.OnState(domain.StateExtracting)
	p.removeFinal()

	in, err := p.source.Resolve(req.Input)
	if err != nil {
		return err
	}
	raw, err := p.source.Load(ctx, in)
	if err != nil {
		return err
	}
	if raw.IsDegraded() {
		res.Degraded = append(res.Degraded, "extraction: "+raw.Reason)
	}
	if err := nlp.CheckReadable(raw.Value); err != nil {
		return err
	}

	obs.OnState(domain.StateNormalizing)
	norm, err := p.normalizer.Normalize(raw.Value)
	if err != nil {
		return err
	}
	if norm.Ranked.IsDegraded() {
		res.Degraded = append(res.Degraded, "ranking: "+norm.Ranked.Reason)
	}
	p.writeArtifact(ArtifactCleanedSentences, sentenceLines(norm.Sentences))
	p.writeArtifact(ArtifactRankedSentences, sentenceLines(norm.Ranked.Value))
	p.writeArtifact(ArtifactCleanedText, norm.Cleaned)
	p.log.Info("normalized input", "sentences", len(norm.Sentences), "ranked", len(norm.Ranked.Value))

	obs.OnState(domain.StateSynthesizing)
	rnd := newRand(req.Seed)
	// Tag memo lives for this run only.
	synths := res.Filter.Select(synth.Default(nlp.NewMemoTagger(p.tagger), rnd, p.log))
	batch := slices.Collect(synth.Chain(norm.Sentences, synths...))
	res.Counts = domain.CountByType(batch)
	listing := quizfmt.Serialize(batch)
	p.writeArtifact(ArtifactGenerated, listing)
	p.log.Info("synthesized questions", "filter", res.Filter.Name,
		"mcq", res.Counts[domain.MCQType], "fill", res.Counts[domain.FillBlankType],
		"tf", res.Counts[domain.TrueFalseType], "short", res.Counts[domain.ShortAnswerType])

	if typesPresent(res.Counts) > 1 {
		obs.OnState(domain.StateRandomizing)
		g, perr := quizfmt.GroupByType(listing)
		p.logParseErrors(perr)
		listing = quizfmt.RandomizeWithinTypes(g, rnd).String()
		res.Randomized = true
		p.writeArtifact(ArtifactRandomized, listing)
	}

	obs.OnState(domain.StateRendering)
	g, perr := quizfmt.GroupByType(listing)
	p.logParseErrors(perr)
	if err := p.renderer.Render(g, p.FinalPath()); err != nil {
		if !errors.Is(err, domain.ErrRenderFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
		}
		return err
	}
	p.writeArtifact(ArtifactPreview, preview(g))
	return nil
}

func (p *Pipeline) removeFinal() {
	if err := os.Remove(p.FinalPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.log.Warn("could not remove final artifact", "path", p.FinalPath(), "error", err)
	}
}

// writeArtifact stores an intermediate file; failures are logged, not fatal.
func (p *Pipeline) writeArtifact(name, body string) {
	if err := os.MkdirAll(p.cfg.WorkDir, 0o755); err != nil {
		p.log.Warn("could not create work dir", "dir", p.cfg.WorkDir, "error", err)
		return
	}
	if err := os.WriteFile(p.ArtifactPath(name), []byte(body), 0o644); err != nil {
		p.log.Warn("could not write artifact", "artifact", name, "error", err)
	}
}

func (p *Pipeline) logParseErrors(err error) {
	if err == nil {
		return
	}
	for _, e := range unwrapJoined(err) {
		p.log.Warn("skipping malformed question record", "error", e)
	}
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func sentenceLines(ss []domain.Sentence) string {
	var b strings.Builder
	for _, s := range ss {
		b.WriteString(s.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func preview(g quizfmt.Grouped) string {
	flat := g.Flat()
	return quizfmt.FormatRecords(flat[:min(previewRecords, len(flat))])
}

func typesPresent(counts map[domain.QuestionType]int) int {
	n := 0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
