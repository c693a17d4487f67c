package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"quizforge/internal/app"
	"quizforge/internal/domain"
	"quizforge/internal/extract"
	"quizforge/internal/infra/memory"
	"quizforge/internal/render"
)

const runnerText = "The cat sat on the mat. The dog ran in the park."

func TestRunnerRunCompletes(t *testing.T) {
	r, _ := newTestRunner(t, literalSource{}, nil)
	ctx := context.Background()

	if r.Ready() {
		t.Fatalf("expected not ready before any run")
	}
	st, err := r.Run(ctx, textRequest(runnerText, "mcq", 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.State != domain.StateDone || st.Counts["MCQ"] != 2 || st.Filter != "mcq" {
		t.Fatalf("unexpected final status %+v", st)
	}
	if !r.Ready() {
		t.Fatalf("expected ready after a successful run")
	}

	last, err := r.LastStatus(ctx)
	if err != nil || last.RunID != st.RunID || last.State != domain.StateDone {
		t.Fatalf("unexpected last status %+v (err %v)", last, err)
	}
	byID, err := r.Status(ctx, st.RunID)
	if err != nil || byID.State != domain.StateDone {
		t.Fatalf("unexpected status by id %+v (err %v)", byID, err)
	}
}

func TestRunnerLastStatusIdle(t *testing.T) {
	r, _ := newTestRunner(t, literalSource{}, nil)
	st, err := r.LastStatus(context.Background())
	if err != nil {
		t.Fatalf("last status: %v", err)
	}
	if st.State != domain.StateIdle {
		t.Fatalf("expected idle, got %s", st.State)
	}
	if _, err := r.Status(context.Background(), "nope"); !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunnerRejectsConcurrentRuns(t *testing.T) {
	src := &gatedSource{release: make(chan struct{}), entered: make(chan struct{})}
	r, _ := newTestRunner(t, src, nil)
	ctx := context.Background()

	id, err := r.Start(ctx, textRequest(runnerText, "all", 1))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-src.entered

	if _, err := r.Start(ctx, textRequest(runnerText, "all", 2)); !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if _, err := r.Run(ctx, textRequest(runnerText, "all", 2)); !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress from Run, got %v", err)
	}

	close(src.release)
	r.Wait()

	st, err := r.Status(ctx, id)
	if err != nil || st.State != domain.StateDone {
		t.Fatalf("unexpected status %+v (err %v)", st, err)
	}
	if _, err := r.Run(ctx, textRequest(runnerText, "tf", 3)); err != nil {
		t.Fatalf("expected lock released after run, got %v", err)
	}
}

func TestRunnerSubscribeSeesTransitions(t *testing.T) {
	r, _ := newTestRunner(t, literalSource{}, nil)
	ch, cancel := r.Subscribe()
	defer cancel()

	if _, err := r.Run(context.Background(), textRequest(runnerText, "mcq", 1)); err != nil {
		t.Fatalf("run: %v", err)
	}

	var states []domain.RunState
	timeout := time.After(2 * time.Second)
	for len(states) == 0 || !states[len(states)-1].Terminal() {
		select {
		case st := <-ch:
			states = append(states, st.State)
		case <-timeout:
			t.Fatalf("timed out, saw %v", states)
		}
	}

	want := []domain.RunState{
		domain.StateIdle, domain.StateIdle,
		domain.StateExtracting, domain.StateNormalizing, domain.StateSynthesizing,
		domain.StateRendering, domain.StateDone,
	}
	if !slices.Equal(states, want) {
		t.Fatalf("expected %v, got %v", want, states)
	}
}

func TestRunnerFailedRunRecordsError(t *testing.T) {
	r, _ := newTestRunner(t, literalSource{}, failingRenderer{})
	st, err := r.Run(context.Background(), textRequest(runnerText, "all", 1))
	if !errors.Is(err, domain.ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed, got %v", err)
	}
	if st.State != domain.StateFailed || !strings.Contains(st.Error, "render failed") {
		t.Fatalf("unexpected status %+v", st)
	}
	if r.Ready() {
		t.Fatalf("failed run must not leave a final artifact")
	}
}

func TestRunnerDeterministicTimestamps(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	p := app.NewPipeline(app.PipelineConfig{WorkDir: dir, FinalName: "quiz.txt"}, literalSource{}, newNormalizer(), lexicon, render.TextRenderer{}, nil)
	r := app.NewRunnerWithClock(p, memory.NewRunRegistry(), nil, func() time.Time { return fixed })

	st, err := r.Run(context.Background(), textRequest(runnerText, "tf", 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !st.StartedAt.Equal(fixed) || !st.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected timestamps %v %v", st.StartedAt, st.UpdatedAt)
	}
	if r.FinalPath() != filepath.Join(dir, "quiz.txt") {
		t.Fatalf("unexpected final path %s", r.FinalPath())
	}
}

// --- helpers ---

type gatedSource struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Resolve(req extract.Request) (domain.Input, error) {
	return literalSource{}.Resolve(req)
}

func (g *gatedSource) Load(ctx context.Context, in domain.Input) (domain.Outcome[string], error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return literalSource{}.Load(ctx, in)
}

func newTestRunner(t *testing.T, src app.TextSource, renderer app.Renderer) (*app.Runner, string) {
	t.Helper()
	if renderer == nil {
		renderer = render.TextRenderer{}
	}
	dir := t.TempDir()
	p := app.NewPipeline(app.PipelineConfig{WorkDir: dir, FinalName: "quiz.txt"}, src, newNormalizer(), lexicon, renderer, nil)
	return app.NewRunner(p, memory.NewRunRegistry(), nil), dir
}

func TestRunnerStartClearsStaleArtifactBeforeReturning(t *testing.T) {
	src := &gatedSource{release: make(chan struct{}), entered: make(chan struct{})}
	r, _ := newTestRunner(t, src, nil)
	if err := os.WriteFile(r.FinalPath(), []byte("previous quiz"), 0o644); err != nil {
		t.Fatalf("write stale: %v", err)
	}
	if !r.Ready() {
		t.Fatalf("expected stale artifact to count as ready before a new run")
	}

	if _, err := r.Start(context.Background(), textRequest(runnerText, "mcq", 1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Ready() {
		t.Fatalf("expected not ready once a new run has started")
	}

	close(src.release)
	r.Wait()
	if !r.Ready() {
		t.Fatalf("expected ready after the new run finished")
	}
	data, _ := os.ReadFile(r.FinalPath())
	if strings.Contains(string(data), "previous quiz") {
		t.Fatalf("expected the new quiz, got %q", data)
	}
}

func TestRunnerSubscribeInitialIsFirst(t *testing.T) {
	r, _ := newTestRunner(t, literalSource{}, nil)
	if _, err := r.Run(context.Background(), textRequest(runnerText, "tf", 1)); err != nil {
		t.Fatalf("run: %v", err)
	}
	ch, cancel := r.Subscribe()
	defer cancel()
	select {
	case st := <-ch:
		if st.State != domain.StateDone {
			t.Fatalf("expected current done status first, got %s", st.State)
		}
	default:
		t.Fatalf("expected the initial status to be queued by Subscribe")
	}
}
