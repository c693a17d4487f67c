package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/nlp"
)

// PDFExtractor pulls raw text out of PDF bytes. A Degraded outcome means a
// fallback produced the text.
type PDFExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error)
}

var errEmptyText = errors.New("extracted no text")

// DocconvExtractor shells out to pdftotext through docconv.
type DocconvExtractor struct{}

func (DocconvExtractor) ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome[string]{}, err
	}
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return domain.Outcome[string]{}, fmt.Errorf("docconv: %w", err)
	}
	text := nlp.StripPageNumbers(res.Body)
	if strings.TrimSpace(text) == "" {
		return domain.Outcome[string]{}, errEmptyText
	}
	return domain.Ok(text), nil
}

// PageExtractor reads the PDF in-process, page by page.
type PageExtractor struct{}

func (PageExtractor) ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.Outcome[string]{}, fmt.Errorf("pdf reader: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return domain.Outcome[string]{}, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return domain.Outcome[string]{}, fmt.Errorf("pdf page %d: %w", i, err)
		}
		if text = nlp.StripPageNumbers(text); text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return domain.Outcome[string]{}, errEmptyText
	}
	return domain.Ok(b.String()), nil
}

// Step is one named extractor in a Chain.
type Step struct {
	Name      string
	Extractor PDFExtractor
}

// Chain tries each step in order and returns the first non-empty text. Text
// from any step but the first is reported as Degraded.
type Chain struct {
	steps []Step
	log   *logger.Logger
}

func NewChain(log *logger.Logger, steps ...Step) *Chain {
	if log == nil {
		log = logger.Nop()
	}
	return &Chain{steps: steps, log: log}
}

// NewDefaultChain prefers pdftotext and falls back to the in-process reader.
func NewDefaultChain(log *logger.Logger) *Chain {
	return NewChain(log,
		Step{Name: "docconv", Extractor: DocconvExtractor{}},
		Step{Name: "pdf", Extractor: PageExtractor{}},
	)
}

func (c *Chain) ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error) {
	var (
		errs    []error
		reasons []string
	)
	if len(c.steps) == 0 {
		return domain.Outcome[string]{}, errors.New("extract pdf: no extractors configured")
	}
	for i, step := range c.steps {
		out, err := step.Extractor.ExtractPDF(ctx, data)
		if err == nil {
			if i == 0 {
				return out, nil
			}
			if out.IsDegraded() {
				reasons = append(reasons, out.Reason)
			}
			return domain.Degraded(out.Value, strings.Join(reasons, "; ")), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Outcome[string]{}, ctxErr
		}
		c.log.Warn("pdf extractor failed", "extractor", step.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		reasons = append(reasons, fmt.Sprintf("%s failed: %v", step.Name, err))
	}
	return domain.Outcome[string]{}, fmt.Errorf("extract pdf: %w", errors.Join(errs...))
}
