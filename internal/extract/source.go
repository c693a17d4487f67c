package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
)

// Source modes.
const (
	ModeAuto = "auto"
	ModePDF  = "pdf"
	ModeText = "text"
)

type Options struct {
	UploadsDir     string
	DefaultPDF     string
	PastedText     string
	LastUploadFile string
	MaxTextChars   int
}

// Request says where a run's text comes from. Text wins over everything;
// PDFPath overrides the recorded upload.
type Request struct {
	Mode    string
	PDFPath string
	Text    string
}

// Source resolves a Request to a concrete input and loads its text.
type Source struct {
	opts Options
	pdf  PDFExtractor
	log  *logger.Logger
}

func NewSource(opts Options, pdf PDFExtractor, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	return &Source{opts: opts, pdf: pdf, log: log}
}

// Resolve picks the input for req without reading PDF contents.
func (s *Source) Resolve(req Request) (domain.Input, error) {
	if strings.TrimSpace(req.Text) != "" {
		return domain.Input{Kind: domain.InputText, Text: s.truncate(req.Text)}, nil
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	switch mode {
	case ModePDF:
		path, ok := s.resolvePDF(req.PDFPath)
		if !ok {
			return domain.Input{}, fmt.Errorf("%w: input source is pdf but no pdf was found in %s", domain.ErrNoInput, s.opts.UploadsDir)
		}
		return domain.Input{Kind: domain.InputPDF, Path: path}, nil
	case ModeText:
		return s.pasted()
	default:
		if mode != "" && mode != ModeAuto {
			s.log.Warn("unknown input source, using auto", "source", req.Mode)
		}
		if path, ok := s.resolvePDF(req.PDFPath); ok {
			return domain.Input{Kind: domain.InputPDF, Path: path}, nil
		}
		in, err := s.pasted()
		if errors.Is(err, domain.ErrNoInput) {
			return domain.Input{}, fmt.Errorf("%w: neither an uploaded pdf nor pasted text exists in %s", domain.ErrNoInput, s.opts.UploadsDir)
		}
		return in, err
	}
}

// Load returns the raw text of in.
func (s *Source) Load(ctx context.Context, in domain.Input) (domain.Outcome[string], error) {
	switch in.Kind {
	case domain.InputText:
		return domain.Ok(in.Text), nil
	case domain.InputPDF:
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return domain.Outcome[string]{}, fmt.Errorf("read pdf: %w", err)
		}
		s.log.Info("extracting pdf", "path", in.Path, "bytes", len(data))
		return s.pdf.ExtractPDF(ctx, data)
	}
	return domain.Outcome[string]{}, fmt.Errorf("%w: unknown input kind %q", domain.ErrNoInput, in.Kind)
}

// resolvePDF applies override, then the recorded last upload, then the default file.
func (s *Source) resolvePDF(override string) (string, bool) {
	if override != "" {
		return override, fileExists(override)
	}
	if name, ok := ReadLastUpload(s.opts.UploadsDir, s.opts.LastUploadFile); ok && name != s.opts.PastedText {
		candidate := filepath.Join(s.opts.UploadsDir, name)
		if fileExists(candidate) {
			return candidate, true
		}
		s.log.Debug("recorded upload is missing", "path", candidate)
	}
	def := filepath.Join(s.opts.UploadsDir, s.opts.DefaultPDF)
	return def, fileExists(def)
}

func (s *Source) pasted() (domain.Input, error) {
	path := filepath.Join(s.opts.UploadsDir, s.opts.PastedText)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Input{}, fmt.Errorf("%w: input source is text but %s was not found", domain.ErrNoInput, path)
	}
	if err != nil {
		return domain.Input{}, fmt.Errorf("read pasted text: %w", err)
	}
	return domain.Input{Kind: domain.InputText, Path: path, Text: s.truncate(string(data))}, nil
}

func (s *Source) truncate(text string) string {
	if s.opts.MaxTextChars <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) <= s.opts.MaxTextChars {
		return text
	}
	s.log.Info("input too long, trimming", "chars", len(r), "limit", s.opts.MaxTextChars)
	return string(r[:s.opts.MaxTextChars])
}

// ReadLastUpload returns the upload reference recorded by the upload
// collaborator, if any.
func ReadLastUpload(uploadsDir, file string) (string, bool) {
	if file == "" {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(uploadsDir, file))
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

// RecordUpload stores name as the last upload reference.
func RecordUpload(uploadsDir, file, name string) error {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(uploadsDir, file), []byte(name), 0o644)
}

// SavePasted stores text as the pasted input and marks it as the last upload,
// so a later auto run without a PDF picks it up.
func (s *Source) SavePasted(text string) error {
	if err := os.MkdirAll(s.opts.UploadsDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.opts.UploadsDir, s.opts.PastedText), []byte(text), 0o644); err != nil {
		return fmt.Errorf("save pasted text: %w", err)
	}
	return RecordUpload(s.opts.UploadsDir, s.opts.LastUploadFile, s.opts.PastedText)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
