package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"quizforge/internal/domain"
	"quizforge/internal/quizfmt"
)

const (
	lineHeight   = 6.0
	optionIndent = 8.0
)

var sectionTitles = map[domain.QuestionType]string{
	domain.MCQType:         "Multiple Choice Questions",
	domain.FillBlankType:   "Fill in the Blanks",
	domain.TrueFalseType:   "True or False",
	domain.ShortAnswerType: "Short Answer Questions",
}

// PDFRenderer lays the quiz out on A4 with an answer key on the last page.
type PDFRenderer struct {
	Title string
}

func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = "Generated Quiz"
	}
	return &PDFRenderer{Title: title}
}

func (r *PDFRenderer) Render(g quizfmt.Grouped, path string) error {
	doc := r.build(g)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	err := WriteAtomic(path, func(w io.Writer) error {
		return doc.Output(w)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return nil
}

func (r *PDFRenderer) build(g quizfmt.Grouped) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(r.Title, false)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, tr(r.Title), "", 1, "C", false, 0, "")
	doc.Ln(4)

	n := 0
	for _, t := range g.Types() {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 10, tr(sectionTitles[t]), "", 1, "L", false, 0, "")
		for _, rec := range g[t] {
			n++
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", n, rec.Text)), "", "L", false)
			for i, opt := range rec.Options {
				doc.SetX(doc.GetX() + optionIndent)
				doc.MultiCell(0, lineHeight, tr(fmt.Sprintf("%c) %s", 'a'+i, opt)), "", "L", false)
			}
			doc.Ln(2)
		}
		doc.Ln(4)
	}

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, "Answer Key", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	for i, rec := range g.Flat() {
		doc.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, rec.Answer)), "", "L", false)
	}
	return doc
}
