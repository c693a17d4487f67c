package render

import (
	"fmt"
	"io"

	"quizforge/internal/domain"
	"quizforge/internal/quizfmt"
)

// TextRenderer writes the grouped listing as plain text.
type TextRenderer struct{}

func (TextRenderer) Render(g quizfmt.Grouped, path string) error {
	err := WriteAtomic(path, func(w io.Writer) error {
		return quizfmt.WriteRecords(w, g.Flat())
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return nil
}
