package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizforge/internal/app"
	"quizforge/internal/domain"
	"quizforge/internal/extract"
)

type generateOptions struct {
	questionType string
	source       string
	input        string
	text         string
	seed         uint64
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the quiz pipeline once and write the final artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			c, err := wire(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer c.Close()

			req := app.RunRequest{
				Filter: cfg.Quiz.QuestionType,
				Input:  extract.Request{Mode: cfg.Input.Source, PDFPath: opts.input, Text: opts.text},
				Seed:   cfg.Quiz.Seed,
			}
			if cmd.Flags().Changed("type") {
				req.Filter = opts.questionType
			}
			if cmd.Flags().Changed("source") {
				req.Input.Mode = opts.source
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = opts.seed
			}

			st, err := c.runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "quiz written to %s\n", c.runner.FinalPath())
			for _, t := range domain.QuestionTypes {
				if n := st.Counts[t.Tag()]; n > 0 {
					fmt.Fprintf(out, "  %-18s %d\n", t.Tag(), n)
				}
			}
			for _, reason := range st.Degraded {
				fmt.Fprintf(out, "  degraded: %s\n", reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.questionType, "type", "all", "question type: all, mcq, fill, tf, short")
	cmd.Flags().StringVar(&opts.source, "source", "auto", "input source: auto, pdf, text")
	cmd.Flags().StringVar(&opts.input, "input", "", "PDF path overriding the upload lookup")
	cmd.Flags().StringVar(&opts.text, "text", "", "literal text to generate from")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed; 0 picks a fresh one")
	return cmd
}
