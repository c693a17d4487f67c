package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"quizforge/internal/quizfmt"
	"quizforge/internal/render"
)

func newShuffleCmd(root *rootOptions) *cobra.Command {
	var (
		out  string
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "shuffle <listing>",
		Short: "Re-randomize a question listing within each type bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			g, perr := quizfmt.GroupByType(string(data))
			if perr != nil {
				log.Warn("skipping malformed question records", "error", perr)
			}
			if out == "" {
				out = args[0]
			}

			rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			if seed != 0 {
				rnd = rand.New(rand.NewPCG(seed, seed))
			}
			shuffled := quizfmt.RandomizeWithinTypes(g, rnd)
			if err := render.WriteAtomic(out, func(w io.Writer) error {
				_, err := io.WriteString(w, shuffled.String())
				return err
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shuffled %d questions into %s\n", shuffled.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (defaults to overwriting the input)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 picks a fresh one")
	return cmd
}
