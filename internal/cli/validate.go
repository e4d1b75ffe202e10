package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tatianab/gamebook/internal/story"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <story>",
		Short: "Load a story document and report its graph shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			graph, err := story.Load(f)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.Summarize().String())
			return nil
		},
	}
}
