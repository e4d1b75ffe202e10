// Package cli defines the gamebook command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tatianab/gamebook/internal/config"
	"github.com/tatianab/gamebook/internal/story"
)

// NewRootCommand creates the root command for the gamebook CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamebook",
		Short: "A data-driven choose-your-own-adventure engine",
		Long: "gamebook loads a story graph document and plays it in the terminal,\n" +
			"with stat-gated choices, random events, and crash-safe saves.",
		SilenceUsage: true,
	}

	cmd.AddCommand(newPlayCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newSimulateCommand())
	return cmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadGraph opens and loads a story document, preferring the flag path over
// the configured one.
func loadGraph(cfg config.Config, override string) (*story.Graph, error) {
	path := cfg.StoryPath
	if override != "" {
		path = override
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open story: %w", err)
	}
	defer f.Close()
	return story.Load(f)
}
