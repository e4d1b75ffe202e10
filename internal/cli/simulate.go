package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/tatianab/gamebook/internal/config"
	"github.com/tatianab/gamebook/internal/game"
)

// newSimulateCommand autoplays a story headlessly: every turn it takes the
// first unlocked choice. With a fixed seed the transcript is reproducible.
func newSimulateCommand() *cobra.Command {
	var (
		storyPath string
		name      string
		seed      int64
		maxTurns  int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Autoplay a story and print the transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			graph, err := loadGraph(cfg, storyPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			machine := game.New(graph, game.Config{
				EventChance: cfg.EventChance,
				Rand:        rand.New(rand.NewSource(seed)),
			})

			machine.NewGame()
			machine.ConfirmName(name)

			for turn := 1; machine.Session.Screen == game.ScreenGameplay && turn <= maxTurns; turn++ {
				s := machine.Session
				fmt.Fprintf(out, "--- Turn %d: %s (%s)\n", turn, s.Current.Title, s.CurrentID)
				fmt.Fprintf(out, "    health=%d food=%d gold=%d morale=%d\n",
					s.Player.Health, s.Player.Food, s.Player.Gold, s.Player.Morale)

				idx := -1
				for i, v := range machine.ChoiceViews() {
					if !v.Locked {
						idx = i
						break
					}
				}
				if idx < 0 {
					break
				}
				fmt.Fprintf(out, "    > %s\n", machine.ChoiceViews()[idx].Label)
				machine.ActivateChoice(idx)
				if text := machine.Session.EventText; text != "" {
					fmt.Fprintf(out, "    ! %s\n", text)
					machine.ClearOverlay()
				}
			}

			s := machine.Session
			fmt.Fprintf(out, "--- Finished on screen %q\n", s.Screen)
			if s.EndText != "" {
				fmt.Fprintln(out, s.EndText)
			}
			if s.VictorySummary != "" {
				fmt.Fprintln(out, s.VictorySummary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storyPath, "story", "", "path to the story document")
	cmd.Flags().StringVar(&name, "name", "Auto", "player name for the run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&maxTurns, "turns", 100, "turn budget")
	return cmd
}
