package cli

import (
	"github.com/spf13/cobra"

	"github.com/tatianab/gamebook/internal/config"
	"github.com/tatianab/gamebook/internal/game"
	"github.com/tatianab/gamebook/internal/player"
	"github.com/tatianab/gamebook/internal/save"
	"github.com/tatianab/gamebook/internal/tui"
)

func newPlayCommand() *cobra.Command {
	var storyPath, savePath string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a story in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			graph, err := loadGraph(cfg, storyPath)
			if err != nil {
				return err
			}
			savePath = resolveSavePath(cfg, savePath)

			machine := game.New(graph, game.Config{
				Upkeep: player.UpkeepConfig{
					FoodCost:           cfg.UpkeepFoodCost,
					StarvingHealthCost: cfg.StarvingHealthCost,
					LowFoodThreshold:   cfg.LowFoodThreshold,
					LowFoodMoraleCost:  cfg.LowFoodMoraleCost,
				},
				EventChance: cfg.EventChance,
				SavePath:    savePath,
			})
			return tui.Run(machine)
		},
	}

	cmd.Flags().StringVar(&storyPath, "story", "", "path to the story document")
	cmd.Flags().StringVar(&savePath, "save", "", "path to the save file")
	return cmd
}

// resolveSavePath picks the save location: flag over environment over the
// canonical default in the working directory.
func resolveSavePath(cfg config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.SavePath != "" {
		return cfg.SavePath
	}
	return save.DefaultPath(".")
}
