// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration. Flags may override the paths;
// the tunables come from the environment only.
type Config struct {
	StoryPath string `env:"GAMEBOOK_STORY" envDefault:"story.yaml"`

	// SavePath has no baked-in default; an empty value falls back to the
	// canonical location the save package owns.
	SavePath string `env:"GAMEBOOK_SAVE"`

	// Upkeep schedule. Ordering is fixed in the stat model; only the
	// magnitudes are tunable.
	UpkeepFoodCost     int `env:"GAMEBOOK_UPKEEP_FOOD" envDefault:"1"`
	StarvingHealthCost int `env:"GAMEBOOK_UPKEEP_STARVING_HEALTH" envDefault:"5"`
	LowFoodThreshold   int `env:"GAMEBOOK_UPKEEP_LOW_FOOD" envDefault:"20"`
	LowFoodMoraleCost  int `env:"GAMEBOOK_UPKEEP_LOW_FOOD_MORALE" envDefault:"1"`

	// EventChance is the per-transition random event probability.
	EventChance float64 `env:"GAMEBOOK_EVENT_CHANCE" envDefault:"0.10"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
