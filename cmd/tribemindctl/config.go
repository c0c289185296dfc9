package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the file form of a run. Every field has a flag counterpart;
// flags set on the command line win over the file.
type RunConfig struct {
	RunID     string `yaml:"run_id"`
	Seed      int64  `yaml:"seed"`
	Evolution bool   `yaml:"evolution"`

	Episodes     int `yaml:"episodes"`
	Agents       int `yaml:"agents"`
	DemandWindow int `yaml:"demand_window"`
	EvolveEvery  int `yaml:"evolve_every"`

	Store           string `yaml:"store"`
	DBPath          string `yaml:"db_path"`
	SnapshotPath    string `yaml:"snapshot_path"`
	CheckpointEvery int    `yaml:"checkpoint_every"`

	ScoreAlpha        float64 `yaml:"score_alpha"`
	PoolCapacity      int     `yaml:"pool_capacity"`
	PromoteThreshold  float64 `yaml:"promote_threshold"`
	PromoteStrict     bool    `yaml:"promote_strict"`
	ExplorationRate   float64 `yaml:"exploration_rate"`
	Selector          string  `yaml:"selector"`
	TopK              int     `yaml:"top_k"`
	OffspringPerCycle int     `yaml:"offspring_per_cycle"`
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		RunID:           "default",
		Episodes:        200,
		Agents:          12,
		DemandWindow:    3,
		EvolveEvery:     10,
		Store:           "memory",
		DBPath:          "tribemind.db",
		CheckpointEvery: 50,
	}
}

func loadRunConfig(path string) (RunConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c RunConfig) validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be >= 1: %d", c.Episodes)
	}
	if c.Agents < 1 {
		return fmt.Errorf("agents must be >= 1: %d", c.Agents)
	}
	if c.DemandWindow < 1 {
		return fmt.Errorf("demand window must be >= 1: %d", c.DemandWindow)
	}
	if c.EvolveEvery < 1 {
		return fmt.Errorf("evolve cadence must be >= 1: %d", c.EvolveEvery)
	}
	if c.Evolution && c.Seed == 0 {
		return errors.New("seed is required when evolution is enabled")
	}
	return nil
}
