package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := loadRunConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Episodes != 200 || cfg.Agents != 12 || cfg.Store != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRunConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
run_id: village-7
seed: 7
evolution: true
episodes: 40
agents: 6
evolve_every: 5
store: sqlite
db_path: village.db
promote_threshold: 0.9
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RunID != "village-7" || cfg.Seed != 7 || !cfg.Evolution {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Episodes != 40 || cfg.Store != "sqlite" || cfg.PromoteThreshold != 0.9 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.DemandWindow != 3 || cfg.CheckpointEvery != 50 {
		t.Fatalf("defaults lost on merge: %+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRunConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadRunConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRequiresSeedWithEvolution(t *testing.T) {
	cfg := defaultRunConfig()
	cfg.Evolution = true
	if err := cfg.validate(); err == nil {
		t.Fatal("expected seed requirement error")
	}
	cfg.Seed = 3
	if err := cfg.validate(); err != nil {
		t.Fatalf("seeded config should validate: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"zero episodes", func(c *RunConfig) { c.Episodes = 0 }},
		{"zero agents", func(c *RunConfig) { c.Agents = 0 }},
		{"zero demand window", func(c *RunConfig) { c.DemandWindow = 0 }},
		{"zero evolve cadence", func(c *RunConfig) { c.EvolveEvery = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultRunConfig()
			tc.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
