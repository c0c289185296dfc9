package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"tribemind/internal/behavior"
	"tribemind/internal/catalog"
	"tribemind/internal/role"
	"tribemind/internal/snapshot"
	"tribemind/internal/storage"
)

// runEpisodes drives the full loop: per episode the village draws one demand
// behavior, every agent materializes its assigned role, and the role scores a
// win when the demand shows up inside the agent's priority window. Evolution
// and checkpointing run strictly between episodes.
func runEpisodes(ctx context.Context, cat *catalog.Catalog, store storage.Store, cfg RunConfig, log *slog.Logger) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	demands := cat.Registry().IDs()

	for ep := 1; ep <= cfg.Episodes; ep++ {
		demand := demands[rng.Intn(len(demands))]

		for agentID := 0; agentID < cfg.Agents; agentID++ {
			r, err := cat.AssignRole(agentID, rng)
			if err != nil {
				return fmt.Errorf("episode %d agent %d: %w", ep, agentID, err)
			}
			order, err := role.Materialize(r, rng)
			if err != nil {
				return fmt.Errorf("materialize role %s: %w", r.ID, err)
			}
			if err := cat.RecordOutcome(r.ID, demandMet(order, demand, cfg.DemandWindow)); err != nil {
				return fmt.Errorf("record outcome for %s: %w", r.ID, err)
			}
		}

		if cfg.Evolution && ep%cfg.EvolveEvery == 0 {
			point, err := cat.RunEvolution(rng)
			if err != nil {
				return fmt.Errorf("episode %d: %w", ep, err)
			}
			log.Info("cycle summary",
				"episode", ep, "cycle", point.Cycle,
				"best", point.BestScore, "mean", point.MeanScore,
				"pool", point.PoolSize, "hof", point.HallOfFameSize)
		}

		if cfg.Evolution && cfg.CheckpointEvery > 0 && ep%cfg.CheckpointEvery == 0 {
			if err := checkpoint(ctx, cat, store, cfg, int64(ep)); err != nil {
				return err
			}
		}
	}

	if cfg.Evolution {
		return checkpoint(ctx, cat, store, cfg, int64(cfg.Episodes))
	}
	return nil
}

func demandMet(order []behavior.ID, demand behavior.ID, window int) bool {
	if window > len(order) {
		window = len(order)
	}
	for _, id := range order[:window] {
		if id == demand {
			return true
		}
	}
	return false
}

func checkpoint(ctx context.Context, cat *catalog.Catalog, store storage.Store, cfg RunConfig, tick int64) error {
	snap := cat.Snapshot(tick)
	if err := store.SaveCheckpoint(ctx, cfg.RunID, snap); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if err := store.SaveFitnessHistory(ctx, cfg.RunID, cat.History()); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := store.SaveLineage(ctx, cfg.RunID, cat.Lineage()); err != nil {
		return fmt.Errorf("save lineage: %w", err)
	}
	if cfg.SnapshotPath != "" {
		if err := snapshot.Save(cfg.SnapshotPath, snap); err != nil {
			return fmt.Errorf("save snapshot file: %w", err)
		}
	}
	return nil
}

// restoreFromSnapshot merges a persisted snapshot file into a fresh catalog.
// A missing file is a clean start; an unreadable or version-mismatched file
// falls back to baseline-only with a warning rather than aborting the run.
func restoreFromSnapshot(cat *catalog.Catalog, path string, log *slog.Logger) {
	if path == "" {
		return
	}
	snap, err := snapshot.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		log.Warn("snapshot unreadable; starting from baseline", "path", path, "error", err)
		return
	}
	if err := cat.Restore(snap); err != nil {
		log.Warn("snapshot restore failed; starting from baseline", "path", path, "error", err)
	}
}
