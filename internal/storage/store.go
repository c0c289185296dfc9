// Package storage persists run artifacts: catalog checkpoints, fitness
// trajectories, and lineage records. All I/O here is confined to run
// boundaries and checkpoint ticks; nothing on the per-tick path touches it.
package storage

import (
	"context"

	"tribemind/internal/model"
)

// Store defines the persistence operations for run artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, runID string, snap model.CatalogSnapshot) error
	LatestCheckpoint(ctx context.Context, runID string) (model.CatalogSnapshot, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, points []model.FitnessPoint) error
	GetFitnessHistory(ctx context.Context, runID string) ([]model.FitnessPoint, bool, error)
	SaveLineage(ctx context.Context, runID string, records []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
