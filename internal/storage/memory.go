package storage

import (
	"context"
	"sync"

	"tribemind/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]model.CatalogSnapshot
	history     map[string][]model.FitnessPoint
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints = make(map[string][]model.CatalogSnapshot)
	s.history = make(map[string][]model.FitnessPoint)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, runID string, snap model.CatalogSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[runID] = append(s.checkpoints[runID], snap)
	return nil
}

func (s *MemoryStore) LatestCheckpoint(_ context.Context, runID string) (model.CatalogSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoints := s.checkpoints[runID]
	if len(checkpoints) == 0 {
		return model.CatalogSnapshot{}, false, nil
	}
	return checkpoints[len(checkpoints)-1], true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, points []model.FitnessPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.FitnessPoint, len(points))
	copy(copied, points)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]model.FitnessPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.FitnessPoint, len(points))
	copy(copied, points)
	return copied, true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, records []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.LineageRecord, len(records))
	copy(copied, records)
	s.lineage[runID] = copied
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(records))
	copy(copied, records)
	return copied, true, nil
}
