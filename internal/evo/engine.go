package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"tribemind/internal/behavior"
	"tribemind/internal/model"
	"tribemind/internal/role"
)

// Config holds the per-cycle breeding parameters. The per-operator
// probabilities are independent: each operator rolls once per offspring.
type Config struct {
	Selector       Selector
	Crossover      CrossoverConfig
	OffspringCount int

	ReplaceBehaviorProb float64
	ToggleModeProb      float64
	InsertTierProb      float64
	DeleteTierProb      float64
}

// Engine produces one batch of offspring per invocation. It never touches
// the pool it breeds from; registration, eviction, and naming belong to the
// catalog.
type Engine struct {
	cfg      Config
	registry *behavior.Registry

	replace ReplaceBehavior
	toggle  ToggleMode
	insert  InsertTier
	remove  DeleteTier
}

func NewEngine(cfg Config, registry *behavior.Registry) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Selector == nil {
		cfg.Selector = TopKSelector{}
	}
	if cfg.OffspringCount <= 0 {
		return nil, fmt.Errorf("offspring count must be > 0: %d", cfg.OffspringCount)
	}
	for _, p := range []float64{cfg.ReplaceBehaviorProb, cfg.ToggleModeProb, cfg.InsertTierProb, cfg.DeleteTierProb} {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("mutation probability must be in [0, 1]: %v", p)
		}
	}

	return &Engine{
		cfg:      cfg,
		registry: registry,
		replace:  ReplaceBehavior{Registry: registry},
		insert:   InsertTier{Registry: registry},
	}, nil
}

// Offspring breeds cfg.OffspringCount new roles from the ranked pool. The
// returned roles are validated but unnamed; cycle feeds the deterministic
// offspring ids so a fixed seed and pool reproduce the batch bit for bit.
func (e *Engine) Offspring(rng *rand.Rand, ranked []*role.Role, cycle int) ([]*role.Role, []model.LineageRecord, error) {
	if rng == nil {
		return nil, nil, errors.New("random source is required")
	}
	if len(ranked) == 0 {
		return nil, nil, errors.New("no parent candidates")
	}

	offspring := make([]*role.Role, 0, e.cfg.OffspringCount)
	lineage := make([]model.LineageRecord, 0, e.cfg.OffspringCount)

	for i := 0; i < e.cfg.OffspringCount; i++ {
		parentA, err := e.cfg.Selector.PickParent(rng, ranked)
		if err != nil {
			return nil, nil, fmt.Errorf("pick parent: %w", err)
		}
		parentB, err := e.cfg.Selector.PickParent(rng, ranked)
		if err != nil {
			return nil, nil, fmt.Errorf("pick parent: %w", err)
		}

		childID := offspringID(parentA.ID, parentB.ID, cycle, i)
		child, err := Crossover(rng, parentA, parentB, e.cfg.Crossover, childID)
		if err != nil {
			if errors.Is(err, role.ErrInvariantViolation) {
				continue
			}
			return nil, nil, fmt.Errorf("crossover: %w", err)
		}

		operations := []string{"crossover"}
		child, operations = e.mutate(rng, child, operations)

		if err := role.Validate(child, e.registry); err != nil {
			// Malformed offspring never reach registration.
			continue
		}

		offspring = append(offspring, child)
		lineage = append(lineage, model.LineageRecord{
			RoleID:     child.ID,
			ParentA:    parentA.ID,
			ParentB:    parentB.ID,
			Cycle:      cycle,
			Operations: operations,
		})
	}

	return offspring, lineage, nil
}

func (e *Engine) mutate(rng *rand.Rand, child *role.Role, operations []string) (*role.Role, []string) {
	steps := []struct {
		prob float64
		op   Operator
	}{
		{e.cfg.ReplaceBehaviorProb, e.replace},
		{e.cfg.ToggleModeProb, e.toggle},
		{e.cfg.InsertTierProb, e.insert},
		{e.cfg.DeleteTierProb, e.remove},
	}

	for _, step := range steps {
		if step.prob <= 0 || rng.Float64() >= step.prob {
			continue
		}
		mutated, err := step.op.Apply(rng, child)
		if err != nil {
			// No legal choice is a no-op; anything else discards the step.
			continue
		}
		child = mutated
		operations = append(operations, step.op.Name())
	}
	return child, operations
}

// offspringID derives a stable id from the breeding coordinates, keeping
// generated ids reproducible under a fixed seed.
func offspringID(parentA, parentB string, cycle, index int) string {
	seed := fmt.Sprintf("%s|%s|%d|%d", parentA, parentB, cycle, index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
