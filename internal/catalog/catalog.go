// Package catalog owns the behavior registry and every role in play: the
// fixed baseline stacks, the evolved pool, and the hall of fame. One catalog
// exists per simulation run and is passed explicitly to every operation.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"tribemind/internal/behavior"
	"tribemind/internal/evo"
	"tribemind/internal/fitness"
	"tribemind/internal/model"
	"tribemind/internal/role"
)

var ErrRoleNotFound = errors.New("role not found")

// Config is the runtime configuration for the engine. Evolution is a runtime
// flag, never a build flag, so both modes stay testable from one binary.
type Config struct {
	RunID            string
	EvolutionEnabled bool

	// Seed drives every random stream the caller derives for this run.
	// Required when evolution is enabled; reproducibility is a startup
	// contract, so a missing seed fails construction, not a later cycle.
	Seed int64

	// Fitness smoothing factor for the exponential moving average.
	ScoreAlpha float64

	// Generated-pool capacity. Baseline roles do not count against it.
	PoolCapacity int

	// Hall-of-fame promotion threshold. PromoteStrict selects strict
	// greater-than; the default is greater-or-equal.
	PromoteThreshold float64
	PromoteStrict    bool

	// Probability that assignment forces the most recently generated role.
	ExplorationRate float64

	SelectorKind      string
	TopK              int
	OffspringPerCycle int

	ReplaceBehaviorProb float64
	ToggleModeProb      float64
	InsertTierProb      float64
	DeleteTierProb      float64

	// Crossover cut-point policy; see evo.CrossoverConfig.
	AllowEdgeCut bool
	BiasTopTier  bool
}

func (c *Config) applyDefaults() {
	if c.ScoreAlpha == 0 {
		c.ScoreAlpha = 0.1
	}
	if c.PoolCapacity == 0 {
		c.PoolCapacity = 32
	}
	if c.PromoteThreshold == 0 {
		c.PromoteThreshold = 0.75
	}
	if c.OffspringPerCycle == 0 {
		c.OffspringPerCycle = 4
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.ReplaceBehaviorProb == 0 {
		c.ReplaceBehaviorProb = 0.4
	}
	if c.ToggleModeProb == 0 {
		c.ToggleModeProb = 0.2
	}
	if c.InsertTierProb == 0 {
		c.InsertTierProb = 0.05
	}
	if c.DeleteTierProb == 0 {
		c.DeleteTierProb = 0.05
	}
}

// RoleSpec declares one baseline role. Name may be empty, in which case the
// display name is derived from the top tier's primary behavior.
type RoleSpec struct {
	ID    string
	Name  string
	Kind  role.Kind
	Tiers []role.Tier
}

// Catalog is the single aggregate the rest of the simulation talks to.
// Fitness updates and evolution cycles run strictly between ticks; per-agent
// materialization within a tick only reads.
type Catalog struct {
	mu sync.RWMutex

	cfg      Config
	registry *behavior.Registry
	tracker  fitness.Tracker
	engine   *evo.Engine
	log      *slog.Logger

	baselineSpecs []RoleSpec

	baseline   []*role.Role
	generated  []*role.Role
	hallOfFame map[string]*role.Role
	byID       map[string]*role.Role

	nameSeq map[string]int
	cycle   int
	newest  string

	lineage []model.LineageRecord
	history []model.FitnessPoint
}

// New builds a catalog: registers the behavior set, seeds the baseline
// roles, and validates the configuration. Registry and configuration errors
// here abort startup.
func New(cfg Config, behaviors []behavior.Spec, baseline []RoleSpec, log *slog.Logger) (*Catalog, error) {
	cfg.applyDefaults()

	if log == nil {
		log = slog.Default()
	}
	if len(behaviors) == 0 {
		return nil, errors.New("at least one behavior is required")
	}
	if len(baseline) == 0 {
		return nil, errors.New("at least one baseline role is required")
	}
	if cfg.EvolutionEnabled && cfg.Seed == 0 {
		return nil, errors.New("seed is required when evolution is enabled")
	}
	if cfg.ExplorationRate < 0 || cfg.ExplorationRate > 1 {
		return nil, fmt.Errorf("exploration rate must be in [0, 1]: %v", cfg.ExplorationRate)
	}
	if cfg.PoolCapacity < 1 {
		return nil, fmt.Errorf("pool capacity must be >= 1: %d", cfg.PoolCapacity)
	}

	tracker, err := fitness.NewTracker(cfg.ScoreAlpha)
	if err != nil {
		return nil, err
	}

	registry := behavior.NewRegistry()
	for _, spec := range behaviors {
		if err := registry.Register(spec.ID, spec.Name); err != nil {
			return nil, fmt.Errorf("seed registry: %w", err)
		}
	}

	selector, err := evo.NewSelector(cfg.SelectorKind, cfg.TopK)
	if err != nil {
		return nil, err
	}
	engine, err := evo.NewEngine(evo.Config{
		Selector:            selector,
		Crossover:           evo.CrossoverConfig{AllowEdgeCut: cfg.AllowEdgeCut, BiasTopTier: cfg.BiasTopTier},
		OffspringCount:      cfg.OffspringPerCycle,
		ReplaceBehaviorProb: cfg.ReplaceBehaviorProb,
		ToggleModeProb:      cfg.ToggleModeProb,
		InsertTierProb:      cfg.InsertTierProb,
		DeleteTierProb:      cfg.DeleteTierProb,
	}, registry)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		cfg:           cfg,
		registry:      registry,
		tracker:       tracker,
		engine:        engine,
		log:           log,
		baselineSpecs: baseline,
		hallOfFame:    make(map[string]*role.Role),
		byID:          make(map[string]*role.Role),
		nameSeq:       make(map[string]int),
	}
	if err := c.seedBaseline(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) seedBaseline() error {
	c.baseline = c.baseline[:0]
	for _, spec := range c.baselineSpecs {
		r := &role.Role{
			ID:     spec.ID,
			Name:   spec.Name,
			Kind:   spec.Kind,
			Origin: role.OriginBaseline,
			Tiers:  spec.Tiers,
		}
		if err := role.Validate(r, c.registry); err != nil {
			return fmt.Errorf("baseline role %s: %w", spec.ID, err)
		}
		if r.Name == "" {
			name, err := c.deriveName(r)
			if err != nil {
				return err
			}
			r.Name = name
		}
		if _, dup := c.byID[r.ID]; dup {
			return fmt.Errorf("duplicate baseline role id: %s", r.ID)
		}
		c.baseline = append(c.baseline, r)
		c.byID[r.ID] = r
	}
	return nil
}

func (c *Catalog) Config() Config {
	return c.cfg
}

func (c *Catalog) Registry() *behavior.Registry {
	return c.registry
}

// Role looks up any active or hall-of-fame role by id.
func (c *Catalog) Role(id string) (*role.Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, id)
	}
	return r, nil
}

// ActiveRoles returns the baseline and generated roles currently in play.
func (c *Catalog) ActiveRoles() []*role.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.activeLocked()
}

func (c *Catalog) activeLocked() []*role.Role {
	out := make([]*role.Role, 0, len(c.baseline)+len(c.generated))
	out = append(out, c.baseline...)
	out = append(out, c.generated...)
	return out
}

// HallOfFame returns the promoted roles in insertion-independent id order.
func (c *Catalog) HallOfFame() []*role.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*role.Role, 0, len(c.hallOfFame))
	for _, r := range c.generated {
		if _, ok := c.hallOfFame[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) Lineage() []model.LineageRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.LineageRecord, len(c.lineage))
	copy(out, c.lineage)
	return out
}

func (c *Catalog) History() []model.FitnessPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.FitnessPoint, len(c.history))
	copy(out, c.history)
	return out
}

// AssignRole picks the role for an agent. Baseline assignment is a fixed
// deterministic policy over the agent index. With evolution enabled the
// draw is fitness-weighted across the active pool, with a configured chance
// of forcing the freshest generated role.
func (c *Catalog) AssignRole(agentID int, rng *rand.Rand) (*role.Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if agentID < 0 {
		return nil, fmt.Errorf("agent id must be >= 0: %d", agentID)
	}

	if !c.cfg.EvolutionEnabled || len(c.generated) == 0 {
		return c.baseline[agentID%len(c.baseline)], nil
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	if c.cfg.ExplorationRate > 0 && rng.Float64() < c.cfg.ExplorationRate {
		if r, ok := c.byID[c.newest]; ok {
			return r, nil
		}
	}

	ranked := evo.Rank(c.activeLocked())
	return evo.ScoreWeightedSelector{}.PickParent(rng, ranked)
}

// RecordOutcome folds a completed scored unit into a role's statistics and
// promotes it to the hall of fame when its score crosses the threshold.
// Called only at episode or batch boundaries, never mid-tick.
func (c *Catalog) RecordOutcome(roleID string, won bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.byID[roleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, roleID)
	}

	c.tracker.Record(r, won)
	c.maybePromoteLocked(r)
	return nil
}

func (c *Catalog) maybePromoteLocked(r *role.Role) {
	if r.Origin != role.OriginGenerated {
		return
	}
	if _, already := c.hallOfFame[r.ID]; already {
		return
	}

	crossed := r.Score >= c.cfg.PromoteThreshold
	if c.cfg.PromoteStrict {
		crossed = r.Score > c.cfg.PromoteThreshold
	}
	if !crossed {
		return
	}

	r.NameLocked = true
	c.hallOfFame[r.ID] = r
	c.log.Info("role promoted to hall of fame",
		"role", r.ID, "name", r.Name, "score", r.Score, "games", r.Games)
}

// RunEvolution runs one full cycle: selection, crossover, mutation, naming,
// and registration with eviction. Every draw consumes the supplied source.
// Must be invoked strictly between ticks.
func (c *Catalog) RunEvolution(rng *rand.Rand) (model.FitnessPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.EvolutionEnabled {
		return model.FitnessPoint{}, errors.New("evolution is disabled")
	}
	if rng == nil {
		return model.FitnessPoint{}, errors.New("random source is required")
	}

	ranked := evo.Rank(c.activeLocked())
	offspring, lineage, err := c.engine.Offspring(rng, ranked, c.cycle)
	if err != nil {
		return model.FitnessPoint{}, fmt.Errorf("breed offspring: %w", err)
	}

	registered := 0
	for i, child := range offspring {
		name, err := c.deriveName(child)
		if err != nil {
			c.log.Warn("dropping unnameable offspring", "role", child.ID, "error", err)
			continue
		}
		child.Name = name

		if c.registerLocked(child) {
			registered++
			c.lineage = append(c.lineage, lineage[i])
			c.newest = child.ID
		}
	}

	point := c.summarizeLocked()
	c.history = append(c.history, point)
	c.cycle++

	c.log.Info("evolution cycle complete",
		"cycle", point.Cycle, "registered", registered,
		"pool", point.PoolSize, "best", point.BestScore)
	return point, nil
}

// registerLocked inserts a generated role, evicting the lowest-scoring
// non-locked, non-baseline role when the pool is full. With nothing
// evictable the registration is skipped; that is a no-op, not an error.
func (c *Catalog) registerLocked(child *role.Role) bool {
	if _, dup := c.byID[child.ID]; dup {
		c.log.Warn("skipping offspring with duplicate id", "role", child.ID)
		return false
	}

	if len(c.generated) >= c.cfg.PoolCapacity {
		victim := c.evictionCandidateLocked()
		if victim == nil {
			c.log.Warn("pool at capacity with no evictable role; skipping registration",
				"role", child.ID)
			return false
		}
		c.removeGeneratedLocked(victim.ID)
		c.log.Debug("evicted role", "role", victim.ID, "score", victim.Score)
	}

	c.generated = append(c.generated, child)
	c.byID[child.ID] = child
	return true
}

func (c *Catalog) evictionCandidateLocked() *role.Role {
	var victim *role.Role
	for _, r := range c.generated {
		if r.NameLocked {
			continue
		}
		if victim == nil ||
			r.Score < victim.Score ||
			(r.Score == victim.Score && r.ID < victim.ID) {
			victim = r
		}
	}
	return victim
}

func (c *Catalog) removeGeneratedLocked(id string) {
	for i, r := range c.generated {
		if r.ID == id {
			c.generated = append(c.generated[:i], c.generated[i+1:]...)
			break
		}
	}
	delete(c.byID, id)
	delete(c.hallOfFame, id)
}

func (c *Catalog) summarizeLocked() model.FitnessPoint {
	active := c.activeLocked()
	best, total := 0.0, 0.0
	for i, r := range active {
		if i == 0 || r.Score > best {
			best = r.Score
		}
		total += r.Score
	}
	mean := 0.0
	if len(active) > 0 {
		mean = total / float64(len(active))
	}
	return model.FitnessPoint{
		Cycle:          c.cycle,
		BestScore:      best,
		MeanScore:      mean,
		PoolSize:       len(active),
		HallOfFameSize: len(c.hallOfFame),
	}
}

// deriveName names a role after its top tier's primary behavior with a
// numeric disambiguating suffix. Locked names are never re-derived.
func (c *Catalog) deriveName(r *role.Role) (string, error) {
	if r.NameLocked && r.Name != "" {
		return r.Name, nil
	}
	primary, err := role.PrimaryBehavior(r)
	if err != nil {
		return "", err
	}
	b, err := c.registry.Lookup(primary)
	if err != nil {
		return "", err
	}
	c.nameSeq[b.Name]++
	seq := c.nameSeq[b.Name]
	if seq == 1 && r.Origin == role.OriginBaseline {
		return b.Name, nil
	}
	return fmt.Sprintf("%s-%d", b.Name, seq), nil
}

// Reset reinitializes the catalog to its startup state: baseline roles are
// reseeded from the specs, generated roles and accumulated records are
// dropped. Agents must be re-assigned roles only after Reset returns.
func (c *Catalog) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generated = nil
	c.hallOfFame = make(map[string]*role.Role)
	c.byID = make(map[string]*role.Role)
	c.nameSeq = make(map[string]int)
	c.lineage = nil
	c.history = nil
	c.cycle = 0
	c.newest = ""
	return c.seedBaseline()
}
