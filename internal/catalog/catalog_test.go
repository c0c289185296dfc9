package catalog

import (
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"tribemind/internal/behavior"
	"tribemind/internal/role"
)

func testBehaviors() []behavior.Spec {
	return []behavior.Spec{
		{ID: "gather_wood", Name: "Gather Wood"},
		{ID: "gather_ore", Name: "Gather Ore"},
		{ID: "harvest_wheat", Name: "Harvest Wheat"},
		{ID: "attack_tumor", Name: "Attack Tumor"},
		{ID: "flee", Name: "Flee"},
		{ID: "idle", Name: "Idle"},
	}
}

func tierOf(ids ...behavior.ID) role.Tier {
	entries := make([]role.TierEntry, len(ids))
	for i, id := range ids {
		entries[i] = role.TierEntry{Behavior: id}
	}
	return role.Tier{Mode: role.ModeFixed, Entries: entries}
}

func testBaseline() []RoleSpec {
	return []RoleSpec{
		{ID: "baseline-gatherer", Name: "Gatherer", Kind: role.KindBaselineGatherer,
			Tiers: []role.Tier{tierOf("gather_wood", "gather_ore"), tierOf("idle")}},
		{ID: "baseline-fighter", Name: "Fighter", Kind: role.KindBaselineFighter,
			Tiers: []role.Tier{tierOf("attack_tumor"), tierOf("flee", "idle")}},
	}
}

func newTestCatalog(t *testing.T, cfg Config) *Catalog {
	t.Helper()
	c, err := New(cfg, testBehaviors(), testBaseline(), slog.Default())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c
}

func evolvedCatalog(t *testing.T, cfg Config, cycles int) *Catalog {
	t.Helper()
	c := newTestCatalog(t, cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cycles; i++ {
		if _, err := c.RunEvolution(rng); err != nil {
			t.Fatalf("evolution cycle %d: %v", i, err)
		}
	}
	return c
}

func TestNewRequiresSeedWhenEvolutionEnabled(t *testing.T) {
	_, err := New(Config{EvolutionEnabled: true}, testBehaviors(), testBaseline(), nil)
	if err == nil {
		t.Fatal("expected error for missing seed")
	}
	if _, err := New(Config{EvolutionEnabled: false}, testBehaviors(), testBaseline(), nil); err != nil {
		t.Fatalf("baseline-only catalog should not need a seed: %v", err)
	}
}

func TestNewRejectsDuplicateBehavior(t *testing.T) {
	behaviors := append(testBehaviors(), behavior.Spec{ID: "idle", Name: "Idle Twice"})
	_, err := New(Config{}, behaviors, testBaseline(), nil)
	if !errors.Is(err, behavior.ErrDuplicateBehavior) {
		t.Fatalf("expected ErrDuplicateBehavior, got %v", err)
	}
}

func TestNewRejectsBaselineWithDanglingReference(t *testing.T) {
	baseline := []RoleSpec{{ID: "b1", Kind: role.KindBaselineGatherer, Tiers: []role.Tier{tierOf("missing")}}}
	_, err := New(Config{}, testBehaviors(), baseline, nil)
	if !errors.Is(err, behavior.ErrUnknownBehavior) {
		t.Fatalf("expected ErrUnknownBehavior, got %v", err)
	}
}

func TestBaselineOnlyModeNeverAssignsGenerated(t *testing.T) {
	c := newTestCatalog(t, Config{EvolutionEnabled: false})
	rng := rand.New(rand.NewSource(1))

	for agentID := 0; agentID < 1000; agentID++ {
		r, err := c.AssignRole(agentID, rng)
		if err != nil {
			t.Fatalf("assign agent %d: %v", agentID, err)
		}
		if r.Origin != role.OriginBaseline {
			t.Fatalf("agent %d got non-baseline role %s", agentID, r.ID)
		}
	}

	// Assignment is a fixed policy over the agent index.
	a0, _ := c.AssignRole(0, rng)
	a2, _ := c.AssignRole(2, rng)
	if a0.ID != a2.ID {
		t.Fatal("baseline assignment is not deterministic per agent index")
	}
}

func TestRunEvolutionDisabledFails(t *testing.T) {
	c := newTestCatalog(t, Config{EvolutionEnabled: false})
	if _, err := c.RunEvolution(rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error when evolution is disabled")
	}
}

func TestRunEvolutionGrowsPoolDeterministically(t *testing.T) {
	cfg := Config{EvolutionEnabled: true, Seed: 404, OffspringPerCycle: 3}

	first := evolvedCatalog(t, cfg, 5)
	second := evolvedCatalog(t, cfg, 5)

	firstRoles := first.ActiveRoles()
	secondRoles := second.ActiveRoles()
	if len(firstRoles) != len(secondRoles) {
		t.Fatalf("pool size diverged: %d vs %d", len(firstRoles), len(secondRoles))
	}
	for i := range firstRoles {
		if firstRoles[i].ID != secondRoles[i].ID || firstRoles[i].Name != secondRoles[i].Name {
			t.Fatalf("role %d diverged: %s/%s vs %s/%s",
				i, firstRoles[i].ID, firstRoles[i].Name, secondRoles[i].ID, secondRoles[i].Name)
		}
	}

	if len(first.History()) != 5 {
		t.Fatalf("expected 5 history points, got %d", len(first.History()))
	}
	if len(first.Lineage()) == 0 {
		t.Fatal("expected lineage records")
	}
}

func TestEvictionDropsLowestScoreUnlocked(t *testing.T) {
	c := newTestCatalog(t, Config{EvolutionEnabled: true, Seed: 7, PoolCapacity: 2})

	low := &role.Role{ID: "gen-low", Name: "low", Origin: role.OriginGenerated, Score: 0.3,
		Tiers: []role.Tier{tierOf("idle")}}
	high := &role.Role{ID: "gen-high", Name: "high", Origin: role.OriginGenerated, Score: 0.7,
		Tiers: []role.Tier{tierOf("flee")}}
	fresh := &role.Role{ID: "gen-new", Name: "new", Origin: role.OriginGenerated,
		Tiers: []role.Tier{tierOf("gather_ore")}}

	c.mu.Lock()
	if !c.registerLocked(low) || !c.registerLocked(high) {
		c.mu.Unlock()
		t.Fatal("seeding pool failed")
	}
	fresh.Score = 0.5
	if !c.registerLocked(fresh) {
		c.mu.Unlock()
		t.Fatal("registration at capacity should evict, not skip")
	}
	c.mu.Unlock()

	if _, err := c.Role("gen-low"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected score-0.3 role evicted, got %v", err)
	}
	if _, err := c.Role("gen-high"); err != nil {
		t.Fatalf("score-0.7 role should survive: %v", err)
	}
	if _, err := c.Role("gen-new"); err != nil {
		t.Fatalf("new role should be registered: %v", err)
	}
}

func TestEvictionSkipsWhenNothingEvictable(t *testing.T) {
	c := newTestCatalog(t, Config{EvolutionEnabled: true, Seed: 7, PoolCapacity: 1})

	locked := &role.Role{ID: "gen-locked", Name: "locked", NameLocked: true,
		Origin: role.OriginGenerated, Score: 0.1, Tiers: []role.Tier{tierOf("idle")}}
	fresh := &role.Role{ID: "gen-new", Name: "new", Origin: role.OriginGenerated,
		Tiers: []role.Tier{tierOf("flee")}}

	c.mu.Lock()
	if !c.registerLocked(locked) {
		c.mu.Unlock()
		t.Fatal("seeding pool failed")
	}
	if c.registerLocked(fresh) {
		c.mu.Unlock()
		t.Fatal("expected registration skip with no evictable role")
	}
	c.mu.Unlock()

	if _, err := c.Role("gen-locked"); err != nil {
		t.Fatalf("locked role must survive: %v", err)
	}
}

func TestHallOfFamePromotionLocksName(t *testing.T) {
	c := evolvedCatalog(t, Config{
		EvolutionEnabled: true,
		Seed:             11,
		PromoteThreshold: 0.6,
		ScoreAlpha:       0.5,
	}, 1)

	var generated *role.Role
	for _, r := range c.ActiveRoles() {
		if r.Origin == role.OriginGenerated {
			generated = r
			break
		}
	}
	if generated == nil {
		t.Fatal("expected at least one generated role")
	}
	lockedName := generated.Name

	for i := 0; i < 5; i++ {
		if err := c.RecordOutcome(generated.ID, true); err != nil {
			t.Fatalf("record outcome: %v", err)
		}
	}

	if !generated.NameLocked {
		t.Fatalf("expected name lock after crossing threshold, score=%v", generated.Score)
	}
	if len(c.HallOfFame()) != 1 {
		t.Fatalf("expected one hall-of-fame role, got %d", len(c.HallOfFame()))
	}
	if generated.Name != lockedName {
		t.Fatal("promotion changed the display name")
	}

	// Further cycles must not re-derive the locked name.
	rng := rand.New(rand.NewSource(99))
	if _, err := c.RunEvolution(rng); err != nil {
		t.Fatalf("evolution: %v", err)
	}
	if generated.Name != lockedName {
		t.Fatal("locked name was re-derived")
	}
}

func TestPromoteStrictExcludesEqualScore(t *testing.T) {
	c := newTestCatalog(t, Config{
		EvolutionEnabled: true,
		Seed:             3,
		PromoteThreshold: 1.0,
		PromoteStrict:    true,
	})

	r := &role.Role{ID: "gen-1", Name: "one", Origin: role.OriginGenerated,
		Tiers: []role.Tier{tierOf("idle")}}
	c.mu.Lock()
	c.registerLocked(r)
	c.mu.Unlock()

	if err := c.RecordOutcome("gen-1", true); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if r.NameLocked {
		t.Fatal("strict threshold must not promote on equality")
	}
}

func TestRecordOutcomeUnknownRole(t *testing.T) {
	c := newTestCatalog(t, Config{})
	if err := c.RecordOutcome("missing", true); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestBaselineRolesAreNeverEvicted(t *testing.T) {
	c := evolvedCatalog(t, Config{EvolutionEnabled: true, Seed: 21, PoolCapacity: 2, OffspringPerCycle: 4}, 10)

	if _, err := c.Role("baseline-gatherer"); err != nil {
		t.Fatalf("baseline role missing after churn: %v", err)
	}
	if _, err := c.Role("baseline-fighter"); err != nil {
		t.Fatalf("baseline role missing after churn: %v", err)
	}

	generated := 0
	for _, r := range c.ActiveRoles() {
		if r.Origin == role.OriginGenerated {
			generated++
		}
	}
	if generated > 2 {
		t.Fatalf("generated pool exceeded capacity: %d", generated)
	}
}

func TestDescribeResolvesBehaviorNames(t *testing.T) {
	c := newTestCatalog(t, Config{})

	desc, err := c.Describe("baseline-gatherer")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if desc.Name != "Gatherer" || desc.Kind != "baseline_gatherer" || desc.Origin != "baseline" {
		t.Fatalf("unexpected description: %+v", desc)
	}
	if len(desc.Tiers) != 2 || desc.Tiers[0].Behaviors[0] != "Gather Wood" {
		t.Fatalf("unexpected tier listing: %+v", desc.Tiers)
	}
	if _, err := c.Describe("missing"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestResetReturnsToBaselineOnly(t *testing.T) {
	c := evolvedCatalog(t, Config{EvolutionEnabled: true, Seed: 5}, 3)
	if len(c.ActiveRoles()) == len(testBaseline()) {
		t.Fatal("expected generated roles before reset")
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(c.ActiveRoles()) != len(testBaseline()) {
		t.Fatalf("expected baseline-only pool after reset, got %d roles", len(c.ActiveRoles()))
	}
	if len(c.History()) != 0 || len(c.Lineage()) != 0 {
		t.Fatal("reset left stale records")
	}
}
