package main

import (
	"context"
	"path/filepath"
	"testing"

	"tribemind/internal/behavior"
	"tribemind/internal/role"
	"tribemind/internal/snapshot"
)

func TestDemandMet(t *testing.T) {
	order := []behavior.ID{"gather_wood", "explore", "idle", "flee"}

	if !demandMet(order, "explore", 3) {
		t.Fatal("demand inside window should score")
	}
	if demandMet(order, "flee", 3) {
		t.Fatal("demand outside window should not score")
	}
	if demandMet(order, "attack_tumor", 10) {
		t.Fatal("absent demand should not score")
	}
	if !demandMet(order, "flee", 10) {
		t.Fatal("window wider than the order must clamp, not panic")
	}
}

func TestDefaultSeedDataIsConsistent(t *testing.T) {
	known := make(map[behavior.ID]bool)
	for _, spec := range defaultBehaviors() {
		if known[spec.ID] {
			t.Fatalf("duplicate behavior id: %s", spec.ID)
		}
		known[spec.ID] = true
	}

	for _, rs := range defaultBaselineRoles() {
		if len(rs.Tiers) == 0 {
			t.Fatalf("baseline %s has no tiers", rs.ID)
		}
		for i, tier := range rs.Tiers {
			if len(tier.Entries) == 0 {
				t.Fatalf("baseline %s tier %d is empty", rs.ID, i)
			}
			for _, entry := range tier.Entries {
				if !known[entry.Behavior] {
					t.Fatalf("baseline %s references unknown behavior %s", rs.ID, entry.Behavior)
				}
			}
		}
		if rs.Kind == role.KindGenerated {
			t.Fatalf("baseline %s must carry a baseline kind", rs.ID)
		}
	}
}

func TestRunBaselineOnly(t *testing.T) {
	err := run(context.Background(), []string{
		"run", "-episodes", "20", "-agents", "4", "-store", "memory",
	})
	if err != nil {
		t.Fatalf("baseline-only run: %v", err)
	}
}

func TestRunWithEvolutionWritesSnapshot(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "catalog.yaml")

	err := run(context.Background(), []string{
		"run", "-evolve", "-seed", "7",
		"-episodes", "30", "-agents", "6", "-evolve-every", "5",
		"-store", "memory", "-snapshot", snapPath,
	})
	if err != nil {
		t.Fatalf("evolution run: %v", err)
	}

	snap, err := snapshot.Load(snapPath)
	if err != nil {
		t.Fatalf("load written snapshot: %v", err)
	}
	if len(snap.Behaviors) != len(defaultBehaviors()) {
		t.Fatalf("snapshot carries %d behaviors, want %d",
			len(snap.Behaviors), len(defaultBehaviors()))
	}
	if len(snap.Roles)+len(snap.HallOfFame) == 0 {
		t.Fatal("expected generated roles after 6 evolution cycles")
	}
	for _, rec := range append(snap.Roles, snap.HallOfFame...) {
		if rec.Origin != "generated" {
			t.Fatalf("baseline role %s leaked into snapshot", rec.ID)
		}
	}

	// A second run resumes from the snapshot without error.
	err = run(context.Background(), []string{
		"run", "-evolve", "-seed", "8",
		"-episodes", "10", "-agents", "6", "-evolve-every", "5",
		"-store", "memory", "-snapshot", snapPath,
	})
	if err != nil {
		t.Fatalf("resumed run: %v", err)
	}
}

func TestRunRequiresSeedWithEvolve(t *testing.T) {
	err := run(context.Background(), []string{"run", "-evolve", "-episodes", "5"})
	if err == nil {
		t.Fatal("expected seed requirement error")
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected usage error")
	}
}
