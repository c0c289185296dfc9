package main

import (
	"tribemind/internal/behavior"
	"tribemind/internal/catalog"
	"tribemind/internal/role"
)

// defaultBehaviors is the tribal-village action vocabulary. The engine never
// hard-codes these; they are seed data owned by the binary.
func defaultBehaviors() []behavior.Spec {
	return []behavior.Spec{
		{ID: "gather_wood", Name: "Gather Wood"},
		{ID: "gather_ore", Name: "Gather Ore"},
		{ID: "harvest_wheat", Name: "Harvest Wheat"},
		{ID: "draw_water", Name: "Draw Water"},
		{ID: "smelt_bar", Name: "Smelt Bar"},
		{ID: "craft_spear", Name: "Craft Spear"},
		{ID: "craft_armor", Name: "Craft Armor"},
		{ID: "weave_cloth", Name: "Weave Cloth"},
		{ID: "cook_food", Name: "Cook Food"},
		{ID: "collect_heart", Name: "Collect Heart"},
		{ID: "attack_tumor", Name: "Attack Tumor"},
		{ID: "flee", Name: "Flee"},
		{ID: "explore", Name: "Explore"},
		{ID: "idle", Name: "Idle"},
	}
}

func fixedTier(ids ...behavior.ID) role.Tier {
	entries := make([]role.TierEntry, len(ids))
	for i, id := range ids {
		entries[i] = role.TierEntry{Behavior: id}
	}
	return role.Tier{Mode: role.ModeFixed, Entries: entries}
}

func shuffleTier(ids ...behavior.ID) role.Tier {
	t := fixedTier(ids...)
	t.Mode = role.ModeShuffle
	return t
}

func weightedTier(entries ...role.TierEntry) role.Tier {
	return role.Tier{Mode: role.ModeWeightedShuffle, Entries: entries}
}

// defaultBaselineRoles defines the three hand-tuned starting stacks. They are
// reseeded on every startup and never persisted or evicted.
func defaultBaselineRoles() []catalog.RoleSpec {
	return []catalog.RoleSpec{
		{
			ID:   "baseline-gatherer",
			Name: "Gatherer",
			Kind: role.KindBaselineGatherer,
			Tiers: []role.Tier{
				weightedTier(
					role.TierEntry{Behavior: "gather_wood", Weight: 3},
					role.TierEntry{Behavior: "gather_ore", Weight: 2},
					role.TierEntry{Behavior: "harvest_wheat", Weight: 2},
					role.TierEntry{Behavior: "draw_water", Weight: 1},
				),
				fixedTier("explore"),
				fixedTier("idle"),
			},
		},
		{
			ID:   "baseline-builder",
			Name: "Builder",
			Kind: role.KindBaselineBuilder,
			Tiers: []role.Tier{
				fixedTier("smelt_bar", "craft_spear", "craft_armor"),
				shuffleTier("weave_cloth", "cook_food"),
				fixedTier("gather_wood", "idle"),
			},
		},
		{
			ID:   "baseline-fighter",
			Name: "Fighter",
			Kind: role.KindBaselineFighter,
			Tiers: []role.Tier{
				fixedTier("attack_tumor", "collect_heart"),
				weightedTier(
					role.TierEntry{Behavior: "flee", Weight: 2},
					role.TierEntry{Behavior: "explore", Weight: 1},
				),
				fixedTier("idle"),
			},
		},
	}
}
