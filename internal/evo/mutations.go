package evo

import (
	"errors"
	"math/rand"

	"tribemind/internal/behavior"
	"tribemind/internal/role"
)

// ErrNoMutationChoice signals an operator that had nothing legal to do; the
// engine treats it as a no-op, not a failure.
var ErrNoMutationChoice = errors.New("no mutation choice available")

// Operator is one structural mutation. Apply never edits its input: it
// returns a rebuilt role so tiers already attached to live roles stay
// immutable.
type Operator interface {
	Name() string
	Apply(rng *rand.Rand, r *role.Role) (*role.Role, error)
}

// ReplaceBehavior swaps one behavior reference in one tier for a different
// registered id that the tier does not already contain.
type ReplaceBehavior struct {
	Registry *behavior.Registry
}

func (ReplaceBehavior) Name() string {
	return "replace_behavior"
}

func (o ReplaceBehavior) Apply(rng *rand.Rand, r *role.Role) (*role.Role, error) {
	if o.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if len(r.Tiers) == 0 {
		return nil, role.ErrInvariantViolation
	}

	tierIdx := rng.Intn(len(r.Tiers))
	tier := r.Tiers[tierIdx]
	entryIdx := rng.Intn(len(tier.Entries))

	present := make(map[behavior.ID]struct{}, len(tier.Entries))
	for _, entry := range tier.Entries {
		present[entry.Behavior] = struct{}{}
	}
	candidates := make([]behavior.ID, 0, o.Registry.Len())
	for _, id := range o.Registry.IDs() {
		if _, used := present[id]; !used {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationChoice
	}

	mutated := role.Clone(r, r.ID)
	mutated.Tiers[tierIdx].Entries[entryIdx].Behavior = candidates[rng.Intn(len(candidates))]
	return mutated, nil
}

// ToggleMode switches one tier's selection mode to a different mode.
type ToggleMode struct{}

func (ToggleMode) Name() string {
	return "toggle_mode"
}

func (ToggleMode) Apply(rng *rand.Rand, r *role.Role) (*role.Role, error) {
	if len(r.Tiers) == 0 {
		return nil, role.ErrInvariantViolation
	}

	modes := []role.SelectionMode{role.ModeFixed, role.ModeShuffle, role.ModeWeightedShuffle}
	tierIdx := rng.Intn(len(r.Tiers))

	others := make([]role.SelectionMode, 0, len(modes)-1)
	for _, mode := range modes {
		if mode != r.Tiers[tierIdx].Mode {
			others = append(others, mode)
		}
	}

	mutated := role.Clone(r, r.ID)
	mutated.Tiers[tierIdx].Mode = others[rng.Intn(len(others))]
	return mutated, nil
}

// InsertTier adds a new single-behavior tier at a random stack position.
type InsertTier struct {
	Registry *behavior.Registry
}

func (InsertTier) Name() string {
	return "insert_tier"
}

func (o InsertTier) Apply(rng *rand.Rand, r *role.Role) (*role.Role, error) {
	if o.Registry == nil {
		return nil, errors.New("registry is required")
	}
	ids := o.Registry.IDs()
	if len(ids) == 0 {
		return nil, ErrNoMutationChoice
	}

	tier := role.Tier{
		Mode:    role.ModeFixed,
		Entries: []role.TierEntry{{Behavior: ids[rng.Intn(len(ids))]}},
	}
	pos := rng.Intn(len(r.Tiers) + 1)

	mutated := role.Clone(r, r.ID)
	mutated.Tiers = append(mutated.Tiers, role.Tier{})
	copy(mutated.Tiers[pos+1:], mutated.Tiers[pos:])
	mutated.Tiers[pos] = tier
	return mutated, nil
}

// DeleteTier removes one tier at a random position, never the last one.
type DeleteTier struct{}

func (DeleteTier) Name() string {
	return "delete_tier"
}

func (DeleteTier) Apply(rng *rand.Rand, r *role.Role) (*role.Role, error) {
	if len(r.Tiers) <= 1 {
		return nil, ErrNoMutationChoice
	}

	pos := rng.Intn(len(r.Tiers))
	mutated := role.Clone(r, r.ID)
	mutated.Tiers = append(mutated.Tiers[:pos], mutated.Tiers[pos+1:]...)
	return mutated, nil
}
