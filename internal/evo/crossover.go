package evo

import (
	"errors"
	"math/rand"

	"tribemind/internal/role"
)

// CrossoverConfig captures the two knobs the recombination step exposes.
// AllowEdgeCut widens the cut-point range to include the role boundaries
// (k=0 copies all of parent B, k=maxTiers copies all of parent A).
// BiasTopTier forces tier 0 to come from the higher-scoring parent
// regardless of where the cut landed.
type CrossoverConfig struct {
	AllowEdgeCut bool
	BiasTopTier  bool
}

// Crossover recombines two parents at a tier boundary: offspring tiers are
// parent A's tiers[0:k] followed by parent B's tiers[k:]. A parent with zero
// tiers should not exist, but is defended against by copying the other
// parent. The offspring inherits the higher-scoring parent's kind tag and
// starts with fresh statistics and an unlocked, empty name.
func Crossover(rng *rand.Rand, a, b *role.Role, cfg CrossoverConfig, childID string) (*role.Role, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if a == nil || b == nil {
		return nil, errors.New("both parents are required")
	}

	fitter := a
	if b.Score > a.Score {
		fitter = b
	}

	if len(a.Tiers) == 0 && len(b.Tiers) == 0 {
		return nil, role.ErrInvariantViolation
	}
	if len(a.Tiers) == 0 {
		return newOffspring(childID, b.Kind, cloneTiers(b.Tiers)), nil
	}
	if len(b.Tiers) == 0 {
		return newOffspring(childID, a.Kind, cloneTiers(a.Tiers)), nil
	}

	k := drawCutPoint(rng, len(a.Tiers), len(b.Tiers), cfg.AllowEdgeCut)

	tiers := make([]role.Tier, 0, len(a.Tiers)+len(b.Tiers))
	if k <= len(a.Tiers) {
		tiers = append(tiers, cloneTiers(a.Tiers[:k])...)
	} else {
		tiers = append(tiers, cloneTiers(a.Tiers)...)
	}
	if k < len(b.Tiers) {
		tiers = append(tiers, cloneTiers(b.Tiers[k:])...)
	}
	if len(tiers) == 0 {
		// Edge cut past both parents; fall back to the fitter parent.
		tiers = cloneTiers(fitter.Tiers)
	}

	if cfg.BiasTopTier {
		tiers[0] = role.CloneTier(fitter.Tiers[0])
	}

	return newOffspring(childID, fitter.Kind, tiers), nil
}

func drawCutPoint(rng *rand.Rand, lenA, lenB int, allowEdge bool) int {
	maxTiers := lenA
	if lenB > maxTiers {
		maxTiers = lenB
	}
	if allowEdge {
		return rng.Intn(maxTiers + 1)
	}
	if maxTiers <= 1 {
		return 1
	}
	return 1 + rng.Intn(maxTiers-1)
}

func newOffspring(id string, kind role.Kind, tiers []role.Tier) *role.Role {
	return &role.Role{
		ID:     id,
		Kind:   kind,
		Origin: role.OriginGenerated,
		Tiers:  tiers,
	}
}

func cloneTiers(tiers []role.Tier) []role.Tier {
	out := make([]role.Tier, len(tiers))
	for i, tier := range tiers {
		out[i] = role.CloneTier(tier)
	}
	return out
}
