package role

import (
	"errors"
	"math/rand"

	"tribemind/internal/behavior"
)

// Materialize resolves a role into one flat ordered behavior sequence for a
// single decision instant. Tiers are walked in stack order and each tier
// contributes a sub-sequence according to its selection mode. The call is
// stateless: all randomness comes from the caller-supplied source, so one
// agent/tick stream never perturbs another.
func Materialize(r *Role, rng *rand.Rand) ([]behavior.ID, error) {
	if r == nil || len(r.Tiers) == 0 {
		return nil, ErrInvariantViolation
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	total := 0
	for _, tier := range r.Tiers {
		total += len(tier.Entries)
	}

	out := make([]behavior.ID, 0, total)
	for _, tier := range r.Tiers {
		switch tier.Mode {
		case ModeShuffle:
			out = append(out, shuffled(tier.Entries, rng)...)
		case ModeWeightedShuffle:
			out = append(out, weightedShuffled(tier.Entries, rng)...)
		default:
			for _, entry := range tier.Entries {
				out = append(out, entry.Behavior)
			}
		}
	}
	return out, nil
}

func shuffled(entries []TierEntry, rng *rand.Rand) []behavior.ID {
	ids := make([]behavior.ID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.Behavior
	}
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

// weightedShuffled draws entries without replacement, each draw proportional
// to weight. Entries with zero or unspecified weight count as weight 1.
func weightedShuffled(entries []TierEntry, rng *rand.Rand) []behavior.ID {
	remaining := make([]TierEntry, len(entries))
	copy(remaining, entries)

	out := make([]behavior.ID, 0, len(entries))
	for len(remaining) > 0 {
		total := 0.0
		for _, entry := range remaining {
			total += effectiveWeight(entry)
		}

		pick := rng.Float64() * total
		acc := 0.0
		chosen := len(remaining) - 1
		for i, entry := range remaining {
			acc += effectiveWeight(entry)
			if pick <= acc {
				chosen = i
				break
			}
		}

		out = append(out, remaining[chosen].Behavior)
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}
	return out
}

func effectiveWeight(entry TierEntry) float64 {
	if entry.Weight <= 0 {
		return 1
	}
	return entry.Weight
}
