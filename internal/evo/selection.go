// Package evo breeds new roles from the fitness-ranked active pool:
// parent selection, tier-boundary crossover, and structural mutation.
// Every random draw comes from a caller-supplied source so a fixed seed
// reproduces the exact offspring sequence.
package evo

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"tribemind/internal/role"
)

// Selector chooses parents from ranked roles for recombination. The ranked
// slice is sorted by descending score with id as the tie break.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []*role.Role) (*role.Role, error)
}

// TopKSelector picks uniformly from the K highest-scoring roles.
type TopKSelector struct {
	K int
}

func (TopKSelector) Name() string {
	return "top_k"
}

func (s TopKSelector) PickParent(rng *rand.Rand, ranked []*role.Role) (*role.Role, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if len(ranked) == 0 {
		return nil, errors.New("no parent candidates")
	}

	k := s.K
	if k <= 0 {
		k = 3
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[rng.Intn(k)], nil
}

// ScoreWeightedSelector samples parents with probability proportional to
// score. Scores at or below zero are shifted so every role keeps a small
// chance of being picked.
type ScoreWeightedSelector struct{}

func (ScoreWeightedSelector) Name() string {
	return "score_weighted"
}

func (ScoreWeightedSelector) PickParent(rng *rand.Rand, ranked []*role.Role) (*role.Role, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if len(ranked) == 0 {
		return nil, errors.New("no parent candidates")
	}

	minScore := ranked[0].Score
	for _, r := range ranked {
		if r.Score < minScore {
			minScore = r.Score
		}
	}
	shift := 0.0
	if minScore <= 0 {
		shift = -minScore + 1e-9
	}

	total := 0.0
	for _, r := range ranked {
		total += r.Score + shift
	}
	if total <= 0 {
		return ranked[rng.Intn(len(ranked))], nil
	}

	pick := rng.Float64() * total
	acc := 0.0
	for _, r := range ranked {
		acc += r.Score + shift
		if pick <= acc {
			return r, nil
		}
	}
	return ranked[len(ranked)-1], nil
}

// NewSelector builds a selector from its configured name.
func NewSelector(kind string, topK int) (Selector, error) {
	switch kind {
	case "", "top_k":
		return TopKSelector{K: topK}, nil
	case "score_weighted":
		return ScoreWeightedSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown selector: %s", kind)
	}
}

// Rank sorts roles by descending score, breaking ties on id so the order is
// stable across runs.
func Rank(pool []*role.Role) []*role.Role {
	ranked := make([]*role.Role, len(pool))
	copy(ranked, pool)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].ID < ranked[j].ID
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
