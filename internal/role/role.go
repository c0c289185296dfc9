// Package role defines the prioritized decision structures assigned to
// agents: tiers of behavior references stacked by priority, plus the
// fitness statistics the evolution engine selects on.
package role

import (
	"errors"
	"fmt"

	"tribemind/internal/behavior"
	"tribemind/internal/model"
)

var ErrInvariantViolation = errors.New("role invariant violation")

// SelectionMode controls how a tier orders its behaviors when materialized.
type SelectionMode int

const (
	ModeFixed SelectionMode = iota
	ModeShuffle
	ModeWeightedShuffle
)

func (m SelectionMode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeShuffle:
		return "shuffle"
	case ModeWeightedShuffle:
		return "weighted_shuffle"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(s string) (SelectionMode, error) {
	switch s {
	case "fixed":
		return ModeFixed, nil
	case "shuffle":
		return ModeShuffle, nil
	case "weighted_shuffle":
		return ModeWeightedShuffle, nil
	default:
		return ModeFixed, fmt.Errorf("unknown selection mode: %s", s)
	}
}

// Kind is the baseline-ancestry tag. Generated offspring inherit it from the
// higher-scoring parent; it is opaque metadata, never dispatch logic.
type Kind int

const (
	KindGenerated Kind = iota
	KindBaselineGatherer
	KindBaselineBuilder
	KindBaselineFighter
)

func (k Kind) String() string {
	switch k {
	case KindBaselineGatherer:
		return "baseline_gatherer"
	case KindBaselineBuilder:
		return "baseline_builder"
	case KindBaselineFighter:
		return "baseline_fighter"
	case KindGenerated:
		return "generated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "baseline_gatherer":
		return KindBaselineGatherer, nil
	case "baseline_builder":
		return KindBaselineBuilder, nil
	case "baseline_fighter":
		return KindBaselineFighter, nil
	case "generated":
		return KindGenerated, nil
	default:
		return KindGenerated, fmt.Errorf("unknown role kind: %s", s)
	}
}

// Origin distinguishes the fixed baseline stacks from evolved ones.
type Origin int

const (
	OriginBaseline Origin = iota
	OriginGenerated
)

func (o Origin) String() string {
	if o == OriginBaseline {
		return "baseline"
	}
	return "generated"
}

func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "baseline":
		return OriginBaseline, nil
	case "generated":
		return OriginGenerated, nil
	default:
		return OriginGenerated, fmt.Errorf("unknown role origin: %s", s)
	}
}

// TierEntry references one behavior with an optional sampling weight.
// Weight <= 0 means equal weight under weighted shuffle.
type TierEntry struct {
	Behavior behavior.ID
	Weight   float64
}

// Tier is one priority level. Tiers are immutable once attached to a role;
// mutation always produces a new tier so roles stay safely shareable.
type Tier struct {
	Mode    SelectionMode
	Entries []TierEntry
}

// Role is an ordered stack of tiers, index 0 highest priority. Tier order is
// the sole priority mechanism.
type Role struct {
	ID         string
	Name       string
	NameLocked bool
	Kind       Kind
	Origin     Origin
	Tiers      []Tier

	// Fitness statistics, updated only between ticks.
	Games int
	Wins  int
	Score float64
}

func (r *Role) Baseline() bool {
	return r.Origin == OriginBaseline
}

// Validate checks the role invariants: at least one tier, every tier
// non-empty with no duplicate behaviors, and every reference resolvable in
// the registry. Dangling references are a load-time error, never a runtime
// one.
func Validate(r *Role, reg *behavior.Registry) error {
	if r == nil {
		return fmt.Errorf("%w: nil role", ErrInvariantViolation)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: role id is required", ErrInvariantViolation)
	}
	if len(r.Tiers) == 0 {
		return fmt.Errorf("%w: role %s has no tiers", ErrInvariantViolation, r.ID)
	}
	for i, tier := range r.Tiers {
		if err := ValidateTier(tier, reg); err != nil {
			return fmt.Errorf("role %s tier %d: %w", r.ID, i, err)
		}
	}
	return nil
}

func ValidateTier(t Tier, reg *behavior.Registry) error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("%w: empty tier", ErrInvariantViolation)
	}
	seen := make(map[behavior.ID]struct{}, len(t.Entries))
	for _, entry := range t.Entries {
		if _, dup := seen[entry.Behavior]; dup {
			return fmt.Errorf("%w: duplicate behavior %s in tier", ErrInvariantViolation, entry.Behavior)
		}
		seen[entry.Behavior] = struct{}{}
		if reg != nil && !reg.Contains(entry.Behavior) {
			return fmt.Errorf("%w: %s", behavior.ErrUnknownBehavior, entry.Behavior)
		}
	}
	return nil
}

// Clone deep-copies a role under a new id. Fitness statistics are not
// carried over: a clone is a fresh individual.
func Clone(r *Role, id string) *Role {
	tiers := make([]Tier, len(r.Tiers))
	for i, tier := range r.Tiers {
		tiers[i] = CloneTier(tier)
	}
	return &Role{
		ID:     id,
		Name:   r.Name,
		Kind:   r.Kind,
		Origin: r.Origin,
		Tiers:  tiers,
	}
}

func CloneTier(t Tier) Tier {
	entries := make([]TierEntry, len(t.Entries))
	copy(entries, t.Entries)
	return Tier{Mode: t.Mode, Entries: entries}
}

// PrimaryBehavior returns the first behavior of the top tier, the anchor for
// auto-derived display names.
func PrimaryBehavior(r *Role) (behavior.ID, error) {
	if len(r.Tiers) == 0 || len(r.Tiers[0].Entries) == 0 {
		return "", fmt.Errorf("%w: role %s has no primary behavior", ErrInvariantViolation, r.ID)
	}
	return r.Tiers[0].Entries[0].Behavior, nil
}

// ToRecord converts a role to its persisted form.
func ToRecord(r *Role) model.RoleRecord {
	tiers := make([]model.TierRecord, len(r.Tiers))
	for i, tier := range r.Tiers {
		entries := make([]model.TierEntryRecord, len(tier.Entries))
		for j, entry := range tier.Entries {
			entries[j] = model.TierEntryRecord{Behavior: string(entry.Behavior), Weight: entry.Weight}
		}
		tiers[i] = model.TierRecord{Mode: tier.Mode.String(), Entries: entries}
	}
	return model.RoleRecord{
		ID:         r.ID,
		Name:       r.Name,
		NameLocked: r.NameLocked,
		Kind:       r.Kind.String(),
		Origin:     r.Origin.String(),
		Tiers:      tiers,
		Games:      r.Games,
		Wins:       r.Wins,
		Score:      r.Score,
	}
}

// FromRecord converts a persisted role back, validating it against the
// registry. Roles that reference unknown behaviors come back with
// behavior.ErrUnknownBehavior so the loader can drop them and continue.
func FromRecord(rec model.RoleRecord, reg *behavior.Registry) (*Role, error) {
	kind, err := ParseKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	origin, err := ParseOrigin(rec.Origin)
	if err != nil {
		return nil, err
	}

	tiers := make([]Tier, len(rec.Tiers))
	for i, tierRec := range rec.Tiers {
		mode, err := ParseMode(tierRec.Mode)
		if err != nil {
			return nil, fmt.Errorf("role %s tier %d: %w", rec.ID, i, err)
		}
		entries := make([]TierEntry, len(tierRec.Entries))
		for j, entryRec := range tierRec.Entries {
			entries[j] = TierEntry{Behavior: behavior.ID(entryRec.Behavior), Weight: entryRec.Weight}
		}
		tiers[i] = Tier{Mode: mode, Entries: entries}
	}

	r := &Role{
		ID:         rec.ID,
		Name:       rec.Name,
		NameLocked: rec.NameLocked,
		Kind:       kind,
		Origin:     origin,
		Tiers:      tiers,
		Games:      rec.Games,
		Wins:       rec.Wins,
		Score:      rec.Score,
	}
	if err := Validate(r, reg); err != nil {
		return nil, err
	}
	return r, nil
}
