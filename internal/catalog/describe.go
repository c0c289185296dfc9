package catalog

import "fmt"

// TierDescription lists one tier with its behavior names resolved, for
// logging and tooling.
type TierDescription struct {
	Mode      string
	Behaviors []string
}

type Description struct {
	ID         string
	Name       string
	Kind       string
	Origin     string
	NameLocked bool
	Games      int
	Wins       int
	Score      float64
	Tiers      []TierDescription
}

// Describe returns the human-readable view of a role: display name and the
// ordered tier listing with every behavior id resolved to its name.
func (c *Catalog) Describe(roleID string) (Description, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byID[roleID]
	if !ok {
		return Description{}, fmt.Errorf("%w: %s", ErrRoleNotFound, roleID)
	}

	tiers := make([]TierDescription, len(r.Tiers))
	for i, tier := range r.Tiers {
		names := make([]string, len(tier.Entries))
		for j, entry := range tier.Entries {
			b, err := c.registry.Lookup(entry.Behavior)
			if err != nil {
				return Description{}, fmt.Errorf("role %s tier %d: %w", roleID, i, err)
			}
			names[j] = b.Name
		}
		tiers[i] = TierDescription{Mode: tier.Mode.String(), Behaviors: names}
	}

	return Description{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       r.Kind.String(),
		Origin:     r.Origin.String(),
		NameLocked: r.NameLocked,
		Games:      r.Games,
		Wins:       r.Wins,
		Score:      r.Score,
		Tiers:      tiers,
	}, nil
}
