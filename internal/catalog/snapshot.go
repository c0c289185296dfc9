package catalog

import (
	"errors"
	"sort"

	"tribemind/internal/model"
	"tribemind/internal/role"
	"tribemind/internal/snapshot"
)

// Snapshot captures the catalog's persistable state. Baseline roles are
// intentionally excluded: they are reseeded from the registry on every load,
// so the persisted form only carries what evolution produced.
func (c *Catalog) Snapshot(tick int64) model.CatalogSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	behaviors := make([]model.BehaviorRecord, 0, c.registry.Len())
	for _, id := range c.registry.IDs() {
		b, _ := c.registry.Lookup(id)
		behaviors = append(behaviors, model.BehaviorRecord{ID: string(b.ID), Name: b.Name})
	}

	var roles, hof []model.RoleRecord
	for _, r := range c.generated {
		rec := role.ToRecord(r)
		if _, promoted := c.hallOfFame[r.ID]; promoted {
			hof = append(hof, rec)
		} else {
			roles = append(roles, rec)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	sort.Slice(hof, func(i, j int) bool { return hof[i].ID < hof[j].ID })

	return model.CatalogSnapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: snapshot.CurrentSchemaVersion,
			CodecVersion:  snapshot.CurrentCodecVersion,
		},
		RunID:      c.cfg.RunID,
		Tick:       tick,
		Behaviors:  behaviors,
		Roles:      roles,
		HallOfFame: hof,
	}
}

// Restore merges a persisted snapshot into a freshly constructed catalog.
// Loading is additive: baseline roles stay as seeded from the registry, and
// each persisted role is validated against it. A role referencing an unknown
// behavior is dropped with a warning; load continues.
func (c *Catalog) Restore(snap model.CatalogSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.EvolutionEnabled {
		return errors.New("evolution is disabled")
	}

	restore := func(records []model.RoleRecord, promoted bool) {
		for _, rec := range records {
			r, err := role.FromRecord(rec, c.registry)
			if err != nil {
				c.log.Warn("dropping persisted role", "role", rec.ID, "error", err)
				continue
			}
			if _, dup := c.byID[r.ID]; dup {
				c.log.Warn("dropping persisted role with duplicate id", "role", r.ID)
				continue
			}
			if promoted {
				r.NameLocked = true
				c.hallOfFame[r.ID] = r
			}
			if !c.registerLocked(r) {
				delete(c.hallOfFame, r.ID)
				continue
			}
			c.reserveName(r.Name)
		}
	}

	restore(snap.HallOfFame, true)
	restore(snap.Roles, false)
	return nil
}

// reserveName keeps the disambiguating suffix counter ahead of names that
// came back from a snapshot, so newly derived names never collide.
func (c *Catalog) reserveName(name string) {
	base, seq := splitNameSuffix(name)
	if seq > c.nameSeq[base] {
		c.nameSeq[base] = seq
	}
}

func splitNameSuffix(name string) (string, int) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '-' {
			seq := 0
			for _, ch := range name[i+1:] {
				if ch < '0' || ch > '9' {
					return name, 1
				}
				seq = seq*10 + int(ch-'0')
			}
			return name[:i], seq
		}
		if name[i] < '0' || name[i] > '9' {
			break
		}
	}
	return name, 1
}
