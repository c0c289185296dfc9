package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`
	CodecVersion  int `json:"codec_version" yaml:"codec_version"`
}

type BehaviorRecord struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type TierEntryRecord struct {
	Behavior string  `json:"behavior" yaml:"behavior"`
	Weight   float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

type TierRecord struct {
	Mode    string            `json:"mode" yaml:"mode"`
	Entries []TierEntryRecord `json:"entries" yaml:"entries"`
}

type RoleRecord struct {
	ID         string       `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	NameLocked bool         `json:"name_locked,omitempty" yaml:"name_locked,omitempty"`
	Kind       string       `json:"kind" yaml:"kind"`
	Origin     string       `json:"origin" yaml:"origin"`
	Tiers      []TierRecord `json:"tiers" yaml:"tiers"`
	Games      int          `json:"games" yaml:"games"`
	Wins       int          `json:"wins" yaml:"wins"`
	Score      float64      `json:"score" yaml:"score"`
}

// CatalogSnapshot is the persisted form of a catalog. Baseline roles are
// deliberately absent: they are reseeded from the registry on every load.
// Hall-of-fame roles live in their own section so high-performing stacks
// stay easy to diff across runs.
type CatalogSnapshot struct {
	VersionedRecord `yaml:",inline"`
	RunID           string           `json:"run_id" yaml:"run_id"`
	Tick            int64            `json:"tick" yaml:"tick"`
	Behaviors       []BehaviorRecord `json:"behaviors" yaml:"behaviors"`
	Roles           []RoleRecord     `json:"roles" yaml:"roles"`
	HallOfFame      []RoleRecord     `json:"hall_of_fame" yaml:"hall_of_fame"`
}

// FitnessPoint summarizes the active pool after one evolution cycle.
type FitnessPoint struct {
	Cycle          int     `json:"cycle" yaml:"cycle"`
	BestScore      float64 `json:"best_score" yaml:"best_score"`
	MeanScore      float64 `json:"mean_score" yaml:"mean_score"`
	PoolSize       int     `json:"pool_size" yaml:"pool_size"`
	HallOfFameSize int     `json:"hall_of_fame_size" yaml:"hall_of_fame_size"`
}

// LineageRecord traces how a generated role came to be.
type LineageRecord struct {
	RoleID     string   `json:"role_id" yaml:"role_id"`
	ParentA    string   `json:"parent_a" yaml:"parent_a"`
	ParentB    string   `json:"parent_b,omitempty" yaml:"parent_b,omitempty"`
	Cycle      int      `json:"cycle" yaml:"cycle"`
	Operations []string `json:"operations,omitempty" yaml:"operations,omitempty"`
}
