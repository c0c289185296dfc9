// Package snapshot reads and writes the catalog's persisted form: a
// versioned YAML document, kept human-diffable so high-performing role
// stacks can be compared across runs with ordinary text tooling.
package snapshot

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tribemind/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("snapshot version mismatch")

func Encode(snap model.CatalogSnapshot) ([]byte, error) {
	return yaml.Marshal(snap)
}

func Decode(data []byte) (model.CatalogSnapshot, error) {
	var snap model.CatalogSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return model.CatalogSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.SchemaVersion != CurrentSchemaVersion || snap.CodecVersion != CurrentCodecVersion {
		return model.CatalogSnapshot{}, fmt.Errorf("%w: schema=%d codec=%d",
			ErrVersionMismatch, snap.SchemaVersion, snap.CodecVersion)
	}
	return snap, nil
}

// Save writes the snapshot atomically: to a temp file in the same directory,
// then renamed over the target.
func Save(path string, snap model.CatalogSnapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads a snapshot file. Callers treat any error here as non-fatal and
// fall back to the baseline-only catalog.
func Load(path string) (model.CatalogSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CatalogSnapshot{}, err
	}
	return Decode(data)
}
