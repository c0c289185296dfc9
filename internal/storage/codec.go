package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"tribemind/internal/model"
	"tribemind/internal/snapshot"
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeSnapshot(snap model.CatalogSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

func DecodeSnapshot(data []byte) (model.CatalogSnapshot, error) {
	var snap model.CatalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.CatalogSnapshot{}, err
	}
	if snap.SchemaVersion != snapshot.CurrentSchemaVersion || snap.CodecVersion != snapshot.CurrentCodecVersion {
		return model.CatalogSnapshot{}, fmt.Errorf("%w: schema=%d codec=%d",
			ErrVersionMismatch, snap.SchemaVersion, snap.CodecVersion)
	}
	return snap, nil
}

func EncodeFitnessHistory(points []model.FitnessPoint) ([]byte, error) {
	return json.Marshal(points)
}

func DecodeFitnessHistory(data []byte) ([]model.FitnessPoint, error) {
	var points []model.FitnessPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func EncodeLineage(records []model.LineageRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeLineage(data []byte) ([]model.LineageRecord, error) {
	var records []model.LineageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
