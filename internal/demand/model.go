package demand

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/transitlab/demandcast/internal/forest"
)

// ArtifactVersion guards the gob layout of persisted model files.
const ArtifactVersion = 1

// Model couples a fitted forest with the encoding schema it was fit
// under and enough metadata to trace the run that produced it. The whole
// struct persists as one opaque gob blob.
type Model struct {
	Version   int
	RunID     string
	CreatedAt time.Time
	Seed      uint64
	Trees     int
	MaxDepth  int
	Schema    *Schema
	Forest    *forest.Forest
}

// Save writes the model to path, silently overwriting any previous
// artifact there.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model artifact %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encode model artifact: %w", err)
	}
	return f.Close()
}

// LoadModel reads a model artifact, rejecting unknown artifact or schema
// versions so a stale blob cannot silently score with the wrong layout.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if m.Version != ArtifactVersion {
		return nil, fmt.Errorf("model artifact %s: artifact version %d, this build reads %d", path, m.Version, ArtifactVersion)
	}
	if m.Schema == nil || m.Forest == nil {
		return nil, fmt.Errorf("model artifact %s: missing schema or forest", path)
	}
	if m.Schema.Version != SchemaVersion {
		return nil, fmt.Errorf("model artifact %s: encoding schema version %d, this build reads %d", path, m.Schema.Version, SchemaVersion)
	}
	return &m, nil
}

// Predict encodes records with the persisted schema (never re-derived
// from the input) and averages the forest's trees. Predictions line up
// with stats.Kept, which differs from the input only under DriftDrop.
func (m *Model) Predict(records []Record, policy DriftPolicy) ([]float64, EncodeStats, error) {
	x, _, stats, err := m.Schema.Encode(records, policy)
	if err != nil {
		return nil, stats, err
	}
	return m.Forest.Predict(x), stats, nil
}

// FeatureImportance is a (feature name, score) report row.
type FeatureImportance struct {
	Feature string
	Score   float64
}

// RankedImportances pairs schema column names with the forest's impurity
// importances, highest first; ties keep matrix column order.
func (m *Model) RankedImportances() []FeatureImportance {
	scores := m.Forest.FeatureImportances()
	names := m.Schema.ColumnNames()
	recs := make([]FeatureImportance, len(scores))
	for i := range scores {
		recs[i] = FeatureImportance{Feature: names[i], Score: scores[i]}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}
