package demand

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/transitlab/demandcast/internal/forest"
)

// TrainConfig bundles the hyperparameters one training run needs. The
// seed drives both the split and the per-tree bootstrap streams; nothing
// reads process-global random state.
type TrainConfig struct {
	TestFraction float64
	Seed         uint64
	Trees        int
	MaxDepth     int
	MinLeaf      int
	Workers      int
}

// TrainResult is everything a run produces besides the artifact file.
type TrainResult struct {
	Model     *Model
	Metrics   Metrics
	TrainRows int
	TestRows  int
}

// Train runs the fixed pipeline encode -> split -> fit -> evaluate and
// assembles the model. Any stage failure is terminal for the run; there
// is no partial result.
func Train(records []Record, cfg TrainConfig) (*TrainResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("train: no usable demand rows")
	}

	schema := FitSchema(records)
	// The schema was just fit on these records, so no drift is possible.
	x, y, _, err := schema.Encode(records, DriftError)
	if err != nil {
		return nil, fmt.Errorf("train: encode: %w", err)
	}

	rows, _ := x.Dims()
	split, err := NewSplit(rows, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	f, err := forest.Fit(TakeRows(x, split.Train), TakeFloats(y, split.Train), forest.Config{
		Trees:    cfg.Trees,
		MaxDepth: cfg.MaxDepth,
		MinLeaf:  cfg.MinLeaf,
		Seed:     cfg.Seed,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	preds := f.Predict(TakeRows(x, split.Test))
	metrics, err := Evaluate(TakeFloats(y, split.Test), preds)
	if err != nil {
		return nil, fmt.Errorf("train: evaluate: %w", err)
	}

	return &TrainResult{
		Model: &Model{
			Version:   ArtifactVersion,
			RunID:     uuid.New().String(),
			CreatedAt: time.Now().UTC(),
			Seed:      cfg.Seed,
			Trees:     cfg.Trees,
			MaxDepth:  cfg.MaxDepth,
			Schema:    schema,
			Forest:    f,
		},
		Metrics:   metrics,
		TrainRows: len(split.Train),
		TestRows:  len(split.Test),
	}, nil
}
