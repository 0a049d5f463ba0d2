package demand

import (
	"math"
	"testing"
)

// makeRecords builds n observations over two routes and two stops where
// the count follows the hour, so a fitted model has real signal to find.
func makeRecords(n int) []Record {
	routes := []string{"L1", "L2"}
	stops := []string{"s1", "s2"}
	records := make([]Record, n)
	for i := range records {
		hour := i % 24
		records[i] = Record{
			RouteID:        routes[i%2],
			StopID:         stops[(i/2)%2],
			Hour:           hour,
			Weekday:        i % 7,
			PassengerCount: float64(2*hour + i%3),
		}
	}
	return records
}

func TestTrain_EndToEnd(t *testing.T) {
	records := makeRecords(100)
	result, err := Train(records, TrainConfig{
		TestFraction: 0.2,
		Seed:         42,
		Trees:        20,
		MaxDepth:     6,
		MinLeaf:      1,
	})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if result.TestRows != 20 || result.TrainRows != 80 {
		t.Errorf("split = %d/%d, want 80/20", result.TrainRows, result.TestRows)
	}
	m := result.Model
	if m.Version != ArtifactVersion || m.RunID == "" {
		t.Errorf("model metadata incomplete: %+v", m)
	}
	if m.Trees != 20 || m.Seed != 42 {
		t.Errorf("model hyperparameters not recorded: %+v", m)
	}
	if result.Metrics.RMSE < result.Metrics.MAE {
		t.Errorf("RMSE %v should never be below MAE %v", result.Metrics.RMSE, result.Metrics.MAE)
	}

	// Tree leaves hold training-label means, so every prediction must
	// stay inside the observed label range.
	minLabel, maxLabel := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		minLabel = math.Min(minLabel, r.PassengerCount)
		maxLabel = math.Max(maxLabel, r.PassengerCount)
	}
	preds, _, err := m.Predict(records, DriftError)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, p := range preds {
		if p < minLabel || p > maxLabel {
			t.Errorf("prediction %d = %v outside label range [%v, %v]", i, p, minLabel, maxLabel)
		}
	}

	// The fitted model must beat always-predicting the global mean.
	var mean float64
	for _, r := range records {
		mean += r.PassengerCount
	}
	mean /= float64(len(records))
	var baselineMAE float64
	for _, r := range records {
		baselineMAE += math.Abs(r.PassengerCount - mean)
	}
	baselineMAE /= float64(len(records))
	if result.Metrics.MAE >= baselineMAE {
		t.Errorf("model MAE %.3f should beat mean-baseline MAE %.3f", result.Metrics.MAE, baselineMAE)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	cfg := TrainConfig{TestFraction: 0.2, Seed: 7, Trees: 10, MaxDepth: 5, MinLeaf: 1}
	records := makeRecords(60)

	first, err := Train(records, cfg)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	second, err := Train(records, cfg)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if first.Metrics != second.Metrics {
		t.Errorf("same seed produced different metrics: %v vs %v", first.Metrics, second.Metrics)
	}
	if first.Model.RunID == second.Model.RunID {
		t.Error("distinct runs should get distinct run IDs")
	}
}

func TestTrain_NoRecords(t *testing.T) {
	if _, err := Train(nil, TrainConfig{TestFraction: 0.2, Seed: 1, Trees: 5, MaxDepth: 3, MinLeaf: 1}); err == nil {
		t.Error("expected an error for an empty dataset")
	}
}

func TestTrain_HourDominatesImportances(t *testing.T) {
	// Counts are a function of the hour, so hour must rank first.
	result, err := Train(makeRecords(100), TrainConfig{
		TestFraction: 0.2,
		Seed:         42,
		Trees:        20,
		MaxDepth:     6,
		MinLeaf:      1,
	})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	ranked := result.Model.RankedImportances()
	if ranked[0].Feature != "hour" {
		t.Errorf("top feature = %q (%.4f), want hour", ranked[0].Feature, ranked[0].Score)
	}
}
