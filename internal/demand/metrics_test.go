package demand

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	labels := []float64{1, 2, 3}
	preds := []float64{2, 2, 5}

	m, err := Evaluate(labels, preds)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Absolute errors 1, 0, 2; squared errors 1, 0, 4.
	if math.Abs(m.MAE-1) > 1e-12 {
		t.Errorf("MAE = %v, want 1", m.MAE)
	}
	wantRMSE := math.Sqrt(5.0 / 3.0)
	if math.Abs(m.RMSE-wantRMSE) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", m.RMSE, wantRMSE)
	}
}

// Predicting the label mean everywhere reduces MAE to the mean absolute
// deviation and RMSE to the population standard deviation.
func TestEvaluate_ConstantMeanBaseline(t *testing.T) {
	labels := []float64{4, 7, 13, 16}
	mean := 10.0
	preds := []float64{mean, mean, mean, mean}

	m, err := Evaluate(labels, preds)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	wantMAE := (6.0 + 3.0 + 3.0 + 6.0) / 4.0
	if math.Abs(m.MAE-wantMAE) > 1e-12 {
		t.Errorf("MAE = %v, want mean absolute deviation %v", m.MAE, wantMAE)
	}
	wantRMSE := math.Sqrt((36.0 + 9.0 + 9.0 + 36.0) / 4.0)
	if math.Abs(m.RMSE-wantRMSE) > 1e-12 {
		t.Errorf("RMSE = %v, want population standard deviation %v", m.RMSE, wantRMSE)
	}
}

func TestEvaluate_PerfectPredictions(t *testing.T) {
	labels := []float64{4, 8, 15}
	m, err := Evaluate(labels, labels)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if m.MAE != 0 || m.RMSE != 0 {
		t.Errorf("perfect predictions should score zero, got %+v", m)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := Evaluate(nil, nil); err == nil {
		t.Error("expected an error for empty inputs")
	}
	if _, err := Evaluate([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected an error for mismatched lengths")
	}
}

func TestMetrics_String(t *testing.T) {
	m := Metrics{MAE: 3.14159, RMSE: 2.71828}
	if got := m.String(); got != "MAE=3.14 RMSE=2.72" {
		t.Errorf("String() = %q, want %q", got, "MAE=3.14 RMSE=2.72")
	}
}
