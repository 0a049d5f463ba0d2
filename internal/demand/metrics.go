package demand

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds held-out regression error measures.
type Metrics struct {
	MAE  float64
	RMSE float64
}

// String formats metrics the way run reports print them.
func (m Metrics) String() string {
	return fmt.Sprintf("MAE=%.2f RMSE=%.2f", m.MAE, m.RMSE)
}

// Evaluate computes mean absolute error and root mean squared error of
// predictions against labels.
func Evaluate(labels, preds []float64) (Metrics, error) {
	if len(labels) == 0 || len(labels) != len(preds) {
		return Metrics{}, fmt.Errorf("evaluate: %d labels against %d predictions", len(labels), len(preds))
	}
	absErr := make([]float64, len(labels))
	sqErr := make([]float64, len(labels))
	for i := range labels {
		d := preds[i] - labels[i]
		absErr[i] = math.Abs(d)
		sqErr[i] = d * d
	}
	return Metrics{
		MAE:  stat.Mean(absErr, nil),
		RMSE: math.Sqrt(stat.Mean(sqErr, nil)),
	}, nil
}
