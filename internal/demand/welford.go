package demand

import "math"

// WelfordState accumulates a running mean and spread of passenger counts
// with Welford's online algorithm. Baseline buckets store only mean,
// stddev and count, so new observations merge without raw history.
type WelfordState struct {
	Count int64
	Mean  float64
	M2    float64
}

// ResumeWelford reconstructs accumulator state from stored statistics.
func ResumeWelford(mean, stdDev float64, count int64) WelfordState {
	return WelfordState{
		Count: count,
		Mean:  mean,
		M2:    stdDev * stdDev * float64(count),
	}
}

// Update folds one observation into the state.
func (w *WelfordState) Update(value float64) {
	w.Count++
	delta := value - w.Mean
	w.Mean += delta / float64(w.Count)
	w.M2 += delta * (value - w.Mean)
}

// StdDev returns the population standard deviation, or 0 with fewer than
// two observations.
func (w *WelfordState) StdDev() float64 {
	if w.Count < 2 {
		return 0
	}
	return math.Sqrt(w.M2 / float64(w.Count))
}
