package demand

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestNewSplit_HoldoutSize(t *testing.T) {
	split, err := NewSplit(100, 0.2, 42)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	if len(split.Test) != 20 {
		t.Errorf("test rows = %d, want 20", len(split.Test))
	}
	if len(split.Train) != 80 {
		t.Errorf("train rows = %d, want 80", len(split.Train))
	}
}

func TestNewSplit_CeilRounding(t *testing.T) {
	// 0.15 of 10 rows rounds up to 2 held-out rows.
	split, err := NewSplit(10, 0.15, 42)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	if len(split.Test) != 2 {
		t.Errorf("test rows = %d, want 2", len(split.Test))
	}
}

func TestNewSplit_Deterministic(t *testing.T) {
	first, err := NewSplit(50, 0.2, 7)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	second, err := NewSplit(50, 0.2, 7)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed produced different splits (-first +second):\n%s", diff)
	}

	other, err := NewSplit(50, 0.2, 8)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	if cmp.Equal(first.Test, other.Test) {
		t.Error("different seeds produced the same held-out set")
	}
}

func TestNewSplit_Partition(t *testing.T) {
	const n = 37
	split, err := NewSplit(n, 0.25, 3)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}

	seen := make(map[int]int, n)
	for _, i := range split.Train {
		seen[i]++
	}
	for _, i := range split.Test {
		seen[i]++
	}
	if len(seen) != n {
		t.Fatalf("partition covers %d distinct rows, want %d", len(seen), n)
	}
	for i := 0; i < n; i++ {
		if seen[i] != 1 {
			t.Errorf("row %d appears %d times across train and test, want exactly once", i, seen[i])
		}
	}
}

func TestNewSplit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		fraction float64
	}{
		{"too few rows", 1, 0.2},
		{"zero fraction", 10, 0},
		{"full fraction", 10, 1},
		{"no training rows left", 2, 0.99},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSplit(tc.n, tc.fraction, 1); err == nil {
				t.Errorf("NewSplit(%d, %g) should fail", tc.n, tc.fraction)
			}
		})
	}
}

func TestTakeRowsAndFloats(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	y := []float64{10, 20, 30, 40}

	sub := TakeRows(x, []int{2, 0})
	rows, cols := sub.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("submatrix is %dx%d, want 2x2", rows, cols)
	}
	if sub.At(0, 0) != 5 || sub.At(1, 1) != 2 {
		t.Errorf("unexpected submatrix values: %v", mat.Formatted(sub))
	}

	if diff := cmp.Diff([]float64{30, 10}, TakeFloats(y, []int{2, 0})); diff != "" {
		t.Errorf("TakeFloats mismatch (-want +got):\n%s", diff)
	}
}
