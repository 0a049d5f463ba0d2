package demand

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Split holds train/test row indices for one seeded partition. Indices
// are in permutation draw order, not sorted.
type Split struct {
	Train []int
	Test  []int
}

// NewSplit partitions n rows, holding out ceil(fraction*n) as the test
// set. The permutation comes from a PCG stream seeded with the explicit
// seed, so identical inputs always produce identical splits.
func NewSplit(n int, fraction float64, seed uint64) (Split, error) {
	if n < 2 {
		return Split{}, fmt.Errorf("split: need at least 2 rows, got %d", n)
	}
	if fraction <= 0 || fraction >= 1 {
		return Split{}, fmt.Errorf("split: test fraction must be in (0, 1), got %g", fraction)
	}
	nTest := int(math.Ceil(fraction * float64(n)))
	if nTest >= n {
		return Split{}, fmt.Errorf("split: test fraction %g leaves no training rows for n=%d", fraction, n)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	return Split{Test: perm[:nTest], Train: perm[nTest:]}, nil
}

// TakeRows copies the rows of x at the given indices into a new matrix.
func TakeRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	row := make([]float64, cols)
	for i, r := range idx {
		mat.Row(row, r, x)
		out.SetRow(i, row)
	}
	return out
}

// TakeFloats copies the values of y at the given indices.
func TakeFloats(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
