package forest

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Config controls ensemble fitting. Seed feeds a per-tree PCG stream, so
// results do not depend on how tree fitting is scheduled across workers.
type Config struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     uint64
	// Workers bounds fitting parallelism; 0 means one worker per CPU.
	Workers int
}

func (c Config) validate() error {
	if c.Trees < 1 {
		return fmt.Errorf("forest: trees must be at least 1, got %d", c.Trees)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("forest: max depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.MinLeaf < 1 {
		return fmt.Errorf("forest: min leaf must be at least 1, got %d", c.MinLeaf)
	}
	return nil
}

// Forest is a fitted ensemble. All fields are exported so the model
// artifact can gob-encode the whole structure.
type Forest struct {
	Trees       []*Tree
	NumFeatures int
}

// Fit trains cfg.Trees regression trees, each on an n-row bootstrap draw
// of (x, y). Deterministic for a fixed seed, matrix layout and row order.
func Fit(x *mat.Dense, y []float64, cfg Config) (*Forest, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("forest: empty training matrix (%dx%d)", rows, cols)
	}
	if rows != len(y) {
		return nil, fmt.Errorf("forest: %d matrix rows but %d labels", rows, len(y))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trees {
		workers = cfg.Trees
	}

	trees := make([]*Tree, cfg.Trees)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for t := 0; t < cfg.Trees; t++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()
			// Stream t of the run seed keeps the draw independent of
			// scheduling order.
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)))
			samples := make([]int, rows)
			for i := range samples {
				samples[i] = rng.IntN(rows)
			}
			trees[t] = buildTree(x, y, samples, cfg.MaxDepth, cfg.MinLeaf)
		}(t)
	}
	wg.Wait()

	return &Forest{Trees: trees, NumFeatures: cols}, nil
}

// PredictRow averages the per-tree predictions for one feature row.
func (f *Forest) PredictRow(row []float64) float64 {
	var sum float64
	for _, t := range f.Trees {
		sum += t.PredictRow(row)
	}
	return sum / float64(len(f.Trees))
}

// Predict returns one prediction per row of x.
func (f *Forest) Predict(x *mat.Dense) []float64 {
	rows, _ := x.Dims()
	preds := make([]float64, rows)
	row := make([]float64, f.NumFeatures)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		preds[i] = f.PredictRow(row)
	}
	return preds
}

// FeatureImportances returns the mean decrease in impurity per feature,
// averaged over trees that made at least one split and normalized so the
// scores sum to one. A forest of stumps that never split (constant
// labels) yields all zeros.
func (f *Forest) FeatureImportances() []float64 {
	total := make([]float64, f.NumFeatures)
	counted := 0

	imp := make([]float64, f.NumFeatures)
	for _, t := range f.Trees {
		for i := range imp {
			imp[i] = 0
		}
		split := false
		for _, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			split = true
			left := t.Nodes[n.Left]
			right := t.Nodes[n.Right]
			decrease := float64(n.Samples)*n.Impurity -
				float64(left.Samples)*left.Impurity -
				float64(right.Samples)*right.Impurity
			if decrease > 0 {
				imp[n.Feature] += decrease
			}
		}
		if !split {
			continue
		}
		if s := floats.Sum(imp); s > 0 {
			floats.Scale(1/s, imp)
			floats.Add(total, imp)
			counted++
		}
	}

	if counted == 0 {
		return total
	}
	floats.Scale(1/float64(counted), total)
	if s := floats.Sum(total); s > 0 {
		floats.Scale(1/s, total)
	}
	return total
}
