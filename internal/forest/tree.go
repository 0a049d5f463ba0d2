// Package forest implements a bootstrap-aggregated ensemble of CART
// regression trees with squared-error splitting. It is deliberately
// small: fixed tree count, fixed depth cap, explicit seeding, and
// impurity-based feature importances derivable from the stored trees.
package forest

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Node is one tree node stored in a flat slice. Leaves carry the mean
// label of their training samples; internal nodes route rows by
// comparing one feature against a threshold (<= goes left). Samples and
// Impurity are kept so importances can be recomputed from a persisted
// tree.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Value     float64
	Samples   int
	Impurity  float64
}

// Tree is a fitted CART regression tree.
type Tree struct {
	Nodes []Node
}

// PredictRow walks the tree for one feature row.
func (t *Tree) PredictRow(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// minGain is the smallest impurity reduction worth splitting on; it
// absorbs floating-point noise on constant-label nodes.
const minGain = 1e-12

type treeBuilder struct {
	x        *mat.Dense
	y        []float64
	cols     int
	maxDepth int
	minLeaf  int
	nodes    []Node
}

// buildTree grows a tree over the given sample indices (a bootstrap draw,
// duplicates allowed). Samples is consumed: node construction reorders it
// in place.
func buildTree(x *mat.Dense, y []float64, samples []int, maxDepth, minLeaf int) *Tree {
	_, cols := x.Dims()
	b := &treeBuilder{x: x, y: y, cols: cols, maxDepth: maxDepth, minLeaf: minLeaf}
	b.grow(samples, 0)
	return &Tree{Nodes: b.nodes}
}

// grow appends the node for samples and returns its index.
func (b *treeBuilder) grow(samples []int, depth int) int {
	mean, variance := meanVariance(b.y, samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Leaf:     true,
		Value:    mean,
		Samples:  len(samples),
		Impurity: variance,
	})

	if depth >= b.maxDepth || len(samples) < 2*b.minLeaf || variance <= 0 {
		return idx
	}

	feature, threshold, gain := b.bestSplit(samples, variance)
	if gain <= minGain {
		return idx
	}

	// Partition in place around the chosen threshold.
	left := 0
	for i, s := range samples {
		if b.x.At(s, feature) <= threshold {
			samples[left], samples[i] = samples[i], samples[left]
			left++
		}
	}

	leftIdx := b.grow(samples[:left], depth+1)
	rightIdx := b.grow(samples[left:], depth+1)

	n := &b.nodes[idx]
	n.Leaf = false
	n.Feature = feature
	n.Threshold = threshold
	n.Left = leftIdx
	n.Right = rightIdx
	return idx
}

// bestSplit scans every feature for the threshold with the largest
// squared-error reduction. Features are scanned in column order and a
// strictly better gain is required to switch, so results are
// deterministic for a fixed matrix layout.
func (b *treeBuilder) bestSplit(samples []int, parentImpurity float64) (feature int, threshold, gain float64) {
	n := len(samples)
	parentSSE := parentImpurity * float64(n)

	order := make([]int, n)
	values := make([]float64, n)
	labels := make([]float64, n)

	var sumTotal, sqTotal float64
	for i, s := range samples {
		labels[i] = b.y[s]
		sumTotal += labels[i]
		sqTotal += labels[i] * labels[i]
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	for f := 0; f < b.cols; f++ {
		for i, s := range samples {
			order[i] = i
			values[i] = b.x.At(s, f)
		}
		sort.Slice(order, func(i, j int) bool {
			return values[order[i]] < values[order[j]]
		})

		var sumLeft, sqLeft float64
		for i := 0; i < n-1; i++ {
			yi := labels[order[i]]
			sumLeft += yi
			sqLeft += yi * yi

			vCur, vNext := values[order[i]], values[order[i+1]]
			if vCur == vNext {
				continue
			}
			nL := i + 1
			nR := n - nL
			if nL < b.minLeaf || nR < b.minLeaf {
				continue
			}

			sseLeft := sqLeft - sumLeft*sumLeft/float64(nL)
			sumRight := sumTotal - sumLeft
			sseRight := (sqTotal - sqLeft) - sumRight*sumRight/float64(nR)

			g := parentSSE - sseLeft - sseRight
			if g > bestGain {
				bestGain = g
				bestFeature = f
				bestThreshold = (vCur + vNext) / 2
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, 0
	}
	// Report gain as mean impurity decrease over the node.
	return bestFeature, bestThreshold, bestGain / float64(n)
}

// meanVariance computes the mean and population variance of y over the
// given sample indices.
func meanVariance(y []float64, samples []int) (mean, variance float64) {
	n := float64(len(samples))
	if n == 0 {
		return 0, 0
	}
	var sum, sq float64
	for _, s := range samples {
		sum += y[s]
		sq += y[s] * y[s]
	}
	mean = sum / n
	variance = sq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}
