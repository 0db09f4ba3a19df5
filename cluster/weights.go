package cluster

import (
	"math"
	"sort"
)

// Unclustered is the reserved label for points without a cluster
// assignment. Such points receive an all-zero weight row: they contribute
// to no center or covariance and join no lineage.
const Unclustered = "-1"

// Weights is the unified soft-assignment matrix: one row per point, one
// column per cluster, entries in [0,1]. Hard labelings become one-hot rows
// via FromLabels, so the rest of the pipeline never branches on hard vs
// soft input.
//
// Columns are held in ascending label order for determinism. Weights is
// immutable after construction.
type Weights struct {
	labels []string       // sorted cluster labels (column order)
	index  map[string]int // label -> column
	data   []float64      // row-major n×k
	n, k   int
}

// FromLabels builds a one-hot Weights from a hard label vector.
// Distinct labels (excluding Unclustered) become columns in ascending
// order; a point labeled Unclustered gets an all-zero row.
//
// Errors:
//   - ErrNoClusters : if no point carries a non-Unclustered label.
//
// Complexity: O(n log n) for label collection, O(n·k) fill.
func FromLabels(labels []string) (*Weights, error) {
	// 1. Collect the distinct real labels.
	seen := make(map[string]bool, 8)
	for _, l := range labels {
		if l != Unclustered {
			seen[l] = true
		}
	}
	if len(seen) == 0 {
		return nil, ErrNoClusters
	}

	// 2. Fix the column order: ascending label order.
	cols := make([]string, 0, len(seen))
	for l := range seen {
		cols = append(cols, l)
	}
	sort.Strings(cols)

	// 3. Fill one-hot rows.
	w := newWeights(cols, len(labels))
	for i, l := range labels {
		if l == Unclustered {
			continue
		}
		w.data[i*w.k+w.index[l]] = 1
	}

	return w, nil
}

// New builds a Weights from an explicit soft-assignment matrix.
// clusterLabels names the columns of rows; every row must have exactly
// len(clusterLabels) finite entries in [0,1]. Column order is normalized
// to ascending label order internally.
//
// Errors:
//   - ErrNoClusters     : empty clusterLabels.
//   - ErrDuplicateLabel : repeated label, or the reserved Unclustered label.
//   - ErrDimensionMismatch : a row of the wrong width.
//   - ErrBadWeight      : NaN/Inf or out-of-range entry.
func New(clusterLabels []string, rows [][]float64) (*Weights, error) {
	if len(clusterLabels) == 0 {
		return nil, ErrNoClusters
	}
	seen := make(map[string]bool, len(clusterLabels))
	for _, l := range clusterLabels {
		if l == Unclustered || seen[l] {
			return nil, ErrDuplicateLabel
		}
		seen[l] = true
	}

	// Normalize column order to ascending labels; remember the permutation.
	cols := append([]string(nil), clusterLabels...)
	sort.Strings(cols)
	w := newWeights(cols, len(rows))
	src := make([]int, len(cols)) // column j of w comes from rows[:][src[j]]
	for jn, l := range clusterLabels {
		src[w.index[l]] = jn
	}

	for i, row := range rows {
		if len(row) != w.k {
			return nil, ErrDimensionMismatch
		}
		for j := 0; j < w.k; j++ {
			v := row[src[j]]
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
				return nil, ErrBadWeight
			}
			w.data[i*w.k+j] = v
		}
	}

	return w, nil
}

// newWeights allocates a zeroed n×k matrix over the given sorted labels.
func newWeights(sortedLabels []string, n int) *Weights {
	idx := make(map[string]int, len(sortedLabels))
	for j, l := range sortedLabels {
		idx[l] = j
	}

	return &Weights{
		labels: sortedLabels,
		index:  idx,
		data:   make([]float64, n*len(sortedLabels)),
		n:      n,
		k:      len(sortedLabels),
	}
}

// NumPoints returns the number of rows (points).
func (w *Weights) NumPoints() int { return w.n }

// NumClusters returns the number of columns (clusters).
func (w *Weights) NumClusters() int { return w.k }

// Labels returns a copy of the cluster labels in column (ascending) order.
func (w *Weights) Labels() []string {
	return append([]string(nil), w.labels...)
}

// Has reports whether label names a cluster column.
func (w *Weights) Has(label string) bool {
	_, ok := w.index[label]

	return ok
}

// At returns the weight of point i on the given cluster, or 0 when the
// label is unknown. Reads never fail; construction already validated the
// matrix.
func (w *Weights) At(i int, label string) float64 {
	j, ok := w.index[label]
	if !ok || i < 0 || i >= w.n {
		return 0
	}

	return w.data[i*w.k+j]
}

// OnPath returns, for every point, its total weight across the given
// cluster labels, capped at 1. This is the per-point membership weight of
// a lineage whose path visits exactly those clusters.
func (w *Weights) OnPath(path []string) []float64 {
	out := make([]float64, w.n)
	for _, l := range path {
		j, ok := w.index[l]
		if !ok {
			continue
		}
		for i := 0; i < w.n; i++ {
			out[i] += w.data[i*w.k+j]
		}
	}
	for i := range out {
		if out[i] > 1 {
			out[i] = 1
		}
	}

	return out
}

// column returns the raw weight column for a label (internal, no copy).
func (w *Weights) column(label string) ([]float64, bool) {
	j, ok := w.index[label]
	if !ok {
		return nil, false
	}
	col := make([]float64, w.n)
	for i := 0; i < w.n; i++ {
		col[i] = w.data[i*w.k+j]
	}

	return col, true
}
