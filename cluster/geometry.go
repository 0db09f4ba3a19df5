package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// varFloor is the variance floor used when a pooled diagonal entry is ~0,
// keeping diagonal distances finite on degenerate coordinates.
const varFloor = 1e-12

// Geometry holds the derived per-cluster quantities for one embedding:
// weighted centers, weighted covariances, effective sizes. It is computed
// once from (X, Weights) and never mutated afterward.
type Geometry struct {
	x      *mat.Dense // n×d embedding, not copied; treated as read-only
	w      *Weights
	n, dim int

	centers map[string][]float64     // label -> d-vector
	covs    map[string]*mat.SymDense // label -> d×d weighted covariance
	sizes   map[string]float64       // label -> total assignment weight
	counts  map[string]int           // label -> #points with positive weight
}

// NewGeometry validates the inputs and computes every cluster's center and
// covariance in a single deterministic pass.
//
// Steps:
//  1. Validate: non-empty embedding, matching row counts, ≥1 cluster.
//  2. Per cluster (ascending label order): weighted mean, then weighted
//     covariance Σ w_i (x_i−μ)(x_i−μ)ᵀ / Σ w_i.
//  3. A cluster with zero total weight is a data-sufficiency error and is
//     reported by label.
//
// Complexity: O(n·k·d²). Memory: O(k·d²).
func NewGeometry(x *mat.Dense, w *Weights) (*Geometry, error) {
	if x == nil || w == nil {
		return nil, ErrEmptyEmbedding
	}
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return nil, ErrEmptyEmbedding
	}
	if n != w.NumPoints() {
		return nil, ErrDimensionMismatch
	}
	if w.NumClusters() < 1 {
		return nil, ErrNoClusters
	}

	g := &Geometry{
		x:       x,
		w:       w,
		n:       n,
		dim:     d,
		centers: make(map[string][]float64, w.k),
		covs:    make(map[string]*mat.SymDense, w.k),
		sizes:   make(map[string]float64, w.k),
		counts:  make(map[string]int, w.k),
	}

	for _, label := range w.labels { // ascending label order
		if err := g.deriveCluster(label); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// deriveCluster computes center, covariance, size and count for one label.
func (g *Geometry) deriveCluster(label string) error {
	col, _ := g.w.column(label)

	// Total weight and positive-weight count.
	var size float64
	var count int
	for i := 0; i < g.n; i++ {
		if col[i] > 0 {
			count++
			size += col[i]
		}
	}
	if size == 0 {
		return fmt.Errorf("cluster %q: %w", label, ErrEmptyCluster)
	}

	// Weighted mean.
	mu := make([]float64, g.dim)
	for i := 0; i < g.n; i++ {
		if col[i] == 0 {
			continue
		}
		row := g.x.RawRowView(i)
		for j := 0; j < g.dim; j++ {
			mu[j] += col[i] * row[j]
		}
	}
	for j := range mu {
		mu[j] /= size
	}

	// Weighted covariance (population form, denominator Σw).
	cov := mat.NewSymDense(g.dim, nil)
	diff := make([]float64, g.dim)
	for i := 0; i < g.n; i++ {
		if col[i] == 0 {
			continue
		}
		row := g.x.RawRowView(i)
		for j := 0; j < g.dim; j++ {
			diff[j] = row[j] - mu[j]
		}
		for a := 0; a < g.dim; a++ {
			for b := a; b < g.dim; b++ {
				cov.SetSym(a, b, cov.At(a, b)+col[i]*diff[a]*diff[b])
			}
		}
	}
	for a := 0; a < g.dim; a++ {
		for b := a; b < g.dim; b++ {
			cov.SetSym(a, b, cov.At(a, b)/size)
		}
	}

	g.centers[label] = mu
	g.covs[label] = cov
	g.sizes[label] = size
	g.counts[label] = count

	return nil
}

// Dim returns the embedding dimensionality.
func (g *Geometry) Dim() int { return g.dim }

// NumPoints returns the number of embedded points.
func (g *Geometry) NumPoints() int { return g.n }

// Labels returns the cluster labels in column (ascending) order.
func (g *Geometry) Labels() []string { return g.w.Labels() }

// Weights returns the unified assignment matrix the geometry was built on.
func (g *Geometry) Weights() *Weights { return g.w }

// Embedding returns the underlying n×d coordinate matrix (read-only).
func (g *Geometry) Embedding() *mat.Dense { return g.x }

// Center returns a copy of the weighted center of the given cluster.
func (g *Geometry) Center(label string) ([]float64, error) {
	mu, ok := g.centers[label]
	if !ok {
		return nil, fmt.Errorf("cluster %q: %w", label, ErrUnknownLabel)
	}

	return append([]float64(nil), mu...), nil
}

// Covariance returns a copy of the weighted covariance of the cluster.
func (g *Geometry) Covariance(label string) (*mat.SymDense, error) {
	c, ok := g.covs[label]
	if !ok {
		return nil, fmt.Errorf("cluster %q: %w", label, ErrUnknownLabel)
	}
	out := mat.NewSymDense(g.dim, nil)
	out.CopySym(c)

	return out, nil
}

// Size returns the cluster's total assignment weight (its effective size).
func (g *Geometry) Size(label string) (float64, error) {
	s, ok := g.sizes[label]
	if !ok {
		return 0, fmt.Errorf("cluster %q: %w", label, ErrUnknownLabel)
	}

	return s, nil
}

// PrincipalDirection returns the unit leading eigenvector of the cluster's
// covariance (its first principal component), used by the 'pc1' curve
// endpoint policy.
//
// Errors:
//   - ErrUnknownLabel          : label not present.
//   - ErrDegenerateCovariance  : eigen decomposition failed or all-zero
//     covariance.
func (g *Geometry) PrincipalDirection(label string) ([]float64, error) {
	c, ok := g.covs[label]
	if !ok {
		return nil, fmt.Errorf("cluster %q: %w", label, ErrUnknownLabel)
	}

	var es mat.EigenSym
	if !es.Factorize(c, true) {
		return nil, fmt.Errorf("cluster %q: %w", label, ErrDegenerateCovariance)
	}
	vals := es.Values(nil) // ascending
	if vals[len(vals)-1] <= 0 {
		return nil, fmt.Errorf("cluster %q: %w", label, ErrDegenerateCovariance)
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	dir := make([]float64, g.dim)
	var norm float64
	for j := 0; j < g.dim; j++ {
		dir[j] = vecs.At(j, g.dim-1) // eigenvector of the largest eigenvalue
		norm += dir[j] * dir[j]
	}
	norm = math.Sqrt(norm)
	for j := range dir {
		dir[j] /= norm
	}

	return dir, nil
}

// DistanceMatrix builds the symmetric (k+1)×(k+1) cluster distance matrix.
// Row/column order follows ascending cluster labels; the final index is the
// synthetic background node, at fixed distance omega/2 from every real
// cluster (and 0 from itself).
//
// fn defaults to SquaredMahalanobis when nil. omega must be positive; +Inf
// (the default upstream) effectively disables forest splitting.
//
// Complexity: O(k²·d³) with the default distance (one Cholesky per pair).
func (g *Geometry) DistanceMatrix(fn DistanceFunc, omega float64) ([][]float64, error) {
	if math.IsNaN(omega) || omega <= 0 {
		return nil, ErrBadOmega
	}
	if fn == nil {
		fn = SquaredMahalanobis
	}

	k := g.w.k
	m := make([][]float64, k+1)
	for i := range m {
		m[i] = make([]float64, k+1)
	}

	labels := g.w.labels
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			d, err := fn(g, labels[a], labels[b])
			if err != nil {
				return nil, err
			}
			m[a][b], m[b][a] = d, d
		}
		m[a][k], m[k][a] = omega/2, omega/2
	}

	return m, nil
}
