package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DistanceFunc measures the separation of two clusters inside a Geometry.
// Implementations must be symmetric in (a, b) and return a non-negative,
// finite value. Callers may inject any DistanceFunc; SquaredMahalanobis is
// the default.
type DistanceFunc func(g *Geometry, a, b string) (float64, error)

// SquaredMahalanobis is the default cluster distance: the squared
// Mahalanobis-like form
//
//	d(a,b) = (μa − μb)ᵀ · pooled⁻¹ · (μa − μb),  pooled = (Sa + Sb)/2.
//
// When the smaller cluster has fewer assigned points than embedding
// dimensions, the full pooled covariance is ill-conditioned by
// construction, so only its diagonal is used. The same diagonal fallback
// applies if the Cholesky factorization of the pooled covariance fails.
//
// Complexity: O(d³) for the factorization, O(d²) otherwise.
func SquaredMahalanobis(g *Geometry, a, b string) (float64, error) {
	ca, ok := g.covs[a]
	if !ok {
		return 0, fmt.Errorf("cluster %q: %w", a, ErrUnknownLabel)
	}
	cb, ok := g.covs[b]
	if !ok {
		return 0, fmt.Errorf("cluster %q: %w", b, ErrUnknownLabel)
	}

	d := g.dim
	diff := make([]float64, d)
	for j := 0; j < d; j++ {
		diff[j] = g.centers[a][j] - g.centers[b][j]
	}

	// Pooled covariance of the pair.
	pooled := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			pooled.SetSym(i, j, (ca.At(i, j)+cb.At(i, j))/2)
		}
	}

	// Full form only when both clusters have at least d assigned points.
	if g.counts[a] >= d && g.counts[b] >= d {
		var chol mat.Cholesky
		if chol.Factorize(pooled) {
			sol := mat.NewVecDense(d, nil)
			if err := chol.SolveVecTo(sol, mat.NewVecDense(d, diff)); err == nil {
				return mat.Dot(mat.NewVecDense(d, diff), sol), nil
			}
		}
		// Not positive definite: fall through to the diagonal form.
	}

	return diagQuadratic(diff, pooled), nil
}

// diagQuadratic computes Σ diff²ⱼ / pooledⱼⱼ with a variance floor on the
// diagonal.
func diagQuadratic(diff []float64, pooled *mat.SymDense) float64 {
	var sum float64
	for j := range diff {
		v := pooled.At(j, j)
		if v < varFloor {
			v = varFloor
		}
		sum += diff[j] * diff[j] / v
	}

	return sum
}

// SquaredEuclidean is a center-to-center alternative distance, useful when
// cluster shapes should not influence the topology.
func SquaredEuclidean(g *Geometry, a, b string) (float64, error) {
	ma, ok := g.centers[a]
	if !ok {
		return 0, fmt.Errorf("cluster %q: %w", a, ErrUnknownLabel)
	}
	mb, ok := g.centers[b]
	if !ok {
		return 0, fmt.Errorf("cluster %q: %w", b, ErrUnknownLabel)
	}

	var sum float64
	for j := range ma {
		d := ma[j] - mb[j]
		sum += d * d
	}

	return sum, nil
}
