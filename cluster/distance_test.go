package cluster_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/traject/cluster"
)

// geometryFromLabels is a small builder shared by the distance tests.
func geometryFromLabels(t *testing.T, x *mat.Dense, labels []string) *cluster.Geometry {
	t.Helper()
	w, err := cluster.FromLabels(labels)
	require.NoError(t, err)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	return g
}

// TestSquaredEuclidean verifies the center-to-center distance on a
// hand-computable pair.
func TestSquaredEuclidean(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		0, 0,
		2, 0, // A center: (1, 0)
		4, 3,
		4, 5, // B center: (4, 4)
	})
	g := geometryFromLabels(t, x, []string{"A", "A", "B", "B"})

	d, err := cluster.SquaredEuclidean(g, "A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 9+16, d, 1e-12) // (4−1)² + (4−0)²

	// Symmetry.
	d2, err := cluster.SquaredEuclidean(g, "B", "A")
	require.NoError(t, err)
	assert.Equal(t, d, d2)

	_, err = cluster.SquaredEuclidean(g, "A", "Z")
	assert.ErrorIs(t, err, cluster.ErrUnknownLabel)
}

// TestSquaredMahalanobis_FullForm verifies the pooled-covariance form on a
// 1-D case where the value is computable by hand.
func TestSquaredMahalanobis_FullForm(t *testing.T) {
	// A = {0, 2} (mean 1, var 1); B = {9, 11} (mean 10, var 1).
	// Pooled variance = 1, so d = (10−1)² / 1 = 81.
	x := mat.NewDense(4, 1, []float64{0, 2, 9, 11})
	g := geometryFromLabels(t, x, []string{"A", "A", "B", "B"})

	d, err := cluster.SquaredMahalanobis(g, "A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 81.0, d, 1e-9)

	d2, err := cluster.SquaredMahalanobis(g, "B", "A")
	require.NoError(t, err)
	assert.InDelta(t, d, d2, 1e-12)
}

// TestSquaredMahalanobis_ScaleAware verifies the defining property: a
// spread-out cluster pulls the distance down relative to a tight one at the
// same center separation.
func TestSquaredMahalanobis_ScaleAware(t *testing.T) {
	// Tight pair: variances 1 on both sides.
	tight := geometryFromLabels(t,
		mat.NewDense(4, 1, []float64{-1, 1, 19, 21}),
		[]string{"A", "A", "B", "B"})
	// Loose pair: same centers (0 and 20), variances 25.
	loose := geometryFromLabels(t,
		mat.NewDense(4, 1, []float64{-5, 5, 15, 25}),
		[]string{"A", "A", "B", "B"})

	dTight, err := cluster.SquaredMahalanobis(tight, "A", "B")
	require.NoError(t, err)
	dLoose, err := cluster.SquaredMahalanobis(loose, "A", "B")
	require.NoError(t, err)

	assert.Greater(t, dTight, dLoose)
}

// TestSquaredMahalanobis_DiagonalFallback verifies that a cluster with
// fewer points than dimensions triggers the diagonal form instead of a
// failed factorization.
func TestSquaredMahalanobis_DiagonalFallback(t *testing.T) {
	// B has 2 points in 3 dimensions: rank-deficient covariance.
	x := mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		10, 10, 10,
		12, 10, 10,
	})
	g := geometryFromLabels(t, x, []string{"A", "A", "A", "A", "B", "B"})

	d, err := cluster.SquaredMahalanobis(g, "A", "B")
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
	assert.False(t, math.IsNaN(d) || math.IsInf(d, 0))

	// Degenerate coordinates hit the variance floor, not a division by 0.
	xFlat := mat.NewDense(4, 2, []float64{
		0, 5,
		1, 5,
		10, 5,
		11, 5, // y is constant everywhere
	})
	gFlat := geometryFromLabels(t, xFlat, []string{"A", "A", "B", "B"})
	dFlat, err := cluster.SquaredMahalanobis(gFlat, "A", "B")
	require.NoError(t, err)
	assert.Greater(t, dFlat, 0.0)
}
