package cluster_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/traject/cluster"
)

// buildTwoClusters returns a small 2-D embedding with two hard clusters:
// A = {(0,0), (2,0), (1,1)}, B = {(10,10), (12,10)}.
func buildTwoClusters(t *testing.T) (*mat.Dense, *cluster.Weights) {
	t.Helper()
	x := mat.NewDense(5, 2, []float64{
		0, 0,
		2, 0,
		1, 1,
		10, 10,
		12, 10,
	})
	w, err := cluster.FromLabels([]string{"A", "A", "A", "B", "B"})
	require.NoError(t, err)

	return x, w
}

// TestNewGeometry_CentersAndSizes verifies the weighted means and effective
// sizes for a hard labeling (weights are all 0/1, so means are plain means).
func TestNewGeometry_CentersAndSizes(t *testing.T) {
	x, w := buildTwoClusters(t)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Dim())
	assert.Equal(t, 5, g.NumPoints())

	muA, err := g.Center("A")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.0 / 3.0}, muA, 1e-12)

	muB, err := g.Center("B")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{11, 10}, muB, 1e-12)

	sA, err := g.Size("A")
	require.NoError(t, err)
	assert.Equal(t, 3.0, sA)
	sB, err := g.Size("B")
	require.NoError(t, err)
	assert.Equal(t, 2.0, sB)
}

// TestNewGeometry_WeightedCenter verifies that soft assignments shift the
// center toward the heavier points.
func TestNewGeometry_WeightedCenter(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 10})
	w, err := cluster.New([]string{"A"}, [][]float64{{1.0}, {0.25}})
	require.NoError(t, err)

	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	mu, err := g.Center("A")
	require.NoError(t, err)
	// (1·0 + 0.25·10) / 1.25 = 2.
	assert.InDelta(t, 2.0, mu[0], 1e-12)
}

// TestNewGeometry_Covariance verifies the population-form weighted
// covariance on a hand-computable cluster.
func TestNewGeometry_Covariance(t *testing.T) {
	// One cluster, points (−1,0), (1,0): mean (0,0), var_x = 1, var_y = 0.
	x := mat.NewDense(2, 2, []float64{-1, 0, 1, 0})
	w, err := cluster.FromLabels([]string{"A", "A"})
	require.NoError(t, err)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	cov, err := g.Covariance("A")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, cov.At(0, 1), 1e-12)
	assert.InDelta(t, 0.0, cov.At(1, 1), 1e-12)
}

// TestNewGeometry_Errors covers the construction failure modes.
func TestNewGeometry_Errors(t *testing.T) {
	w, err := cluster.FromLabels([]string{"A", "A"})
	require.NoError(t, err)

	// Nil / empty embedding.
	_, err = cluster.NewGeometry(nil, w)
	assert.ErrorIs(t, err, cluster.ErrEmptyEmbedding)

	// Row-count mismatch between embedding and weights.
	_, err = cluster.NewGeometry(mat.NewDense(3, 2, nil), w)
	assert.ErrorIs(t, err, cluster.ErrDimensionMismatch)

	// A cluster whose every weight is zero is reported by label.
	wz, err := cluster.New([]string{"A", "B"}, [][]float64{
		{1, 0},
		{1, 0},
	})
	require.NoError(t, err)
	_, err = cluster.NewGeometry(mat.NewDense(2, 2, nil), wz)
	assert.ErrorIs(t, err, cluster.ErrEmptyCluster)
	assert.Contains(t, err.Error(), `"B"`)
}

// TestPrincipalDirection verifies the unit leading eigenvector on an
// elongated cluster, and the degenerate-covariance error.
func TestPrincipalDirection(t *testing.T) {
	// Points spread along the x axis only: PC1 must be ±e_x.
	x := mat.NewDense(4, 2, []float64{-3, 0, -1, 0, 1, 0, 3, 0})
	w, err := cluster.FromLabels([]string{"A", "A", "A", "A"})
	require.NoError(t, err)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	dir, err := g.PrincipalDirection("A")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Abs(dir[0]), 1e-12)
	assert.InDelta(t, 0.0, dir[1], 1e-12)
	// Unit norm.
	assert.InDelta(t, 1.0, dir[0]*dir[0]+dir[1]*dir[1], 1e-12)

	// A single-point cluster has an all-zero covariance.
	x1 := mat.NewDense(1, 2, []float64{5, 5})
	w1, err := cluster.FromLabels([]string{"A"})
	require.NoError(t, err)
	g1, err := cluster.NewGeometry(x1, w1)
	require.NoError(t, err)
	_, err = g1.PrincipalDirection("A")
	assert.ErrorIs(t, err, cluster.ErrDegenerateCovariance)
}

// TestDistanceMatrix_Background verifies the (k+1)×(k+1) shape, symmetry,
// and the background node at omega/2 from every real cluster.
func TestDistanceMatrix_Background(t *testing.T) {
	x, w := buildTwoClusters(t)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	const omega = 8.0
	m, err := g.DistanceMatrix(cluster.SquaredEuclidean, omega)
	require.NoError(t, err)

	require.Len(t, m, 3) // A, B, background
	for i := range m {
		require.Len(t, m[i], 3)
		assert.Equal(t, 0.0, m[i][i])
		for j := range m {
			assert.Equal(t, m[i][j], m[j][i])
		}
	}
	assert.Equal(t, omega/2, m[0][2])
	assert.Equal(t, omega/2, m[1][2])
	assert.Greater(t, m[0][1], 0.0)
}

// TestDistanceMatrix_BadOmega verifies omega validation.
func TestDistanceMatrix_BadOmega(t *testing.T) {
	x, w := buildTwoClusters(t)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	for _, omega := range []float64{0, -1, math.NaN()} {
		_, err := g.DistanceMatrix(nil, omega)
		assert.ErrorIs(t, err, cluster.ErrBadOmega)
	}

	// +Inf is explicitly legal (the default): the background is unreachable.
	m, err := g.DistanceMatrix(nil, math.Inf(1))
	require.NoError(t, err)
	assert.True(t, math.IsInf(m[0][2], 1))
}

// TestUnknownLabelAccess verifies that accessors identify the offending
// label in their error.
func TestUnknownLabelAccess(t *testing.T) {
	x, w := buildTwoClusters(t)
	g, err := cluster.NewGeometry(x, w)
	require.NoError(t, err)

	_, err = g.Center("Z")
	assert.ErrorIs(t, err, cluster.ErrUnknownLabel)
	_, err = g.Covariance("Z")
	assert.ErrorIs(t, err, cluster.ErrUnknownLabel)
	_, err = g.Size("Z")
	assert.ErrorIs(t, err, cluster.ErrUnknownLabel)
}
