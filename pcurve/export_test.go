package pcurve

import "gonum.org/v1/gonum/mat"

// Test-only bridges exposing unexported kernels to pcurve_test. Thin
// pass-throughs, no behavior of their own.
var (
	ExportedShrinkWeight    = shrinkWeight
	ExportedNonOutlierBound = nonOutlierBound
	ExportedReweight        = reweight
	ExportedEcdf            = ecdf
	ExportedRelChange       = relChange
	ExportedSeedCurve       = seedCurve
	ExportedFitSingle       = fitSingle
)

// NewCurveForTest builds a curve over the given polyline with the given
// per-point weights, projections left at zero.
func NewCurveForTest(lineage []string, nodes *mat.Dense, weight []float64) *Curve {
	c := newCurve(lineage, len(weight))
	copy(c.Weight, weight)
	c.setNodes(nodes)

	return c
}

// ProjectPointForTest exposes the polyline projection kernel.
func (c *Curve) ProjectPointForTest(x []float64) (lambda, distSq float64) {
	return c.projectPoint(x)
}

// AtForTest exposes arc-length interpolation along the polyline.
func (c *Curve) AtForTest(t float64) []float64 { return c.at(t) }
