// Package pcurve fits simultaneous principal curves: one smooth curve per
// lineage through the embedding, with a pseudotime (arc-length position)
// and a membership weight for every point.
//
// Algorithm Outline
//
//  1. Seed each lineage with a piecewise-linear path through its cluster
//     centers. Endpoint handling is configurable (ExtendMode): stop at the
//     endpoint center, extend to the most extreme member projection
//     (default), or extend along the endpoint cluster's first principal
//     component. The seed choice affects only the starting curve.
//
//  2. Per outer iteration, fit every lineage independently: alternate
//     projecting member points onto the curve (pseudotime + perpendicular
//     residual) with refitting the curve as a scatterplot smoother of each
//     coordinate against pseudotime, stretching the curve ends by a bounded
//     factor, until the weighted total squared projection distance
//     stabilizes. With a single unshared lineage this is exactly the
//     classic principal-curve algorithm. Per-lineage fits are independent
//     and run in parallel; a barrier separates them from the coupling
//     steps below.
//
//  3. Coupling across lineages sharing points: reweighting (distance rank
//     → quantile q → 1−q², normalized by the point's best lineage),
//     reassignment (join below the median, leave above the 90th percentile
//     when the weight is already < 0.1), and shrinkage (blend each curve
//     toward the pairwise shared average with a monotone non-increasing
//     weight of pseudotime that is 1 at the root and 0 past the non-outlier
//     range of shared pseudotimes, kernel selectable via ShrinkMethod).
//
//  4. Stop when the relative change of the total weighted squared
//     projection distance falls below Thresh, or after MaxIter outer
//     iterations. Hitting the cap is not an error: principal curves carry
//     no convergence guarantee, so the last iterate is returned with
//     Converged=false.
//
// Smoothers are pluggable via the Smoother function type; LocalLinear
// (tricube-kernel weighted local linear regression) is the default.
//
// Determinism: fixed loop orders, stable sorts, no randomness.
package pcurve
