package pcurve

import "math"

// ExtendMode selects how the seed curve treats the endpoint clusters.
//
//   - ExtendProjection — extend the first/last segment to the orthogonal
//     projection of the most extreme member point (default).
//   - ExtendEndpoint   — stop exactly at the endpoint cluster center.
//   - ExtendPC1        — extend along the endpoint cluster's leading
//     principal-component direction.
type ExtendMode int

const (
	// ExtendProjection extends to the farthest member projection ('y').
	ExtendProjection ExtendMode = iota

	// ExtendEndpoint stops at the endpoint cluster center ('n').
	ExtendEndpoint

	// ExtendPC1 extends along the endpoint cluster's first PC ('pc1').
	ExtendPC1
)

// ShrinkMethod selects the decreasing shape of the shrinkage weight.
type ShrinkMethod int

const (
	// ShrinkCosine uses the raised-cosine survival shape (default).
	ShrinkCosine ShrinkMethod = iota

	// ShrinkTricube uses the tricube survival shape.
	ShrinkTricube

	// ShrinkDensity uses the empirical survival of shared pseudotimes.
	ShrinkDensity
)

// Defaults — single source of truth; DefaultFitOptions must mirror these.
const (
	// DefaultThresh is the relative-change stopping threshold for both the
	// inner per-lineage fit and the outer coupling loop.
	DefaultThresh = 1e-3

	// DefaultMaxIter caps outer iterations (and the inner fit alike).
	DefaultMaxIter = 15

	// DefaultStretch is the endpoint extrapolation factor applied to the
	// smoothed curve before each projection pass. Legal range [0,2].
	DefaultStretch = 2.0

	// DefaultSpan is the LocalLinear smoother bandwidth as a fraction of
	// the pseudotime range.
	DefaultSpan = 0.6

	// DefaultApproxNodes disables final curve resampling (full resolution).
	DefaultApproxNodes = 0
)

// FitOptions configures Fit. Use DefaultFitOptions as the base; the zero
// value is NOT a valid configuration.
type FitOptions struct {
	// Shrink, Reweight, Reassign gate the three coupling steps.
	Shrink   bool
	Reweight bool
	Reassign bool

	// Thresh is the relative-change stopping threshold (> 0).
	Thresh float64

	// MaxIter caps outer (and inner) iterations (≥ 1). Reaching the cap is
	// not an error; the last iterate is returned with Converged=false.
	MaxIter int

	// Stretch extrapolates curve endpoints before projection; range [0,2].
	Stretch float64

	// Extend selects the seed-curve endpoint policy.
	Extend ExtendMode

	// ShrinkMethod selects the shrinkage-weight kernel family.
	ShrinkMethod ShrinkMethod

	// AllowBreaks permits lineages branching at the root to keep distinct
	// starting points; when false such lineages are forced to share a start.
	AllowBreaks bool

	// Smoother is the per-coordinate scatterplot smoother; nil selects
	// LocalLinear(DefaultSpan).
	Smoother Smoother

	// ApproxNodes, when > 0, resamples each final curve to that many
	// equally spaced arc-length nodes; a polyline needs at least 2, so the
	// only legal values are 0 (full resolution) and k ≥ 2.
	ApproxNodes int
}

// DefaultFitOptions returns the documented defaults: all coupling steps
// enabled, cosine shrinkage, projection-extended seeds, breaks allowed.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		Shrink:       true,
		Reweight:     true,
		Reassign:     true,
		Thresh:       DefaultThresh,
		MaxIter:      DefaultMaxIter,
		Stretch:      DefaultStretch,
		Extend:       ExtendProjection,
		ShrinkMethod: ShrinkCosine,
		AllowBreaks:  true,
		Smoother:     nil, // resolved to LocalLinear(DefaultSpan) by Fit
		ApproxNodes:  DefaultApproxNodes,
	}
}

// validate rejects nonsensical configurations up front, before any
// fitting work starts.
func (o *FitOptions) validate() error {
	if math.IsNaN(o.Thresh) || o.Thresh <= 0 {
		return ErrBadOption
	}
	if o.MaxIter < 1 {
		return ErrBadOption
	}
	if math.IsNaN(o.Stretch) || o.Stretch < 0 || o.Stretch > 2 {
		return ErrBadOption
	}
	if o.Extend != ExtendProjection && o.Extend != ExtendEndpoint && o.Extend != ExtendPC1 {
		return ErrBadOption
	}
	if o.ShrinkMethod != ShrinkCosine && o.ShrinkMethod != ShrinkTricube && o.ShrinkMethod != ShrinkDensity {
		return ErrBadOption
	}
	if o.ApproxNodes < 0 || o.ApproxNodes == 1 {
		return ErrBadOption
	}

	return nil
}
