package traject

import (
	"math"

	"github.com/katalvlaran/traject/cluster"
	"github.com/katalvlaran/traject/pcurve"
)

// Defaults — single source of truth; defaultOptions must mirror these.
// The default omega is +Inf (not expressible as a constant): the background
// node is effectively disconnected and the forest never splits on edge
// length.
const (
	// DefaultShrink enables branch shrinkage.
	DefaultShrink = true

	// DefaultReweight enables shared-point reweighting.
	DefaultReweight = true

	// DefaultReassign enables membership reassignment.
	DefaultReassign = true

	// DefaultAllowBreaks permits lineages branching at the root to keep
	// distinct starting points.
	DefaultAllowBreaks = true
)

// Internal panic messages (programmer errors in option constructors).
const (
	panicOmegaInvalid   = "traject: WithOmega: omega must be positive (may be +Inf)"
	panicThreshInvalid  = "traject: WithThresh: thresh must be positive and finite"
	panicMaxIterInvalid = "traject: WithMaxIter: maxit must be >= 1"
	panicStretchInvalid = "traject: WithStretch: stretch must lie in [0,2]"
)

// Option mutates the pipeline configuration. Setters apply in order,
// last-writer-wins; constructors panic only on nonsensical values.
type Option func(*Options)

// Options stores the effective configuration after applying setters. It is
// internal; public entry points accept ...Option.
type Options struct {
	startClusters []string
	endClusters   []string
	distFn        cluster.DistanceFunc
	omega         float64

	fit pcurve.FitOptions
}

func defaultOptions() Options {
	return Options{
		omega: math.Inf(1),
		fit:   pcurve.DefaultFitOptions(),
	}
}

// gatherOptions resolves setters against the documented defaults.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, set := range opts {
		set(&o)
	}

	return o
}

// WithStartClusters forces the given cluster labels to act as lineage
// roots (start.clus). Roots never change the spanning forest; they only
// restrict which root-to-leaf paths become lineages.
func WithStartClusters(labels ...string) Option {
	return func(o *Options) { o.startClusters = append([]string(nil), labels...) }
}

// WithEndClusters forces the given cluster labels to be lineage endpoints
// (end.clus): their degree in the final forest is at most 1. Contradictory
// root/leaf constraints surface as a configuration error before fitting.
func WithEndClusters(labels ...string) Option {
	return func(o *Options) { o.endClusters = append([]string(nil), labels...) }
}

// WithDistanceFunc substitutes the cluster distance (dist.fun). The
// function must be symmetric; cluster.SquaredMahalanobis is the default.
func WithDistanceFunc(fn cluster.DistanceFunc) Option {
	return func(o *Options) { o.distFn = fn }
}

// WithOmega sets the background-node distance parameter: every real
// cluster sits omega/2 from the background node, capping the longest
// usable forest edge at omega. +Inf (the default) disables splitting.
// Panics on NaN or non-positive values.
func WithOmega(omega float64) Option {
	if math.IsNaN(omega) || omega <= 0 {
		panic(panicOmegaInvalid)
	}

	return func(o *Options) { o.omega = omega }
}

// WithShrink gates the branch-shrinkage coupling step.
func WithShrink(on bool) Option {
	return func(o *Options) { o.fit.Shrink = on }
}

// WithReweight gates the shared-point reweighting step.
func WithReweight(on bool) Option {
	return func(o *Options) { o.fit.Reweight = on }
}

// WithReassign gates the membership reassignment step.
func WithReassign(on bool) Option {
	return func(o *Options) { o.fit.Reassign = on }
}

// WithThresh sets the relative-change convergence threshold for the curve
// fit. Panics on NaN, ±Inf or non-positive values.
func WithThresh(thresh float64) Option {
	if math.IsNaN(thresh) || math.IsInf(thresh, 0) || thresh <= 0 {
		panic(panicThreshInvalid)
	}

	return func(o *Options) { o.fit.Thresh = thresh }
}

// WithMaxIter caps outer fitting iterations. Hitting the cap is not an
// error: the last iterate is returned with Converged reporting false.
// Panics when maxit < 1.
func WithMaxIter(maxit int) Option {
	if maxit < 1 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.fit.MaxIter = maxit }
}

// WithStretch sets the endpoint extrapolation factor of the curve fit;
// legal range [0,2]. Panics outside it.
func WithStretch(stretch float64) Option {
	if math.IsNaN(stretch) || stretch < 0 || stretch > 2 {
		panic(panicStretchInvalid)
	}

	return func(o *Options) { o.fit.Stretch = stretch }
}

// WithExtend selects the seed-curve endpoint policy (extend).
func WithExtend(mode pcurve.ExtendMode) Option {
	return func(o *Options) { o.fit.Extend = mode }
}

// WithShrinkMethod selects the shrinkage kernel family (shrink.method).
func WithShrinkMethod(method pcurve.ShrinkMethod) Option {
	return func(o *Options) { o.fit.ShrinkMethod = method }
}

// WithAllowBreaks controls whether lineages branching immediately at the
// root keep distinct starting points (allow.breaks).
func WithAllowBreaks(on bool) Option {
	return func(o *Options) { o.fit.AllowBreaks = on }
}

// WithSmoother substitutes the per-coordinate scatterplot smoother.
func WithSmoother(s pcurve.Smoother) Option {
	return func(o *Options) { o.fit.Smoother = s }
}

// WithApproxNodes resamples each final curve to k equally spaced
// arc-length nodes (k ≥ 2); 0 keeps full resolution.
func WithApproxNodes(k int) Option {
	return func(o *Options) { o.fit.ApproxNodes = k }
}
