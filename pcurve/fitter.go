package pcurve

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/traject/cluster"
	"github.com/katalvlaran/traject/forest"
)

// Result is the outcome of a simultaneous principal-curve fit.
type Result struct {
	// Curves holds one fitted curve per input lineage, same order.
	Curves []*Curve

	// Iterations is the number of outer iterations performed.
	Iterations int

	// Converged reports whether the relative-change threshold was met
	// before the iteration cap. false is not a failure: the last iterate
	// is returned regardless (principal curves have no convergence
	// guarantee in general).
	Converged bool

	// TotalDistance is the final weighted sum of squared projection
	// distances across all points and lineages.
	TotalDistance float64
}

// Fit runs the simultaneous principal-curve procedure over the given
// lineage topology.
//
// Steps per outer iteration:
//  1. Fit every lineage's curve independently (project/smooth/stretch to
//     inner convergence). Fits are mutually independent — each owns its
//     curve and reads only the shared immutable embedding — and run in
//     parallel; the errgroup Wait is the mandatory barrier before any
//     coupling step reads global per-point distances.
//  2. Reweight shared points (if opts.Reweight).
//  3. Reassign membership (if opts.Reassign).
//  4. Shrink toward shared averages near branch points (if opts.Shrink).
//  5. Stop when the relative change of the total weighted squared
//     projection distance drops below opts.Thresh, else continue up to
//     opts.MaxIter.
//
// Membership: a point belongs to a lineage when it has positive weight on
// any cluster of that lineage's path; points on exactly one lineage carry
// weight 1. A lineage with too few member points for the smoother is a
// fatal, identified error.
func Fit(geom *cluster.Geometry, lineages []forest.Lineage, opts *FitOptions) (*Result, error) {
	if len(lineages) == 0 {
		return nil, ErrNoLineages
	}
	o := DefaultFitOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	smoother := o.Smoother
	if smoother == nil {
		smoother = LocalLinear(DefaultSpan)
	}

	x := geom.Embedding()
	weights := geom.Weights()

	// Seed one curve per lineage and verify data sufficiency up front
	// (configuration and data errors surface before iterative work).
	curves := make([]*Curve, len(lineages))
	for l, lin := range lineages {
		if len(lin) == 0 {
			return nil, fmt.Errorf("lineage %d is empty: %w", l, ErrNoLineages)
		}
		c, err := seedCurve(geom, lin, weights.OnPath(lin), o.Extend)
		if err != nil {
			return nil, err
		}
		if len(c.Members()) < 2 {
			return nil, fmt.Errorf("lineage %s: %w", lineageName(lin), ErrTooFewPoints)
		}
		curves[l] = c
	}

	res := &Result{Curves: curves}
	prev := totalDistance(curves)

	for it := 1; it <= o.MaxIter; it++ {
		res.Iterations = it

		// Step 1: independent per-lineage fits, then the barrier.
		var eg errgroup.Group
		for _, c := range curves {
			c := c
			eg.Go(func() error {
				return fitSingle(x, c, smoother, o.Stretch, o.Thresh, o.MaxIter)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		// Steps 2–4: coupling (only meaningful with multiple lineages).
		if len(curves) > 1 {
			if o.Reweight {
				reweight(curves)
			}
			if o.Reassign {
				reassign(x, curves)
			}
			if o.Shrink {
				shrinkAll(x, curves, o.ShrinkMethod, o.AllowBreaks)
			}
		}

		// Step 5: convergence on the global projection distance.
		cur := totalDistance(curves)
		res.TotalDistance = cur
		if relChange(prev, cur) < o.Thresh {
			res.Converged = true

			break
		}
		prev = cur
	}

	if o.ApproxNodes >= 2 {
		for _, c := range curves {
			c.resample(o.ApproxNodes, x)
		}
		res.TotalDistance = totalDistance(curves)
	}

	return res, nil
}

// totalDistance sums the weighted squared projection distances over all
// curves.
func totalDistance(curves []*Curve) float64 {
	var sum float64
	for _, c := range curves {
		sum += c.totalDist()
	}

	return sum
}
