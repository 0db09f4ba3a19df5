package pcurve

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// assignedDistsSorted returns the curve members' squared projection
// distances, ascending — the empirical distribution used by both
// reweighting and reassignment.
func assignedDistsSorted(c *Curve) []float64 {
	var out []float64
	for i, w := range c.Weight {
		if w > 0 {
			out = append(out, c.DistSq[i])
		}
	}
	sort.Float64s(out)

	return out
}

// reweight rebalances points shared by ≥2 lineages. For every such point
// and each of its lineages, the projection distance is ranked within that
// lineage's member-distance distribution (empirical CDF), mapped through
// 1 − q², and normalized by the point's maximum across its lineages — so
// the best-fitting lineage keeps weight 1 and the others are discounted.
// Points on a single lineage keep their weight of 1 untouched.
func reweight(curves []*Curve) {
	dists := make([][]float64, len(curves))
	for l, c := range curves {
		dists[l] = assignedDistsSorted(c)
	}

	n := len(curves[0].Weight)
	for i := 0; i < n; i++ {
		var active []int
		for l, c := range curves {
			if c.Weight[i] > 0 {
				active = append(active, l)
			}
		}
		if len(active) < 2 {
			continue
		}

		vals := make([]float64, len(active))
		var vmax float64
		for k, l := range active {
			q := ecdf(dists[l], curves[l].DistSq[i])
			vals[k] = 1 - q*q
			if vals[k] > vmax {
				vmax = vals[k]
			}
		}
		for k, l := range active {
			if vmax > 0 {
				curves[l].Weight[i] = vals[k] / vmax
			} else {
				// Every lineage ranks the point dead last: keep it evenly.
				curves[l].Weight[i] = 1
			}
		}
	}
}

// ecdf returns the fraction of sorted values ≤ v (rank → quantile).
func ecdf(sorted []float64, v float64) float64 {
	if len(sorted) == 0 {
		return 1
	}

	return float64(sort.SearchFloat64s(sorted, v+smidgen(v))) / float64(len(sorted))
}

// smidgen returns a magnitude-scaled nudge making SearchFloat64s behave as
// "count ≤ v" under exact float equality.
func smidgen(v float64) float64 {
	const rel = 1e-12
	if v < 0 {
		v = -v
	}
	if v < rel {
		return rel

	}

	return v * rel
}

// dropWeightCeiling is the maximum current weight at which a shared point
// may be removed from a lineage during reassignment.
const dropWeightCeiling = 0.1

// reassign lets lineage membership evolve as curves sharpen:
//
//   - a point joins a lineage when its projection distance onto that curve
//     is below the median of the lineage's currently assigned distances
//     (new members enter with weight 1; the next reweight pass rebalances);
//   - a shared point leaves a lineage when its distance exceeds the 90th
//     percentile of assigned distances AND its weight there is already
//     below 0.1. A point is never dropped from its last lineage.
//
// Quantiles are computed on the pre-update state of every lineage.
func reassign(x *mat.Dense, curves []*Curve) {
	type bounds struct {
		median, p90    float64
		lambda, distSq []float64 // every point vs this curve
	}
	bds := make([]bounds, len(curves))
	for l, c := range curves {
		sorted := assignedDistsSorted(c)
		lam, d2 := c.projectAll(x)
		bds[l] = bounds{
			median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			p90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
			lambda: lam,
			distSq: d2,
		}
	}

	// Additions first: close points join.
	for l, c := range curves {
		for i := range c.Weight {
			if c.Weight[i] > 0 {
				continue
			}
			if bds[l].distSq[i] < bds[l].median {
				c.Weight[i] = 1
				c.Lambda[i] = bds[l].lambda[i]
				c.DistSq[i] = bds[l].distSq[i]
			}
		}
	}

	// Removals: weak, distant, shared points leave (never the last lineage).
	n := len(curves[0].Weight)
	for i := 0; i < n; i++ {
		var active []int
		for l, c := range curves {
			if c.Weight[i] > 0 {
				active = append(active, l)
			}
		}
		for _, l := range active {
			if len(activeOf(curves, i)) < 2 {
				break
			}
			c := curves[l]
			if c.DistSq[i] > bds[l].p90 && c.Weight[i] < dropWeightCeiling {
				c.Weight[i] = 0
			}
		}
	}
}

// activeOf returns the lineage indices where point i currently has
// positive weight.
func activeOf(curves []*Curve, i int) []int {
	var out []int
	for l, c := range curves {
		if c.Weight[i] > 0 {
			out = append(out, l)
		}
	}

	return out
}
