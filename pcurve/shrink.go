package pcurve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// shrinkAll applies branch shrinkage to every lineage pair with shared
// points: both curves of a pair are pulled toward their common average
// near the root (shrink weight 1 at pseudotime 0) and released past the
// non-outlier range of the shared points' pseudotimes (weight 0). Pairs
// are processed in ascending (a,b) index order — deterministic.
//
// When a pair branches immediately at the root (degenerate shared range)
// and allowBreaks is false, both curves are forced to share a starting
// point instead.
func shrinkAll(x *mat.Dense, curves []*Curve, method ShrinkMethod, allowBreaks bool) {
	for a := 0; a < len(curves); a++ {
		for b := a + 1; b < len(curves); b++ {
			shrinkPair(x, curves[a], curves[b], method, allowBreaks)
		}
	}
}

// shrinkPair shrinks the two curves of one lineage pair toward their
// shared average.
func shrinkPair(x *mat.Dense, ca, cb *Curve, method ShrinkMethod, allowBreaks bool) {
	var shared []int
	for i := range ca.Weight {
		if ca.Weight[i] > 0 && cb.Weight[i] > 0 {
			shared = append(shared, i)
		}
	}
	if len(shared) == 0 {
		return
	}

	avg := averagePair(ca, cb)

	shrunkA := shrinkToward(ca, avg, sharedPst(ca, shared), method)
	shrunkB := shrinkToward(cb, avg, sharedPst(cb, shared), method)

	if !shrunkA && !shrunkB && !allowBreaks {
		// Branching at the root: force a common starting point.
		_, d := ca.nodes.Dims()
		start := make([]float64, d)
		for j := 0; j < d; j++ {
			start[j] = (ca.nodes.At(0, j) + cb.nodes.At(0, j)) / 2
		}
		setStart(ca, start)
		setStart(cb, start)
	}

	ca.project(x)
	cb.project(x)
}

// sharedPst returns the shared points' pseudotimes on curve c, ascending.
func sharedPst(c *Curve, shared []int) []float64 {
	pst := make([]float64, len(shared))
	for k, i := range shared {
		pst[k] = c.Lambda[i]
	}
	sort.Float64s(pst)

	return pst
}

// averagePair evaluates both curves on the union of their node arc
// positions (clipped to the shorter curve) and averages the positions.
type averageCurve struct {
	grid  []float64
	nodes [][]float64
}

func averagePair(ca, cb *Curve) *averageCurve {
	limit := math.Min(ca.Length(), cb.Length())

	grid := append(append([]float64(nil), ca.arc...), cb.arc...)
	sort.Float64s(grid)
	merged := grid[:0]
	for _, t := range grid {
		if t > limit {
			break
		}
		if len(merged) > 0 && t-merged[len(merged)-1] < nodeEps {
			continue
		}
		merged = append(merged, t)
	}
	if len(merged) == 0 {
		merged = []float64{0}
	}

	nodes := make([][]float64, len(merged))
	for k, t := range merged {
		pa, pb := ca.at(t), cb.at(t)
		row := make([]float64, len(pa))
		for j := range row {
			row[j] = (pa[j] + pb[j]) / 2
		}
		nodes[k] = row
	}

	return &averageCurve{grid: merged, nodes: nodes}
}

// at linearly interpolates the average curve at arc position t.
func (a *averageCurve) at(t float64) []float64 {
	g := a.grid
	if t <= g[0] {
		return a.nodes[0]
	}
	if t >= g[len(g)-1] {
		return a.nodes[len(g)-1]
	}
	hi := sort.SearchFloat64s(g, t)
	lo := hi - 1
	f := (t - g[lo]) / (g[hi] - g[lo])
	out := make([]float64, len(a.nodes[lo]))
	for j := range out {
		out[j] = a.nodes[lo][j] + f*(a.nodes[hi][j]-a.nodes[lo][j])
	}

	return out
}

// shrinkToward blends curve c toward the average: every node at arc
// position t becomes w(t)·avg(t) + (1−w(t))·node, with w given by
// shrinkWeight over the shared pseudotimes. Returns false when the shared
// range is degenerate (nothing to shrink over).
func shrinkToward(c *Curve, avg *averageCurve, pst []float64, method ShrinkMethod) bool {
	bound := nonOutlierBound(pst)
	if bound <= 0 {
		return false
	}

	s, d := c.nodes.Dims()
	nodes := mat.NewDense(s, d, nil)
	for k := 0; k < s; k++ {
		t := c.arc[k]
		w := shrinkWeight(t, bound, pst, method)
		av := avg.at(t)
		for j := 0; j < d; j++ {
			nodes.Set(k, j, w*av[j]+(1-w)*c.nodes.At(k, j))
		}
	}
	c.setNodes(nodes)

	return true
}

// nonOutlierBound returns the upper edge of the shared pseudotimes'
// non-outlier range under the 1.5×IQR rule, capped at the observed
// maximum.
func nonOutlierBound(sortedPst []float64) float64 {
	if len(sortedPst) == 0 {
		return 0
	}
	q1 := stat.Quantile(0.25, stat.Empirical, sortedPst, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sortedPst, nil)
	bound := q3 + 1.5*(q3-q1)
	if maxPst := sortedPst[len(sortedPst)-1]; bound > maxPst {
		bound = maxPst
	}

	return bound
}

// shrinkWeight is the monotone non-increasing shrinkage weight: exactly 1
// at pseudotime ≤ 0 (the root), 0 at and past bound, and in between the
// survival shape of the selected kernel family.
func shrinkWeight(t, bound float64, sortedPst []float64, method ShrinkMethod) float64 {
	if t <= 0 {
		return 1
	}
	if t >= bound {
		return 0
	}
	u := t / bound

	switch method {
	case ShrinkTricube:
		return cube(1 - u*u*u)
	case ShrinkDensity:
		// Empirical survival of the shared pseudotimes: fraction strictly
		// above t. 1 at t=0 because pseudotimes are non-negative.
		below := sort.SearchFloat64s(sortedPst, t)

		return 1 - float64(below)/float64(len(sortedPst))
	default: // ShrinkCosine
		return (math.Cos(math.Pi*u) + 1) / 2
	}
}

// setStart replaces the curve's first node.
func setStart(c *Curve, start []float64) {
	s, d := c.nodes.Dims()
	nodes := mat.NewDense(s, d, nil)
	nodes.Copy(c.nodes)
	for j := 0; j < d; j++ {
		nodes.Set(0, j, start[j])
	}
	c.setNodes(nodes)
}
