package pcurve

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// nodeEps is the minimum inter-node distance kept when deduplicating
// consecutive curve nodes (zero-length segments break projection).
const nodeEps = 1e-12

// Curve is one lineage's fitted principal curve: an ordered polyline
// through embedding space plus, for every point in the embedding, a
// pseudotime (arc-length position), a squared perpendicular projection
// distance, and a membership weight. A weight of 0 means the point is not
// a member of this lineage; Lambda/DistSq are only meaningful where
// Weight > 0.
type Curve struct {
	// Lineage is the root-to-leaf cluster label path this curve follows.
	Lineage []string

	// Lambda[i] is point i's arc-length pseudotime along the curve.
	Lambda []float64

	// DistSq[i] is point i's squared perpendicular projection distance.
	DistSq []float64

	// Weight[i] ∈ [0,1] is point i's membership weight on this lineage.
	Weight []float64

	nodes *mat.Dense // s×d ordered path points
	arc   []float64  // cumulative arc length per node, arc[0]=0
}

// newCurve allocates a curve over n points for the given lineage.
func newCurve(lineage []string, n int) *Curve {
	return &Curve{
		Lineage: append([]string(nil), lineage...),
		Lambda:  make([]float64, n),
		DistSq:  make([]float64, n),
		Weight:  make([]float64, n),
	}
}

// Nodes returns a copy of the s×d ordered path points.
func (c *Curve) Nodes() *mat.Dense {
	s, d := c.nodes.Dims()
	out := mat.NewDense(s, d, nil)
	out.Copy(c.nodes)

	return out
}

// NodeAt returns a copy of path point k's coordinates.
func (c *Curve) NodeAt(k int) []float64 {
	return append([]float64(nil), c.nodes.RawRowView(k)...)
}

// NumNodes returns the number of path points.
func (c *Curve) NumNodes() int {
	s, _ := c.nodes.Dims()

	return s
}

// Length returns the curve's total arc length.
func (c *Curve) Length() float64 {
	if len(c.arc) == 0 {
		return 0
	}

	return c.arc[len(c.arc)-1]
}

// Members returns the indices of points with positive weight, ascending.
func (c *Curve) Members() []int {
	var out []int
	for i, w := range c.Weight {
		if w > 0 {
			out = append(out, i)
		}
	}

	return out
}

// setNodes installs a new polyline, dropping consecutive (near-)duplicate
// nodes and recomputing cumulative arc lengths.
func (c *Curve) setNodes(nodes *mat.Dense) {
	s, d := nodes.Dims()
	rows := make([][]float64, 0, s)
	for i := 0; i < s; i++ {
		row := nodes.RawRowView(i)
		if len(rows) > 0 && sqDist(rows[len(rows)-1], row) < nodeEps {
			continue
		}
		rows = append(rows, append([]float64(nil), row...))
	}
	// A curve needs at least one segment; duplicate the single survivor.
	if len(rows) == 1 {
		rows = append(rows, append([]float64(nil), rows[0]...))
	}

	flat := make([]float64, 0, len(rows)*d)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	c.nodes = mat.NewDense(len(rows), d, flat)

	c.arc = make([]float64, len(rows))
	for i := 1; i < len(rows); i++ {
		c.arc[i] = c.arc[i-1] + math.Sqrt(sqDist(rows[i-1], rows[i]))
	}
}

// at returns the curve position at arc length t (clamped to [0, Length]).
func (c *Curve) at(t float64) []float64 {
	s, d := c.nodes.Dims()
	if t <= 0 {
		return append([]float64(nil), c.nodes.RawRowView(0)...)
	}
	if t >= c.arc[s-1] {
		return append([]float64(nil), c.nodes.RawRowView(s-1)...)
	}
	// Segment search: arc is ascending; linear scan is fine for the node
	// counts involved, but use binary search for stability at scale.
	lo, hi := 0, s-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if c.arc[mid] <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	segLen := c.arc[hi] - c.arc[lo]
	f := (t - c.arc[lo]) / segLen
	a, b := c.nodes.RawRowView(lo), c.nodes.RawRowView(hi)
	out := make([]float64, d)
	for j := 0; j < d; j++ {
		out[j] = a[j] + f*(b[j]-a[j])
	}

	return out
}

// projectPoint orthogonally projects x onto the polyline and returns the
// arc-length pseudotime and squared perpendicular distance. The first of
// several equally near segments wins (deterministic).
func (c *Curve) projectPoint(x []float64) (lambda, distSq float64) {
	s, d := c.nodes.Dims()
	best := math.Inf(1)
	var bestLambda float64
	for seg := 0; seg < s-1; seg++ {
		a, b := c.nodes.RawRowView(seg), c.nodes.RawRowView(seg+1)
		var ab2, apab float64
		for j := 0; j < d; j++ {
			ab := b[j] - a[j]
			ab2 += ab * ab
			apab += (x[j] - a[j]) * ab
		}
		f := 0.0
		if ab2 > 0 {
			f = apab / ab2
			if f < 0 {
				f = 0
			} else if f > 1 {
				f = 1
			}
		}
		var d2 float64
		for j := 0; j < d; j++ {
			diff := x[j] - (a[j] + f*(b[j]-a[j]))
			d2 += diff * diff
		}
		if d2 < best {
			best = d2
			bestLambda = c.arc[seg] + f*(c.arc[seg+1]-c.arc[seg])
		}
	}

	return bestLambda, best
}

// project recomputes Lambda/DistSq for every member point of the curve.
func (c *Curve) project(x *mat.Dense) {
	for i, w := range c.Weight {
		if w <= 0 {
			continue
		}
		c.Lambda[i], c.DistSq[i] = c.projectPoint(x.RawRowView(i))
	}
}

// projectAll returns pseudotime and squared distance of every point in the
// embedding against this curve, members or not (used by reassignment).
func (c *Curve) projectAll(x *mat.Dense) (lambda, distSq []float64) {
	n, _ := x.Dims()
	lambda = make([]float64, n)
	distSq = make([]float64, n)
	for i := 0; i < n; i++ {
		lambda[i], distSq[i] = c.projectPoint(x.RawRowView(i))
	}

	return lambda, distSq
}

// totalDist returns the weighted sum of squared projection distances of
// the curve's members.
func (c *Curve) totalDist() float64 {
	var sum float64
	for i, w := range c.Weight {
		if w > 0 {
			sum += w * c.DistSq[i]
		}
	}

	return sum
}

// resample replaces the polyline with k nodes at equal arc-length spacing
// and reprojects members. k ≥ 2 is assumed (validated upstream).
func (c *Curve) resample(k int, x *mat.Dense) {
	_, d := c.nodes.Dims()
	total := c.Length()
	flat := make([]float64, 0, k*d)
	for i := 0; i < k; i++ {
		t := total * float64(i) / float64(k-1)
		flat = append(flat, c.at(t)...)
	}
	c.setNodes(mat.NewDense(k, d, flat))
	c.project(x)
}

// curveState is a restorable snapshot of the fields the fitting iteration
// mutates (Weight is owned by the coupling steps and not included).
type curveState struct {
	nodes  *mat.Dense
	arc    []float64
	lambda []float64
	distSq []float64
}

// snapshot captures the current polyline and member projections.
func (c *Curve) snapshot() *curveState {
	s, d := c.nodes.Dims()
	nodes := mat.NewDense(s, d, nil)
	nodes.Copy(c.nodes)

	return &curveState{
		nodes:  nodes,
		arc:    append([]float64(nil), c.arc...),
		lambda: append([]float64(nil), c.Lambda...),
		distSq: append([]float64(nil), c.DistSq...),
	}
}

// restore reinstates a snapshot taken from this curve.
func (c *Curve) restore(st *curveState) {
	c.nodes = st.nodes
	c.arc = st.arc
	copy(c.Lambda, st.lambda)
	copy(c.DistSq, st.distSq)
}

// sqDist returns the squared Euclidean distance of two equal-length
// vectors.
func sqDist(a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}

	return sum
}
