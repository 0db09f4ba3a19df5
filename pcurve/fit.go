package pcurve

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/traject/cluster"
)

// lineageName renders a lineage for error messages and result inspection.
func lineageName(lineage []string) string {
	return strings.Join(lineage, "→")
}

// seedCurve builds the initial piecewise-linear path through the lineage's
// cluster centers, applies the endpoint policy, and projects the members.
func seedCurve(geom *cluster.Geometry, lineage []string, weights []float64, mode ExtendMode) (*Curve, error) {
	d := geom.Dim()
	centers := make([][]float64, len(lineage))
	for i, label := range lineage {
		mu, err := geom.Center(label)
		if err != nil {
			return nil, err
		}
		centers[i] = mu
	}

	c := newCurve(lineage, geom.NumPoints())
	copy(c.Weight, weights)

	switch {
	case len(centers) < 2 || mode == ExtendEndpoint:
		// Nothing to extend along (or the policy says stop at the centers).
	case mode == ExtendProjection:
		if ext := extendToExtreme(geom, c, centers[0], centers[1]); ext != nil {
			centers = append([][]float64{ext}, centers...)
		}
		last := len(centers) - 1
		if ext := extendToExtreme(geom, c, centers[last], centers[last-1]); ext != nil {
			centers = append(centers, ext)
		}
	case mode == ExtendPC1:
		ext, err := extendAlongPC1(geom, lineage[0], centers[0], centers[1])
		if err != nil {
			return nil, err
		}
		if ext != nil {
			centers = append([][]float64{ext}, centers...)
		}
		last := len(centers) - 1
		ext, err = extendAlongPC1(geom, lineage[len(lineage)-1], centers[last], centers[last-1])
		if err != nil {
			return nil, err
		}
		if ext != nil {
			centers = append(centers, ext)
		}
	}

	flat := make([]float64, 0, len(centers)*d)
	for _, mu := range centers {
		flat = append(flat, mu...)
	}
	c.setNodes(mat.NewDense(len(centers), d, flat))
	c.project(geom.Embedding())

	return c, nil
}

// extendToExtreme returns a new endpoint beyond `end`, at the orthogonal
// projection of the most extreme member point onto the outward direction
// end−inner, or nil when no member lies beyond the endpoint.
func extendToExtreme(geom *cluster.Geometry, c *Curve, end, inner []float64) []float64 {
	u := outwardUnit(end, inner)
	if u == nil {
		return nil
	}

	x := geom.Embedding()
	var far float64
	for i, w := range c.Weight {
		if w <= 0 {
			continue
		}
		row := x.RawRowView(i)
		var dot float64
		for j := range u {
			dot += (row[j] - end[j]) * u[j]
		}
		if dot > far {
			far = dot
		}
	}
	if far <= 0 {
		return nil
	}

	ext := make([]float64, len(end))
	for j := range ext {
		ext[j] = end[j] + far*u[j]
	}

	return ext
}

// extendAlongPC1 extends past `end` along the endpoint cluster's leading
// principal direction (sign-aligned outward), out to the farthest
// projection of that cluster's own points.
func extendAlongPC1(geom *cluster.Geometry, endLabel string, end, inner []float64) ([]float64, error) {
	dir, err := geom.PrincipalDirection(endLabel)
	if err != nil {
		return nil, err
	}
	u := outwardUnit(end, inner)
	if u == nil {
		return nil, nil
	}
	var align float64
	for j := range dir {
		align += dir[j] * u[j]
	}
	if align < 0 {
		for j := range dir {
			dir[j] = -dir[j]
		}
	}

	x := geom.Embedding()
	w := geom.Weights()
	var far float64
	for i := 0; i < geom.NumPoints(); i++ {
		if w.At(i, endLabel) <= 0 {
			continue
		}
		row := x.RawRowView(i)
		var dot float64
		for j := range dir {
			dot += (row[j] - end[j]) * dir[j]
		}
		if dot > far {
			far = dot
		}
	}
	if far <= 0 {
		return nil, nil
	}

	ext := make([]float64, len(end))
	for j := range ext {
		ext[j] = end[j] + far*dir[j]
	}

	return ext, nil
}

// outwardUnit returns the unit vector pointing from inner toward end, or
// nil when the two coincide.
func outwardUnit(end, inner []float64) []float64 {
	u := make([]float64, len(end))
	var norm float64
	for j := range u {
		u[j] = end[j] - inner[j]
		norm += u[j] * u[j]
	}
	if norm <= 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for j := range u {
		u[j] /= norm
	}

	return u
}

// fitSingle runs the per-lineage principal-curve iteration, ignoring any
// sharing with other lineages: alternate projecting members onto the curve
// with refitting each coordinate as a smooth of pseudotime, stretching the
// curve ends, until the weighted total squared projection distance changes
// by less than thresh (relative) or the cap is hit.
//
// A candidate curve is accepted only when it does not raise the weighted
// total; a worsening candidate is discarded and the incumbent kept, so the
// total is non-increasing across iterations (smooth/stretch/reproject is
// not a descent step and can oscillate once near the fixed point).
//
// The curve's Lambda/DistSq/nodes are updated in place; only this curve is
// touched, which is what makes per-lineage fits safe to run in parallel.
func fitSingle(x *mat.Dense, c *Curve, smoother Smoother, stretch, thresh float64, maxIter int) error {
	members := c.Members()
	if len(members) < 2 {
		return fmt.Errorf("lineage %s: %w", lineageName(c.Lineage), ErrTooFewPoints)
	}
	_, d := x.Dims()

	prev := c.totalDist()
	for iter := 0; iter < maxIter; iter++ {
		// Order members by pseudotime (stable: ties keep index order).
		ord := append([]int(nil), members...)
		sort.SliceStable(ord, func(a, b int) bool { return c.Lambda[ord[a]] < c.Lambda[ord[b]] })

		t := make([]float64, len(ord))
		w := make([]float64, len(ord))
		for k, i := range ord {
			t[k] = c.Lambda[i]
			w[k] = c.Weight[i]
		}

		// Refit every coordinate against pseudotime.
		fitted := make([][]float64, d)
		y := make([]float64, len(ord))
		for j := 0; j < d; j++ {
			for k, i := range ord {
				y[k] = x.At(i, j)
			}
			f, err := smoother(t, y, w, t)
			if err != nil {
				return fmt.Errorf("lineage %s: %w", lineageName(c.Lineage), err)
			}
			fitted[j] = f
		}

		nodes := mat.NewDense(len(ord), d, nil)
		for k := range ord {
			for j := 0; j < d; j++ {
				nodes.Set(k, j, fitted[j][k])
			}
		}
		stretchEnds(nodes, stretch)

		incumbent := c.snapshot()
		c.setNodes(nodes)
		c.project(x)
		cur := c.totalDist()
		if cur > prev {
			// The candidate worsened the fit: keep the incumbent. Iterating
			// further would only rebuild the same candidate.
			c.restore(incumbent)

			return nil
		}
		if relChange(prev, cur) < thresh {
			return nil
		}
		prev = cur
	}

	return nil // cap reached; last iterate stands (not an error)
}

// stretchEnds extrapolates the first and last node outward along their end
// segments by the stretch factor, letting extreme points project beyond
// the smoothed data range.
func stretchEnds(nodes *mat.Dense, stretch float64) {
	s, d := nodes.Dims()
	if stretch <= 0 || s < 2 {
		return
	}
	for j := 0; j < d; j++ {
		first, second := nodes.At(0, j), nodes.At(1, j)
		nodes.Set(0, j, first+stretch*(first-second))
		last, penult := nodes.At(s-1, j), nodes.At(s-2, j)
		nodes.Set(s-1, j, last+stretch*(last-penult))
	}
}

// relChange returns |prev−cur| / prev, treating a zero baseline as already
// converged.
func relChange(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}

	return math.Abs(prev-cur) / prev
}
