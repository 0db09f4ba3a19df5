package traject

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/traject/cluster"
	"github.com/katalvlaran/traject/forest"
	"github.com/katalvlaran/traject/pcurve"
)

// soleClusterLabel is substituted when no labels are provided at all.
const soleClusterLabel = "1"

// Trajectory is the inferred result: the cluster connectivity, the lineage
// paths, and (when at least one lineage exists) the fitted curves with
// per-point pseudotimes and weights.
type Trajectory struct {
	geom     *cluster.Geometry
	conn     *forest.Connectivity
	lineages []forest.Lineage
	fit      *pcurve.Result // nil when no lineage could be formed
	notes    []string
}

// Infer runs the full pipeline on hard cluster labels (one label per
// point; cluster.Unclustered marks unassigned points). A nil labels slice
// substitutes a single cluster for all points, with an informational note.
//
// Pipeline: cluster geometry → distance matrix (with background node) →
// constrained spanning forest → lineage extraction → simultaneous
// principal curves. Configuration errors (contradictory constraints,
// label/row mismatches) surface before any fitting work begins.
func Infer(points [][]float64, labels []string, opts ...Option) (*Trajectory, error) {
	o := gatherOptions(opts...)

	x, err := denseFromRows(points)
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()

	var notes []string
	if labels == nil {
		notes = append(notes, "no cluster labels provided, continuing with one cluster")
		labels = make([]string, n)
		for i := range labels {
			labels[i] = soleClusterLabel
		}
	}
	if len(labels) != n {
		return nil, ErrLabelMismatch
	}

	w, err := cluster.FromLabels(labels)
	if err != nil {
		return nil, err
	}

	return infer(x, w, o, notes)
}

// InferWeighted runs the full pipeline on a soft clustering: one weight
// row per point over the named cluster columns, entries in [0,1].
func InferWeighted(points [][]float64, clusterLabels []string, weights [][]float64, opts ...Option) (*Trajectory, error) {
	o := gatherOptions(opts...)

	x, err := denseFromRows(points)
	if err != nil {
		return nil, err
	}
	if n, _ := x.Dims(); len(weights) != n {
		return nil, ErrLabelMismatch
	}

	w, err := cluster.New(clusterLabels, weights)
	if err != nil {
		return nil, err
	}

	return infer(x, w, o, nil)
}

// infer is the single pipeline behind both entry points.
func infer(x *mat.Dense, w *cluster.Weights, o Options, notes []string) (*Trajectory, error) {
	geom, err := cluster.NewGeometry(x, w)
	if err != nil {
		return nil, err
	}

	dist, err := geom.DistanceMatrix(o.distFn, o.omega)
	if err != nil {
		return nil, err
	}

	conn, err := forest.Build(dist, w.Labels(),
		forest.WithRoots(o.startClusters...),
		forest.WithLeaves(o.endClusters...))
	if err != nil {
		return nil, err
	}

	lineages, autoRoots, err := forest.ExtractLineages(conn, o.startClusters)
	if err != nil {
		return nil, err
	}
	for _, r := range autoRoots {
		notes = append(notes, fmt.Sprintf("no root specified, selecting cluster %q automatically", r))
	}

	traj := &Trajectory{
		geom:     geom,
		conn:     conn,
		lineages: lineages,
		notes:    notes,
	}
	if len(lineages) == 0 {
		traj.notes = append(traj.notes, "no component with at least two clusters, nothing to fit")

		return traj, nil
	}

	fit, err := pcurve.Fit(geom, lineages, &o.fit)
	if err != nil {
		return nil, err
	}
	traj.fit = fit

	return traj, nil
}

// denseFromRows validates a rectangular, non-empty [][]float64 and copies
// it into an n×d matrix.
func denseFromRows(points [][]float64) (*mat.Dense, error) {
	if len(points) == 0 || len(points[0]) == 0 {
		return nil, ErrNoPoints
	}
	d := len(points[0])
	flat := make([]float64, 0, len(points)*d)
	for _, row := range points {
		if len(row) != d {
			return nil, ErrRaggedEmbedding
		}
		flat = append(flat, row...)
	}

	return mat.NewDense(len(points), d, flat), nil
}

// ClusterLabels returns the cluster labels in ascending (matrix) order.
func (t *Trajectory) ClusterLabels() []string { return t.conn.Labels() }

// Connectivity returns the forest adjacency as a symmetric 0/1 matrix over
// ClusterLabels order.
func (t *Trajectory) Connectivity() [][]float64 { return t.conn.Matrix() }

// Connected reports whether two clusters share a forest edge.
func (t *Trajectory) Connected(a, b string) bool { return t.conn.Connected(a, b) }

// Lineages returns every lineage as its ordered root-to-leaf label path.
func (t *Trajectory) Lineages() [][]string {
	out := make([][]string, len(t.lineages))
	for i, lin := range t.lineages {
		out[i] = append([]string(nil), lin...)
	}

	return out
}

// NumLineages returns the number of inferred lineages.
func (t *Trajectory) NumLineages() int { return len(t.lineages) }

// Curves returns the fitted curves, one per lineage in Lineages order, or
// nil when no lineage could be formed.
func (t *Trajectory) Curves() []*pcurve.Curve {
	if t.fit == nil {
		return nil
	}

	return t.fit.Curves
}

// Pseudotime returns the n×L pseudotime matrix: entry (i,l) is point i's
// arc-length position on lineage l, NaN where the point is not a member.
func (t *Trajectory) Pseudotime() [][]float64 {
	return t.perPoint(func(c *pcurve.Curve, i int) float64 {
		if c.Weight[i] <= 0 {
			return math.NaN()
		}

		return c.Lambda[i]
	})
}

// Weights returns the n×L lineage weight matrix: entry (i,l) is point i's
// membership weight on lineage l in [0,1], 0 for non-members.
func (t *Trajectory) Weights() [][]float64 {
	return t.perPoint(func(c *pcurve.Curve, i int) float64 { return c.Weight[i] })
}

// perPoint assembles an n×L matrix from a per-curve per-point accessor.
func (t *Trajectory) perPoint(get func(*pcurve.Curve, int) float64) [][]float64 {
	n := t.geom.NumPoints()
	out := make([][]float64, n)
	curves := t.Curves()
	for i := 0; i < n; i++ {
		out[i] = make([]float64, len(curves))
		for l, c := range curves {
			out[i][l] = get(c, i)
		}
	}

	return out
}

// Converged reports whether the curve fit met its threshold before the
// iteration cap; it is vacuously true when nothing was fitted.
func (t *Trajectory) Converged() bool {
	if t.fit == nil {
		return true
	}

	return t.fit.Converged
}

// Iterations returns the number of outer fitting iterations performed.
func (t *Trajectory) Iterations() int {
	if t.fit == nil {
		return 0
	}

	return t.fit.Iterations
}

// TotalDistance returns the final weighted sum of squared projection
// distances, 0 when nothing was fitted.
func (t *Trajectory) TotalDistance() float64 {
	if t.fit == nil {
		return 0
	}

	return t.fit.TotalDistance
}

// Notes returns the informational notices accumulated by the pipeline
// (default substitutions, automatic root selection). Notices never alter
// control flow.
func (t *Trajectory) Notes() []string {
	return append([]string(nil), t.notes...)
}
