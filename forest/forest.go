package forest

import (
	"fmt"
	"math"
	"sort"
)

// symEps is the tolerance used by the symmetry check on the input matrix.
const symEps = 1e-9

// Options configures the tree build. Zero value means: no forced roots, no
// forced leaves. Use DefaultOptions() plus the With* setters.
type Options struct {
	// Roots are cluster labels that must act as lineage roots. Roots do not
	// change the spanning forest; they restrict path extraction.
	Roots []string

	// Leaves are cluster labels that must end up with degree ≤ 1 in the
	// final forest (trajectory endpoints). This is a hard constraint.
	Leaves []string
}

// Option mutates Options; setters are applied in order, last-writer-wins.
type Option func(*Options)

// WithRoots forces the given cluster labels to act as lineage roots.
func WithRoots(labels ...string) Option {
	return func(o *Options) { o.Roots = append([]string(nil), labels...) }
}

// WithLeaves forces the given cluster labels to be leaves (degree ≤ 1).
func WithLeaves(labels ...string) Option {
	return func(o *Options) { o.Leaves = append([]string(nil), labels...) }
}

// DefaultOptions returns an unconstrained build configuration.
func DefaultOptions() Options { return Options{} }

// Connectivity is the built spanning forest over real clusters, exposed as
// a symmetric 0/1 adjacency. The background node is consumed internally by
// Build and never appears here.
type Connectivity struct {
	labels []string
	index  map[string]int
	adj    [][]bool
}

// Labels returns the cluster labels in matrix order.
func (c *Connectivity) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Connected reports whether clusters a and b share a forest edge.
// Unknown labels report false.
func (c *Connectivity) Connected(a, b string) bool {
	i, ok := c.index[a]
	if !ok {
		return false
	}
	j, ok := c.index[b]
	if !ok {
		return false
	}

	return c.adj[i][j]
}

// Degree returns the number of forest edges incident to the cluster,
// or 0 for unknown labels.
func (c *Connectivity) Degree(label string) int {
	i, ok := c.index[label]
	if !ok {
		return 0
	}
	var deg int
	for j := range c.adj[i] {
		if c.adj[i][j] {
			deg++
		}
	}

	return deg
}

// Matrix returns a copy of the adjacency as a symmetric 0/1 matrix.
func (c *Connectivity) Matrix() [][]float64 {
	m := make([][]float64, len(c.labels))
	for i := range m {
		m[i] = make([]float64, len(c.labels))
		for j := range m[i] {
			if c.adj[i][j] {
				m[i][j] = 1
			}
		}
	}

	return m
}

// neighbors returns the adjacent node indices of i in ascending order.
func (c *Connectivity) neighbors(i int) []int {
	var out []int
	for j := range c.adj[i] {
		if c.adj[i][j] {
			out = append(out, j)
		}
	}

	return out
}

// edge is one candidate forest edge between node indices u < v.
type edge struct {
	u, v int
	w    float64
}

// Build constructs the constrained minimum spanning forest.
//
// dist must be the (k+1)×(k+1) symmetric matrix over the k labels plus the
// background node at index k (background distance = omega/2, read from the
// matrix itself). Steps:
//
//  1. Validate shape, symmetry and entries; validate constraints
//     (root∩leaf = ∅, at least one non-leaf cluster).
//  2. Run Kruskal over the non-leaf clusters plus the background node:
//     real edges are enumerated before background edges so that ties at
//     weight omega/2·2 resolve in favor of real connections.
//  3. Attach every forced-leaf cluster by its single cheapest edge to a
//     non-leaf cluster, but only when that edge is no more expensive than
//     the background alternative (omega/2); otherwise the leaf stays a
//     singleton component. Attached this way, a forced leaf has degree 1.
//  4. Drop the background node; return the real-cluster adjacency.
//
// Complexity: O(k² log k). Deterministic for identical inputs.
func Build(dist [][]float64, labels []string, opts ...Option) (*Connectivity, error) {
	o := DefaultOptions()
	for _, set := range opts {
		set(&o)
	}

	k := len(labels)
	if k < 1 {
		return nil, ErrNoClusters
	}
	if err := validateMatrix(dist, k); err != nil {
		return nil, err
	}

	index := make(map[string]int, k)
	for i, l := range labels {
		index[l] = i
	}
	if err := validateConstraints(index, o, k); err != nil {
		return nil, err
	}

	isLeaf := make([]bool, k)
	for _, l := range o.Leaves {
		isLeaf[index[l]] = true
	}

	bg := k               // background node index
	omega2 := dist[0][bg] // omega/2; identical for every real cluster

	// Candidate edges: real-to-real between non-leaf clusters first
	// (ascending index pairs), then background edges. sort.SliceStable keeps
	// that order for equal weights, so real edges win ties.
	var edges []edge
	for u := 0; u < k; u++ {
		if isLeaf[u] {
			continue
		}
		for v := u + 1; v < k; v++ {
			if isLeaf[v] {
				continue
			}
			edges = append(edges, edge{u: u, v: v, w: dist[u][v]})
		}
	}
	for u := 0; u < k; u++ {
		if !isLeaf[u] {
			edges = append(edges, edge{u: u, v: bg, w: omega2})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].w < edges[j].w })

	// Kruskal over non-leaf clusters ∪ {background}.
	adj := make([][]bool, k)
	for i := range adj {
		adj[i] = make([]bool, k)
	}
	uf := newUnionFind(k + 1)
	for _, e := range edges {
		if !uf.union(e.u, e.v) {
			continue
		}
		if e.u != bg && e.v != bg {
			adj[e.u][e.v], adj[e.v][e.u] = true, true
		}
	}

	// Attach forced leaves, each by a single cheapest real edge.
	for u := 0; u < k; u++ {
		if !isLeaf[u] {
			continue
		}
		best, bestD := -1, math.Inf(1)
		for v := 0; v < k; v++ {
			if isLeaf[v] || v == u {
				continue
			}
			if dist[u][v] < bestD {
				best, bestD = v, dist[u][v]
			}
		}
		// The background alternative costs omega/2; a dearer real edge would
		// never have been selected by Kruskal either.
		if best >= 0 && bestD <= omega2 {
			adj[u][best], adj[best][u] = true, true
		}
	}

	return &Connectivity{
		labels: append([]string(nil), labels...),
		index:  index,
		adj:    adj,
	}, nil
}

// validateMatrix checks shape, symmetry, and entry sanity of dist.
func validateMatrix(dist [][]float64, k int) error {
	if len(dist) != k+1 {
		return fmt.Errorf("%w: got %d rows for %d clusters", ErrBadMatrix, len(dist), k)
	}
	for i := range dist {
		if len(dist[i]) != k+1 {
			return fmt.Errorf("%w: row %d has %d columns", ErrBadMatrix, i, len(dist[i]))
		}
	}
	for i := 0; i <= k; i++ {
		for j := i; j <= k; j++ {
			a, b := dist[i][j], dist[j][i]
			if math.IsNaN(a) || a < 0 {
				return fmt.Errorf("%w: entry (%d,%d)", ErrBadMatrix, i, j)
			}
			if a != b && math.Abs(a-b) > symEps { // a != b guards Inf==Inf
				return fmt.Errorf("%w: asymmetric at (%d,%d)", ErrBadMatrix, i, j)
			}
		}
	}

	return nil
}

// validateConstraints rejects unknown labels and contradictory constraints.
func validateConstraints(index map[string]int, o Options, k int) error {
	leafSet := make(map[string]bool, len(o.Leaves))
	for _, l := range o.Leaves {
		if _, ok := index[l]; !ok {
			return fmt.Errorf("leaf %q: %w", l, ErrUnknownLabel)
		}
		leafSet[l] = true
	}
	for _, r := range o.Roots {
		if _, ok := index[r]; !ok {
			return fmt.Errorf("root %q: %w", r, ErrUnknownLabel)
		}
		if leafSet[r] {
			return fmt.Errorf("cluster %q forced to be both root and leaf: %w", r, ErrConstraintConflict)
		}
	}
	if len(leafSet) == k {
		return fmt.Errorf("all %d clusters forced to be leaves: %w", k, ErrConstraintConflict)
	}

	return nil
}
