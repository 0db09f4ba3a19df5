package forest

import (
	"fmt"
	"sort"
)

// Lineage is an ordered sequence of cluster labels from a root to a leaf
// of the spanning forest.
type Lineage []string

// ExtractLineages walks every connected component of the forest with ≥2
// clusters and returns its root-to-leaf paths as lineages. Singleton
// components are dropped (no path possible).
//
// Root policy per component:
//   - With forced roots present in the component: every forced root emits
//     all of its root-to-leaf paths, excluding leaves that are themselves
//     other forced roots (those head different lineages).
//   - Without one: every leaf is tried as a candidate root; the candidate
//     maximizing the mean path length (clusters per path) is kept. Ties
//     break on the lexicographically smallest cluster label. The chosen
//     labels are reported in autoRoots, one per unconstrained component
//     that produced lineages.
//
// Within a component, paths are enumerated depth-first with children in
// ascending label order, and the component's lineages are ordered longest
// first (stable). Components are visited in ascending order of their
// smallest label. The whole procedure is deterministic.
func ExtractLineages(c *Connectivity, roots []string) ([]Lineage, []string, error) {
	for _, r := range roots {
		if _, ok := c.index[r]; !ok {
			return nil, nil, fmt.Errorf("root %q: %w", r, ErrUnknownLabel)
		}
	}
	rootSet := make(map[int]bool, len(roots))
	for _, r := range roots {
		rootSet[c.index[r]] = true
	}

	var lineages []Lineage
	var autoRoots []string

	for _, comp := range components(c) {
		if len(comp) < 2 {
			continue // no lineage possible
		}

		// Forced roots inside this component, ascending label order.
		var forced []int
		for _, i := range comp {
			if rootSet[i] {
				forced = append(forced, i)
			}
		}

		var got []Lineage
		if len(forced) > 0 {
			for _, r := range forced {
				got = append(got, pathsFrom(c, r, rootSet)...)
			}
		} else {
			var chosen int
			got, chosen = bestRootPaths(c, comp)
			if len(got) > 0 {
				autoRoots = append(autoRoots, c.labels[chosen])
			}
		}

		// Longest lineages first; the DFS order already fixed equal-length
		// ordering deterministically.
		sort.SliceStable(got, func(a, b int) bool { return len(got[a]) > len(got[b]) })
		lineages = append(lineages, got...)
	}

	return lineages, autoRoots, nil
}

// components returns the connected components of c, each as an ascending
// index slice, ordered by their smallest member.
func components(c *Connectivity) [][]int {
	n := len(c.labels)
	visited := make([]bool, n)
	var comps [][]int
	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		var comp []int
		queue := []int{s}
		visited[s] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			comp = append(comp, u)
			for _, v := range c.neighbors(u) {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}

	return comps
}

// pathsFrom enumerates every root-to-leaf path starting at root,
// depth-first with children visited in ascending label order. Paths ending
// at a leaf in exclude (another forced root) are skipped.
func pathsFrom(c *Connectivity, root int, exclude map[int]bool) []Lineage {
	var out []Lineage
	path := []int{root}

	var walk func(u, parent int)
	walk = func(u, parent int) {
		next := childrenByLabel(c, u, parent)
		if len(next) == 0 {
			// u is a leaf of this walk.
			if u != root && !exclude[u] {
				out = append(out, toLineage(c, path))
			}

			return
		}
		for _, v := range next {
			path = append(path, v)
			walk(v, u)
			path = path[:len(path)-1]
		}
	}
	walk(root, -1)

	return out
}

// childrenByLabel returns u's neighbors except parent, ascending by label.
func childrenByLabel(c *Connectivity, u, parent int) []int {
	var next []int
	for _, v := range c.neighbors(u) {
		if v != parent {
			next = append(next, v)
		}
	}
	sort.Slice(next, func(a, b int) bool { return c.labels[next[a]] < c.labels[next[b]] })

	return next
}

// bestRootPaths tries every leaf of the component as candidate root and
// keeps the candidate whose paths have maximal mean length. Candidates are
// scanned in ascending label order, and a strictly greater mean is required
// to displace the incumbent, which makes the tie-break "lexicographically
// smallest label" by construction.
func bestRootPaths(c *Connectivity, comp []int) ([]Lineage, int) {
	var leaves []int
	for _, i := range comp {
		if len(c.neighbors(i)) == 1 {
			leaves = append(leaves, i)
		}
	}
	sort.Slice(leaves, func(a, b int) bool { return c.labels[leaves[a]] < c.labels[leaves[b]] })

	bestMean := -1.0
	var best []Lineage
	bestRoot := -1
	for _, cand := range leaves {
		paths := pathsFrom(c, cand, nil)
		if len(paths) == 0 {
			continue
		}
		var total int
		for _, p := range paths {
			total += len(p)
		}
		mean := float64(total) / float64(len(paths))
		if mean > bestMean {
			bestMean, best, bestRoot = mean, paths, cand
		}
	}

	return best, bestRoot
}

// toLineage converts an index path into its label sequence.
func toLineage(c *Connectivity, path []int) Lineage {
	out := make(Lineage, len(path))
	for i, idx := range path {
		out[i] = c.labels[idx]
	}

	return out
}
