package forest

// unionFind is a disjoint-set structure over integer node ids with path
// compression and union by rank, used by the Kruskal edge selection.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}

	return uf
}

// find returns the set representative of u, compressing the path as it
// walks up (grandparent shortcutting, iterative to avoid deep recursion).
func (uf *unionFind) find(u int) int {
	for uf.parent[u] != u {
		uf.parent[u] = uf.parent[uf.parent[u]]
		u = uf.parent[u]
	}

	return u
}

// union merges the sets containing u and v; returns false when they were
// already in the same set.
func (uf *unionFind) union(u, v int) bool {
	ru, rv := uf.find(u), uf.find(v)
	if ru == rv {
		return false
	}
	if uf.rank[ru] < uf.rank[rv] {
		ru, rv = rv, ru
	}
	uf.parent[rv] = ru
	if uf.rank[ru] == uf.rank[rv] {
		uf.rank[ru]++
	}

	return true
}
