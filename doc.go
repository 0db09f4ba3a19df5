// Package traject infers branching developmental trajectories ("lineages")
// from points in a low-dimensional embedding plus a hard or soft
// clustering. It orders observations along continuous, possibly branching
// paths: one smooth principal curve per lineage, with a pseudotime and a
// lineage weight for every observation.
//
// What & Why
//
//   - Topology first: cluster centers and pooled covariances feed a
//     constrained minimum spanning forest (with a synthetic background
//     node capping edge length at omega); root-to-leaf paths of the
//     forest are the lineages.
//   - Curves second: simultaneous principal curves are fitted per lineage,
//     with reweighting and reassignment of points shared between lineages
//     and shrinkage forcing curves to coincide near their common root.
//   - The embedding and the clustering are consumed as given, fixed
//     inputs: traject performs no dimensionality reduction and no
//     clustering.
//
// Everything is organized under three subpackages plus this entry point:
//
//	cluster/ — centers, covariances, cluster distance matrix, weight matrix
//	forest/  — constrained minimum spanning forest & lineage extraction
//	pcurve/  — simultaneous principal curve fitting
//
// Quick ASCII example — a "V" of three clusters:
//
//	      B       C
//	       \     /
//	        \   /
//	          A
//
// With start cluster A, traject finds two lineages, A→B and A→C, whose
// curves coincide near pseudotime 0 and diverge past the branch point.
//
// Typical usage:
//
//	traj, err := traject.Infer(points, labels,
//	    traject.WithStartClusters("A"))
//	if err != nil { ... }
//	pt := traj.Pseudotime() // n×L, NaN where a point is off-lineage
//
// All results are deterministic for identical inputs.
package traject
