// Package forest builds the lineage topology: a minimum spanning forest
// over cluster centers plus one synthetic background node, and the
// root-to-leaf cluster paths (lineages) extracted from it.
//
// What & Why
//
//   - The input is the (k+1)×(k+1) symmetric distance matrix produced by
//     cluster.Geometry.DistanceMatrix, whose final row/column is the
//     background node at fixed distance omega/2 from every real cluster.
//     Edge selection is Kruskal's: ascending weight with union-find cycle
//     avoidance and a stable sort, so ties break deterministically with
//     real-to-real edges preferred over background edges.
//
//   - Because every cluster can reach the background for omega/2, no real
//     edge longer than omega ever enters the tree; deleting the background
//     node afterwards therefore yields a forest whose components are the
//     natural groups separated by gaps larger than omega. The background
//     node is internal only and never appears in the output.
//
//   - Forced-leaf clusters (end clusters of a trajectory) are excluded from
//     the core tree and re-attached afterwards by their single cheapest
//     edge, guaranteeing final degree ≤ 1. Forced roots do not change the
//     tree; they only steer which root-to-leaf paths become lineages.
//
//   - Lineage extraction walks each component with ≥2 clusters. With a
//     forced root, every root-to-leaf path is emitted, excluding leaves
//     that are themselves other forced roots. Without one, every leaf is
//     tried as candidate root and the candidate maximizing the mean path
//     length wins; ties break on the lexicographically smallest label.
//     Components with a single cluster yield no lineage.
//
// All results are deterministic for identical inputs.
package forest
