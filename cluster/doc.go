// Package cluster derives per-cluster geometry from an embedding and a
// (possibly soft) clustering: centers, weighted covariances, and the
// pairwise cluster-to-cluster distance matrix consumed by the spanning
// forest builder.
//
// What & Why
//
//   - Hard labels and soft weight matrices are unified into a single
//     representation, Weights: one row per point, one column per cluster,
//     hard labels becoming one-hot rows. Every downstream component works
//     on Weights alone, so there is exactly one code path.
//
//   - The reserved Unclustered label marks points that carry no cluster
//     assignment; such points contribute to no center, covariance or
//     distance, and belong to no lineage.
//
//   - The default cluster distance is a squared Mahalanobis-like form using
//     the pooled covariance of the two clusters. When the smaller cluster
//     has fewer assigned points than embedding dimensions, the pooled
//     covariance is reduced to its diagonal so the distance stays
//     well-conditioned. Callers may substitute any symmetric DistanceFunc.
//
//   - DistanceMatrix appends one synthetic background node at fixed
//     distance omega/2 from every real cluster. In the spanning forest this
//     caps the longest usable real edge at omega and lets natural gaps
//     larger than omega split the forest into independent trees.
//
// All computations are pure and deterministic: cluster columns are held in
// ascending label order and every loop runs in a fixed order.
package cluster
