// Package cluster: sentinel error set.
// All operations return these sentinels (possibly wrapped with context via
// fmt.Errorf("...: %w", ErrX)); tests match them with errors.Is. Panics are
// reserved for programmer errors in private helpers.

package cluster

import "errors"

var (
	// ErrEmptyEmbedding indicates that the embedding has no points or no
	// coordinate dimensions.
	ErrEmptyEmbedding = errors.New("cluster: embedding is empty")

	// ErrDimensionMismatch indicates mismatched dimensions: the number of
	// weight rows differs from the number of embedding rows, or a weight row
	// has the wrong width.
	ErrDimensionMismatch = errors.New("cluster: weights and embedding disagree on point count")

	// ErrNoClusters indicates that fewer than one cluster was provided.
	ErrNoClusters = errors.New("cluster: at least one cluster required")

	// ErrBadWeight indicates a weight outside [0,1] or a non-finite weight.
	ErrBadWeight = errors.New("cluster: weights must be finite and within [0,1]")

	// ErrDuplicateLabel indicates a repeated cluster label in a soft weight
	// header, or use of the reserved Unclustered label as a cluster name.
	ErrDuplicateLabel = errors.New("cluster: duplicate or reserved cluster label")

	// ErrUnknownLabel indicates a reference to a cluster label that is not
	// part of the weight matrix.
	ErrUnknownLabel = errors.New("cluster: unknown cluster label")

	// ErrEmptyCluster indicates a cluster whose total assignment weight is
	// zero, so no center or covariance can be computed for it.
	ErrEmptyCluster = errors.New("cluster: cluster has no assigned points")

	// ErrBadOmega indicates an invalid background-node parameter
	// (omega must be positive; +Inf is allowed and is the default).
	ErrBadOmega = errors.New("cluster: omega must be positive")

	// ErrDegenerateCovariance indicates a covariance too degenerate for the
	// requested operation (e.g. a zero variance in every direction when a
	// principal direction was requested).
	ErrDegenerateCovariance = errors.New("cluster: degenerate covariance")
)
