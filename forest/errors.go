package forest

import "errors"

var (
	// ErrBadMatrix indicates a malformed distance matrix: not square, not
	// (k+1)×(k+1) for k labels, asymmetric, or containing NaN/negative
	// entries. +Inf entries are legal ("no usable edge").
	ErrBadMatrix = errors.New("forest: invalid distance matrix")

	// ErrNoClusters indicates that fewer than one real cluster was given.
	ErrNoClusters = errors.New("forest: at least one cluster required")

	// ErrUnknownLabel indicates a constraint referencing a label that is not
	// among the clusters.
	ErrUnknownLabel = errors.New("forest: unknown cluster label")

	// ErrConstraintConflict indicates contradictory constraints: a cluster
	// forced to be both a root and a leaf, or every cluster forced to be a
	// leaf (no possible root). This is a configuration error and surfaces
	// before any fitting work.
	ErrConstraintConflict = errors.New("forest: contradictory root/leaf constraints")
)
