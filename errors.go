package traject

import "errors"

var (
	// ErrNoPoints indicates an empty embedding.
	ErrNoPoints = errors.New("traject: embedding has no points")

	// ErrRaggedEmbedding indicates embedding rows of unequal length.
	ErrRaggedEmbedding = errors.New("traject: embedding rows differ in dimension")

	// ErrLabelMismatch indicates that the number of labels (or weight rows)
	// differs from the number of embedding rows.
	ErrLabelMismatch = errors.New("traject: labels and embedding disagree on point count")
)
