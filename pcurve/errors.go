package pcurve

import "errors"

var (
	// ErrNoLineages indicates that Fit was called with an empty lineage set.
	ErrNoLineages = errors.New("pcurve: no lineages to fit")

	// ErrTooFewPoints indicates a lineage with fewer member points (or fewer
	// distinct pseudotime positions) than the smoother requires. This is
	// fatal per lineage and reported with the lineage identified.
	ErrTooFewPoints = errors.New("pcurve: too few points for smoothing")

	// ErrBadOption indicates an invalid FitOptions field (non-positive
	// threshold, iteration cap < 1, stretch outside [0,2], unknown mode).
	ErrBadOption = errors.New("pcurve: invalid fit option")
)
