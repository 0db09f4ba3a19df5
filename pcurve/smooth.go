package pcurve

import "math"

// Smoother fits y ~ t under non-negative weights w and returns fitted
// values at eval. t is sorted ascending; len(t)==len(y)==len(w).
// Implementations return ErrTooFewPoints when the data cannot support a
// fit (fewer than two distinct positions with positive weight).
type Smoother func(t, y, w, eval []float64) ([]float64, error)

// denomEps guards the weighted-least-squares denominator against collapse
// when all kernel mass sits on (numerically) one position.
const denomEps = 1e-12

// LocalLinear returns a tricube-kernel weighted local linear regression
// smoother with bandwidth span·(t_max − t_min). span must lie in (0, 1];
// out-of-domain values panic (programmer error, as with option
// constructors elsewhere in this module).
//
// At every eval point the kernel window is widened (doubling) until it
// covers at least two distinct positions, so the fit is defined across the
// whole pseudotime range; if the data itself has fewer than two distinct
// positive-weight positions, ErrTooFewPoints is returned.
func LocalLinear(span float64) Smoother {
	if math.IsNaN(span) || span <= 0 || span > 1 {
		panic("pcurve: LocalLinear: span must be in (0,1]")
	}

	return func(t, y, w, eval []float64) ([]float64, error) {
		if err := checkSupport(t, w); err != nil {
			return nil, err
		}
		h0 := span * (t[len(t)-1] - t[0])

		out := make([]float64, len(eval))
		for e, te := range eval {
			h := h0
			var fit float64
			for {
				var sw, st, sy, stt, sty float64
				distinct := newSupportTracker()
				for i := range t {
					d := math.Abs(t[i] - te)
					if d >= h || w[i] <= 0 {
						continue
					}
					u := d / h
					k := w[i] * cube(1-u*u*u)
					if k <= 0 {
						continue
					}
					distinct.add(t[i])
					sw += k
					st += k * t[i]
					sy += k * y[i]
					stt += k * t[i] * t[i]
					sty += k * t[i] * y[i]
				}
				if !distinct.twoDistinct {
					h *= 2 // widen until the window has real support

					continue
				}
				denom := sw*stt - st*st
				if denom <= denomEps*sw*stt || denom <= 0 {
					fit = sy / sw // degenerate spread: weighted mean
				} else {
					b := (sw*sty - st*sy) / denom
					a := (sy - b*st) / sw
					fit = a + b*te
				}

				break
			}
			out[e] = fit
		}

		return out, nil
	}
}

// MovingAverage returns a tricube-kernel weighted running mean with
// bandwidth span·(t_max − t_min); a cruder, more local alternative to
// LocalLinear. span must lie in (0, 1] (panics otherwise).
func MovingAverage(span float64) Smoother {
	if math.IsNaN(span) || span <= 0 || span > 1 {
		panic("pcurve: MovingAverage: span must be in (0,1]")
	}

	return func(t, y, w, eval []float64) ([]float64, error) {
		if err := checkSupport(t, w); err != nil {
			return nil, err
		}
		h0 := span * (t[len(t)-1] - t[0])

		out := make([]float64, len(eval))
		for e, te := range eval {
			h := h0
			for {
				var sw, sy float64
				for i := range t {
					d := math.Abs(t[i] - te)
					if d >= h || w[i] <= 0 {
						continue
					}
					u := d / h
					k := w[i] * cube(1-u*u*u)
					sw += k
					sy += k * y[i]
				}
				if sw <= 0 {
					h *= 2

					continue
				}
				out[e] = sy / sw

				break
			}
		}

		return out, nil
	}
}

// checkSupport verifies there are at least two distinct positive-weight
// positions, the minimum any scatterplot smoother here requires.
func checkSupport(t, w []float64) error {
	tr := newSupportTracker()
	for i := range t {
		if w[i] > 0 {
			tr.add(t[i])
		}
		if tr.twoDistinct {
			return nil
		}
	}

	return ErrTooFewPoints
}

// supportTracker detects whether at least two distinct values were seen.
type supportTracker struct {
	seen        bool
	first       float64
	twoDistinct bool
}

func newSupportTracker() *supportTracker { return &supportTracker{} }

func (s *supportTracker) add(v float64) {
	if !s.seen {
		s.seen, s.first = true, v

		return
	}
	if v != s.first {
		s.twoDistinct = true
	}
}

func cube(x float64) float64 { return x * x * x }
