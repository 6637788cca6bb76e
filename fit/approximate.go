package fit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultOrder = 32

	// samples is the size of the synthetic data set a conversion fits on.
	samples    = 4096
	gridPoints = 512
	tail       = 1e-4
)

// ApproximateAsExponentialMixture approximates d on [lower, upper] by a
// Bernstein polynomial of the given order in exp(-lambda*(x-lower)), which
// expands to a weighted sum of exponentials. lambda is ln(order)/(upper-lower),
// so the sample points lower+ln(order/k)/lambda span [lower, upper].
func ApproximateAsExponentialMixture(d distribution.Distribution, lower, upper float64, order int) (*distribution.Bernstein, error) {
	if d == nil {
		return nil, distribution.ErrUndefinedDistribution
	}
	if order < 2 {
		return nil, fmt.Errorf("%w: order must be at least 2, got %d", distribution.ErrInvalidParameter, order)
	}
	if !(upper > lower) || math.IsInf(upper, 0) || math.IsInf(lower, 0) {
		return nil, fmt.Errorf("%w: need finite lower < upper, got [%v, %v]", distribution.ErrInvalidParameter, lower, upper)
	}
	lambda := math.Log(float64(order)) / (upper - lower)
	weights := make([]float64, order)
	for k := 1; k <= order; k++ {
		w := d.Density(lower + math.Log(float64(order)/float64(k))/lambda)
		if math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		weights[k-1] = w
	}
	return distribution.NewBernsteinExponential(lower, lambda, weights)
}

func span(d distribution.Distribution) (float64, float64) {
	lo, hi := d.Support()
	if math.IsInf(lo, -1) {
		lo = d.Quantile(tail)
	}
	if math.IsInf(hi, 1) {
		hi = d.Quantile(1 - tail)
	}
	return lo, hi
}

// Convert returns a copy of t whose delay follows the family k, fitted to
// the current delay distribution. Parametric and empirical families are
// fitted on a fixed-seed sample, BernsteinExponential uses
// ApproximateAsExponentialMixture and Approximate tabulates the density.
func Convert(t *spn.Transition, k distribution.Kind) (*spn.Transition, error) {
	d := t.Distribution()
	if d == nil {
		return nil, &spn.TransitionError{Label: t.Label(), Err: distribution.ErrUndefinedDistribution}
	}
	if k == t.DistributionKind() {
		return t, nil
	}
	fail := func(err error) (*spn.Transition, error) {
		return nil, &spn.TransitionError{Label: t.Label(), Err: fmt.Errorf("convert %s to %s: %w", t.DistributionKind(), k, err)}
	}
	switch k {
	case distribution.Immediate:
		return t.AsImmediate(), nil
	case distribution.BernsteinExponential:
		lo, hi := span(d)
		b, err := ApproximateAsExponentialMixture(d, lo, hi, DefaultOrder)
		if err != nil {
			return fail(err)
		}
		return t.WithLaw(b), nil
	case distribution.Approximate:
		lo, hi := span(d)
		if !(hi > lo) {
			return fail(fmt.Errorf("%w: degenerate support", distribution.ErrInvalidParameter))
		}
		xs := floats.Span(make([]float64, gridPoints), lo, hi)
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = d.Density(x)
		}
		g, err := distribution.NewGrid(lo, xs[1]-xs[0], ys)
		if err != nil {
			return fail(err)
		}
		return t.WithLaw(g), nil
	case distribution.Undefined, distribution.Weibull, distribution.StudentT:
		return fail(distribution.ErrUnsupportedType)
	}
	rng := rand.New(rand.NewPCG(1, uint64(k)))
	obs := make([]float64, samples)
	for i := range obs {
		obs[i] = d.Sample(rng)
	}
	fitted, err := Fit(k, obs)
	if err != nil {
		return fail(err)
	}
	if params, ok := distribution.Parameters(fitted); ok && k.Parametric() {
		c, err := t.WithDistribution(k, params...)
		if err != nil {
			return fail(err)
		}
		return c, nil
	}
	return t.WithLaw(fitted), nil
}
