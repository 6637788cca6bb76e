// Package fit estimates delay distributions from observed durations and
// approximates known distributions by other families.
package fit

import (
	"fmt"
	"math"

	"github.com/jt05610/spn/distribution"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// minimum is the number of observations each parametric estimator needs.
var minimum = map[distribution.Kind]int{
	distribution.Exponential:   1,
	distribution.Deterministic: 1,
	distribution.Normal:        2,
	distribution.LogNormal:     2,
	distribution.Gamma:         2,
	distribution.Beta:          2,
	distribution.Uniform:       2,
}

// Observations drops NaN values from durations and checks that the rest
// are finite, and non-negative when positive is set.
func Observations(durations []float64, positive bool) ([]float64, error) {
	out := make([]float64, 0, len(durations))
	for i, d := range durations {
		switch {
		case math.IsNaN(d):
			continue
		case math.IsInf(d, 0):
			return nil, fmt.Errorf("%w: observation %d is %v", distribution.ErrInvalidParameter, i, d)
		case positive && d < 0:
			return nil, fmt.Errorf("%w: observation %d is negative (%v)", distribution.ErrInvalidParameter, i, d)
		}
		out = append(out, d)
	}
	return out, nil
}

// Fit estimates a distribution of kind k from observations. Parametric
// families use maximum likelihood where it has a closed form or a cheap
// solution and the method of moments otherwise; empirical kinds are built
// directly from the observations.
func Fit(k distribution.Kind, observations []float64) (distribution.Distribution, error) {
	obs, err := Observations(observations, k == distribution.Exponential || k == distribution.Gamma)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", k, err)
	}
	if need, ok := minimum[k]; ok && len(obs) < need {
		return nil, &distribution.DataError{Kind: k, Min: need, Got: len(obs)}
	}
	switch k {
	case distribution.Immediate:
		return distribution.NewImmediate(), nil
	case distribution.Deterministic:
		return distribution.New(k, stat.Mean(obs, nil))
	case distribution.Exponential:
		mean := stat.Mean(obs, nil)
		if !(mean > 0) {
			return nil, fmt.Errorf("%w: exponential fit needs a positive mean, got %v", distribution.ErrInvalidParameter, mean)
		}
		return distribution.New(k, 1/mean)
	case distribution.Normal:
		mean, sd := stat.MeanStdDev(obs, nil)
		return distribution.New(k, mean, sd)
	case distribution.LogNormal:
		logs := make([]float64, len(obs))
		for i, x := range obs {
			if !(x > 0) {
				return nil, fmt.Errorf("%w: lognormal fit needs positive observations, got %v", distribution.ErrInvalidParameter, x)
			}
			logs[i] = math.Log(x)
		}
		mu, sigma := stat.MeanStdDev(logs, nil)
		return distribution.New(k, mu, sigma)
	case distribution.Gamma:
		shape, scale := gamma(obs)
		return distribution.New(k, shape, scale)
	case distribution.Beta:
		for _, x := range obs {
			if x < 0 || x > 1 {
				return nil, fmt.Errorf("%w: beta fit needs observations in [0, 1], got %v", distribution.ErrInvalidParameter, x)
			}
		}
		mean, variance := stat.MeanVariance(obs, nil)
		common := mean*(1-mean)/variance - 1
		return distribution.New(k, mean*common, (1-mean)*common)
	case distribution.Uniform:
		return distribution.New(k, floats.Min(obs), floats.Max(obs))
	case distribution.Histogram, distribution.GaussianKernel, distribution.LogSpline:
		return distribution.New(k, obs...)
	default:
		return nil, fmt.Errorf("%w: cannot fit %s", distribution.ErrUnsupportedType, k)
	}
}

// gamma returns the maximum likelihood shape and scale. The shape solves
// ln(a) - digamma(a) = ln(mean) - mean(ln x); data containing zeros fall
// back to the method of moments.
func gamma(obs []float64) (shape, scale float64) {
	mean, variance := stat.MeanVariance(obs, nil)
	meanLog := 0.0
	for _, x := range obs {
		if x == 0 {
			return mean * mean / variance, variance / mean
		}
		meanLog += math.Log(x)
	}
	meanLog /= float64(len(obs))
	s := math.Log(mean) - meanLog
	if !(s > 0) {
		return mean * mean / variance, variance / mean
	}
	lo, hi := math.Log(1e-8), math.Log(1e8)
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		a := math.Exp(mid)
		if math.Log(a)-mathext.Digamma(a) > s {
			lo = mid
		} else {
			hi = mid
		}
	}
	shape = math.Exp(0.5 * (lo + hi))
	return shape, mean / shape
}
