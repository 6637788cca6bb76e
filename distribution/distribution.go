// Package distribution implements the delay laws attached to timed transitions.
//
// Every family satisfies Distribution. Sampling always draws from the
// generator passed by the caller so that runs can be reproduced from a seed.
package distribution

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Kind names a distribution family.
type Kind int

const (
	Undefined Kind = iota
	Immediate
	Exponential
	Normal
	LogNormal
	Gamma
	Beta
	Uniform
	Weibull
	StudentT
	Histogram
	GaussianKernel
	LogSpline
	Deterministic
	BernsteinExponential
	Approximate
)

var kindNames = map[Kind]string{
	Undefined:            "undefined",
	Immediate:            "immediate",
	Exponential:          "exponential",
	Normal:               "normal",
	LogNormal:            "lognormal",
	Gamma:                "gamma",
	Beta:                 "beta",
	Uniform:              "uniform",
	Weibull:              "weibull",
	StudentT:             "student-t",
	Histogram:            "histogram",
	GaussianKernel:       "gaussian-kernel",
	LogSpline:            "log-spline",
	Deterministic:        "deterministic",
	BernsteinExponential: "bernstein-exponential",
	Approximate:          "approximate",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Parametric reports whether the family is described by a fixed parameter vector.
func (k Kind) Parametric() bool {
	switch k {
	case Exponential, Normal, LogNormal, Gamma, Beta, Uniform, Weibull, StudentT, Deterministic:
		return true
	}
	return false
}

// Empirical reports whether the family is fit from observations.
func (k Kind) Empirical() bool {
	return k == Histogram || k == GaussianKernel || k == LogSpline
}

// ParseKind parses the names produced by Kind.String. A few common aliases
// are accepted as well.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none":
		return Undefined, nil
	case "dirac", "delta", "dirac-delta":
		return Deterministic, nil
	case "kernel", "gaussian_kernel":
		return GaussianKernel, nil
	case "logspline", "log_spline":
		return LogSpline, nil
	case "studentt", "student_t", "t":
		return StudentT, nil
	case "zero":
		return Immediate, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return Undefined, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Distribution is a real valued probability law.
type Distribution interface {
	Kind() Kind
	// Sample draws one value using rng.
	Sample(rng *rand.Rand) float64
	// Density is the probability density at x.
	Density(x float64) float64
	// Cumulative is P(X <= x).
	Cumulative(x float64) float64
	// Quantile is the inverse of Cumulative for p in [0, 1].
	Quantile(p float64) float64
	// Support returns the bounds outside of which the density is zero.
	// Unbounded sides are reported as infinities.
	Support() (lo, hi float64)
	// Mean returns NaN when the mean is not defined.
	Mean() float64
	// Variance returns NaN when the variance is not defined.
	Variance() float64
	String() string
}

// Parameters returns the parameter vector that rebuilds d with New, when d
// is parametric.
func Parameters(d Distribution) ([]float64, bool) {
	p, ok := d.(interface{ Parameters() []float64 })
	if !ok {
		return nil, false
	}
	return p.Parameters(), true
}
