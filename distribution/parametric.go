package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// univariate is the subset of the gonum distuv API the parametric families use.
type univariate interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
	Mean() float64
	Variance() float64
}

var (
	_ univariate = distuv.Exponential{}
	_ univariate = distuv.Normal{}
	_ univariate = distuv.LogNormal{}
	_ univariate = distuv.Gamma{}
	_ univariate = distuv.Beta{}
	_ univariate = distuv.Uniform{}
)

// Parametric is a distribution family described by a fixed parameter vector.
type Parametric struct {
	kind   Kind
	params []float64
	names  []string
	dist   univariate
	lo, hi float64
	draw   func(rng *rand.Rand) float64
}

var _ Distribution = (*Parametric)(nil)

func (p *Parametric) Kind() Kind { return p.kind }

func (p *Parametric) Parameters() []float64 {
	out := make([]float64, len(p.params))
	copy(out, p.params)
	return out
}

func (p *Parametric) Sample(rng *rand.Rand) float64 {
	if p.draw != nil {
		return p.draw(rng)
	}
	return p.dist.Quantile(rng.Float64())
}

func (p *Parametric) Density(x float64) float64 {
	if x < p.lo || x > p.hi {
		return 0
	}
	return p.dist.Prob(x)
}

func (p *Parametric) Cumulative(x float64) float64 {
	if x <= p.lo {
		return 0
	}
	if x >= p.hi {
		return 1
	}
	return p.dist.CDF(x)
}

func (p *Parametric) Quantile(q float64) float64 {
	switch {
	case q <= 0:
		return p.lo
	case q >= 1:
		return p.hi
	}
	return p.dist.Quantile(q)
}

func (p *Parametric) Support() (float64, float64) { return p.lo, p.hi }

func (p *Parametric) Mean() float64 { return p.dist.Mean() }

func (p *Parametric) Variance() float64 { return p.dist.Variance() }

func (p *Parametric) String() string {
	parts := make([]string, len(p.params))
	for i, v := range p.params {
		parts[i] = p.names[i] + "=" + strconv.FormatFloat(v, 'g', 6, 64)
	}
	return fmt.Sprintf("%s(%s)", p.kind, strings.Join(parts, ", "))
}

// NewExponential returns an exponential law with the given rate.
func NewExponential(rate float64) (*Parametric, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, invalid(Exponential, "rate must be positive, got %v", rate)
	}
	return &Parametric{
		kind:   Exponential,
		params: []float64{rate},
		names:  []string{"rate"},
		dist:   distuv.Exponential{Rate: rate},
		lo:     0,
		hi:     math.Inf(1),
		draw: func(rng *rand.Rand) float64 {
			return rng.ExpFloat64() / rate
		},
	}, nil
}

// NewNormal returns a normal law with the given mean and standard deviation.
func NewNormal(mean, sd float64) (*Parametric, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, invalid(Normal, "mean must be finite, got %v", mean)
	}
	if !(sd > 0) || math.IsInf(sd, 0) {
		return nil, invalid(Normal, "standard deviation must be positive, got %v", sd)
	}
	return &Parametric{
		kind:   Normal,
		params: []float64{mean, sd},
		names:  []string{"mean", "sd"},
		dist:   distuv.Normal{Mu: mean, Sigma: sd},
		lo:     math.Inf(-1),
		hi:     math.Inf(1),
		draw: func(rng *rand.Rand) float64 {
			return rng.NormFloat64()*sd + mean
		},
	}, nil
}

// NewLogNormal returns a law whose logarithm is normal with mean mu and
// standard deviation sigma.
func NewLogNormal(mu, sigma float64) (*Parametric, error) {
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return nil, invalid(LogNormal, "mu must be finite, got %v", mu)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, invalid(LogNormal, "sigma must be positive, got %v", sigma)
	}
	return &Parametric{
		kind:   LogNormal,
		params: []float64{mu, sigma},
		names:  []string{"mu", "sigma"},
		dist:   distuv.LogNormal{Mu: mu, Sigma: sigma},
		lo:     0,
		hi:     math.Inf(1),
		draw: func(rng *rand.Rand) float64 {
			return math.Exp(rng.NormFloat64()*sigma + mu)
		},
	}, nil
}

// NewGamma returns a gamma law with the given shape and scale.
func NewGamma(shape, scale float64) (*Parametric, error) {
	if !(shape > 0) || math.IsInf(shape, 0) {
		return nil, invalid(Gamma, "shape must be positive, got %v", shape)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, invalid(Gamma, "scale must be positive, got %v", scale)
	}
	return &Parametric{
		kind:   Gamma,
		params: []float64{shape, scale},
		names:  []string{"shape", "scale"},
		// distuv parameterises the gamma law by rate.
		dist: distuv.Gamma{Alpha: shape, Beta: 1 / scale},
		lo:   0,
		hi:   math.Inf(1),
	}, nil
}

// NewBeta returns a beta law on [0, 1].
func NewBeta(alpha, beta float64) (*Parametric, error) {
	if !(alpha > 0) || math.IsInf(alpha, 0) {
		return nil, invalid(Beta, "alpha must be positive, got %v", alpha)
	}
	if !(beta > 0) || math.IsInf(beta, 0) {
		return nil, invalid(Beta, "beta must be positive, got %v", beta)
	}
	return &Parametric{
		kind:   Beta,
		params: []float64{alpha, beta},
		names:  []string{"alpha", "beta"},
		dist:   distuv.Beta{Alpha: alpha, Beta: beta},
		lo:     0,
		hi:     1,
	}, nil
}

// NewUniform returns a uniform law on [lower, upper].
func NewUniform(lower, upper float64) (*Parametric, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, invalid(Uniform, "bounds must be finite, got [%v, %v]", lower, upper)
	}
	if !(lower < upper) {
		return nil, invalid(Uniform, "lower bound %v must be below upper bound %v", lower, upper)
	}
	return &Parametric{
		kind:   Uniform,
		params: []float64{lower, upper},
		names:  []string{"lower", "upper"},
		dist:   distuv.Uniform{Min: lower, Max: upper},
		lo:     lower,
		hi:     upper,
		draw: func(rng *rand.Rand) float64 {
			return lower + (upper-lower)*rng.Float64()
		},
	}, nil
}
