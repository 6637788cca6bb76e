package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bernstein approximates a density on [lower, inf) by a Bernstein polynomial
// in z = exp(-lambda*(x-lower)). Expanding the polynomial yields a finite
// weighted sum of exponential terms, see Terms.
//
// In the z domain the law is a mixture of Beta(k, n-k+1) components, which
// gives closed forms for sampling, the cumulative and the moments.
type Bernstein struct {
	lower, lambda float64
	weights       []float64
	mix           []float64
	cum           []float64
	betas         []distuv.Beta
	mean, vari    float64
}

var _ Distribution = (*Bernstein)(nil)

// ExpTerm is one term c*exp(-rate*(x-lower)) of the expanded density.
type ExpTerm struct {
	Rate        float64
	Coefficient float64
}

// NewBernsteinExponential builds the approximation from the density values
// weights[k-1] = f(lower + ln(n/k)/lambda) for k = 1..n.
func NewBernsteinExponential(lower, lambda float64, weights []float64) (*Bernstein, error) {
	if math.IsNaN(lower) || math.IsInf(lower, 0) {
		return nil, invalid(BernsteinExponential, "lower bound must be finite, got %v", lower)
	}
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return nil, invalid(BernsteinExponential, "lambda must be positive, got %v", lambda)
	}
	n := len(weights)
	if n < 1 {
		return nil, &DataError{Kind: BernsteinExponential, Min: 1, Got: 0}
	}
	b := &Bernstein{
		lower:   lower,
		lambda:  lambda,
		weights: make([]float64, n),
		mix:     make([]float64, n),
		cum:     make([]float64, n),
		betas:   make([]distuv.Beta, n),
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, invalid(BernsteinExponential, "weight %d is %v", i+1, w)
		}
		k := float64(i + 1)
		b.weights[i] = w
		b.mix[i] = w / k
		b.betas[i] = distuv.Beta{Alpha: k, Beta: float64(n) - k + 1}
	}
	total := floats.Sum(b.mix)
	if !(total > 0) {
		return nil, invalid(BernsteinExponential, "weights have no mass")
	}
	floats.Scale(1/total, b.mix)
	floats.CumSum(b.cum, b.mix)
	b.cum[n-1] = 1

	// E[-ln Z] and Var[-ln Z] for Z ~ Beta(k, n-k+1) with integer arguments
	// reduce to harmonic sums.
	var m1, m2 float64
	for i, p := range b.mix {
		if p == 0 {
			continue
		}
		k := i + 1
		mu := harmonic(n) - harmonic(k-1)
		v := harmonic2(n) - harmonic2(k-1)
		m1 += p * mu
		m2 += p * (v + mu*mu)
	}
	b.mean = lower + m1/lambda
	b.vari = (m2 - m1*m1) / (lambda * lambda)
	return b, nil
}

func harmonic(n int) float64 {
	var s float64
	for j := 1; j <= n; j++ {
		s += 1 / float64(j)
	}
	return s
}

func harmonic2(n int) float64 {
	var s float64
	for j := 1; j <= n; j++ {
		s += 1 / float64(j*j)
	}
	return s
}

func (b *Bernstein) Kind() Kind { return BernsteinExponential }

// Order is the degree of the Bernstein polynomial.
func (b *Bernstein) Order() int { return len(b.weights) }

func (b *Bernstein) Lambda() float64 { return b.lambda }

func (b *Bernstein) z(x float64) float64 {
	return math.Exp(-b.lambda * (x - b.lower))
}

func (b *Bernstein) Sample(rng *rand.Rand) float64 {
	i := sort.SearchFloat64s(b.cum, rng.Float64())
	if i >= len(b.cum) {
		i = len(b.cum) - 1
	}
	z := b.betas[i].Quantile(rng.Float64())
	if z <= 0 {
		z = math.SmallestNonzeroFloat64
	}
	return b.lower - math.Log(z)/b.lambda
}

func (b *Bernstein) Density(x float64) float64 {
	if x < b.lower {
		return 0
	}
	z := b.z(x)
	var f float64
	for i, p := range b.mix {
		if p == 0 {
			continue
		}
		f += p * b.betas[i].Prob(z)
	}
	return f * b.lambda * z
}

func (b *Bernstein) Cumulative(x float64) float64 {
	if x <= b.lower {
		return 0
	}
	z := b.z(x)
	var c float64
	for i, p := range b.mix {
		if p == 0 {
			continue
		}
		c += p * (1 - b.betas[i].CDF(z))
	}
	return math.Max(0, math.Min(1, c))
}

func (b *Bernstein) Quantile(p float64) float64 {
	if p <= 0 {
		return b.lower
	}
	if p >= 1 {
		return math.Inf(1)
	}
	hi := b.lower + 1/b.lambda
	for b.Cumulative(hi) < p && !math.IsInf(hi, 0) {
		hi = b.lower + 2*(hi-b.lower)
	}
	return bisect(b.Cumulative, p, b.lower, hi)
}

func (b *Bernstein) Support() (float64, float64) { return b.lower, math.Inf(1) }

func (b *Bernstein) Mean() float64 { return b.mean }

func (b *Bernstein) Variance() float64 { return b.vari }

// Terms expands the density into sum_m c_m exp(-m*lambda*(x-lower)), m = 1..n.
// The coefficients alternate in sign and lose precision for large orders.
func (b *Bernstein) Terms() []ExpTerm {
	n := len(b.weights)
	// density = lambda * sum_k mix_k * k*C(n,k) z^k (1-z)^(n-k)
	coef := make([]float64, n+1)
	for i, p := range b.mix {
		if p == 0 {
			continue
		}
		k := i + 1
		base := b.lambda * p * float64(k) * binomial(n, k)
		for j := 0; j <= n-k; j++ {
			c := base * binomial(n-k, j)
			if j%2 == 1 {
				c = -c
			}
			coef[k+j] += c
		}
	}
	terms := make([]ExpTerm, 0, n)
	for m := 1; m <= n; m++ {
		terms = append(terms, ExpTerm{Rate: float64(m) * b.lambda, Coefficient: coef[m]})
	}
	return terms
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	a, _ := math.Lgamma(float64(n + 1))
	c, _ := math.Lgamma(float64(k + 1))
	d, _ := math.Lgamma(float64(n - k + 1))
	return math.Round(math.Exp(a - c - d))
}

func (b *Bernstein) String() string {
	return fmt.Sprintf("bernstein-exponential(order=%d, lower=%.4g, lambda=%.4g)", len(b.weights), b.lower, b.lambda)
}
