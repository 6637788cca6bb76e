package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

// Grid is a density known on an evenly spaced grid and linearly interpolated
// between grid points. Convolution results and log-spline fits are grids.
type Grid struct {
	kind   Kind
	x0, dx float64
	xs, ys []float64
	cdf    []float64
	pl     interp.PiecewiseLinear
	mean   float64
	vari   float64
}

var _ Distribution = (*Grid)(nil)

// NewGrid builds an approximate density from samples ys taken at x0, x0+dx, ...
// Negative samples are treated as zero and the result is normalised to unit mass.
func NewGrid(x0, dx float64, ys []float64) (*Grid, error) {
	return newGrid(Approximate, x0, dx, ys)
}

func newGrid(kind Kind, x0, dx float64, ys []float64) (*Grid, error) {
	if !(dx > 0) || math.IsInf(dx, 0) {
		return nil, invalid(kind, "grid spacing must be positive, got %v", dx)
	}
	if math.IsNaN(x0) || math.IsInf(x0, 0) {
		return nil, invalid(kind, "grid origin must be finite, got %v", x0)
	}
	if len(ys) < 2 {
		return nil, &DataError{Kind: kind, Min: 2, Got: len(ys)}
	}
	g := &Grid{
		kind: kind,
		x0:   x0,
		dx:   dx,
		xs:   make([]float64, len(ys)),
		ys:   make([]float64, len(ys)),
	}
	for i, y := range ys {
		g.xs[i] = x0 + float64(i)*dx
		if y > 0 && !math.IsInf(y, 0) {
			g.ys[i] = y
		}
	}
	area := integrate.Trapezoidal(g.xs, g.ys)
	if !(area > 0) {
		return nil, invalid(kind, "density has no mass")
	}
	floats.Scale(1/area, g.ys)

	g.cdf = make([]float64, len(ys))
	for i := 1; i < len(ys); i++ {
		g.cdf[i] = g.cdf[i-1] + 0.5*dx*(g.ys[i-1]+g.ys[i])
	}
	// absorb rounding so that the last grid point is exactly 1
	g.cdf[len(g.cdf)-1] = 1

	if err := g.pl.Fit(g.xs, g.ys); err != nil {
		return nil, fmt.Errorf("grid interpolation: %w", err)
	}

	moment := make([]float64, len(ys))
	for i, x := range g.xs {
		moment[i] = x * g.ys[i]
	}
	g.mean = integrate.Trapezoidal(g.xs, moment)
	for i, x := range g.xs {
		d := x - g.mean
		moment[i] = d * d * g.ys[i]
	}
	g.vari = integrate.Trapezoidal(g.xs, moment)
	return g, nil
}

func (g *Grid) Kind() Kind { return g.kind }

// Points returns copies of the grid abscissae and normalised density values.
func (g *Grid) Points() ([]float64, []float64) {
	xs := make([]float64, len(g.xs))
	ys := make([]float64, len(g.ys))
	copy(xs, g.xs)
	copy(ys, g.ys)
	return xs, ys
}

// Step is the grid spacing.
func (g *Grid) Step() float64 { return g.dx }

func (g *Grid) Sample(rng *rand.Rand) float64 {
	return g.Quantile(rng.Float64())
}

func (g *Grid) Density(x float64) float64 {
	lo, hi := g.Support()
	if x < lo || x > hi {
		return 0
	}
	return g.pl.Predict(x)
}

func (g *Grid) Cumulative(x float64) float64 {
	lo, hi := g.Support()
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	i := int((x - g.x0) / g.dx)
	if i >= len(g.xs)-1 {
		i = len(g.xs) - 2
	}
	t := x - g.xs[i]
	y0, y1 := g.ys[i], g.ys[i+1]
	return math.Min(1, g.cdf[i]+y0*t+(y1-y0)*t*t/(2*g.dx))
}

func (g *Grid) Quantile(p float64) float64 {
	lo, hi := g.Support()
	if p <= 0 {
		return lo
	}
	if p >= 1 {
		return hi
	}
	// first grid point whose cumulative mass exceeds p
	j := sort.Search(len(g.cdf), func(k int) bool { return g.cdf[k] > p })
	if j == 0 {
		return lo
	}
	if j >= len(g.cdf) {
		return hi
	}
	i := j - 1
	y0, y1 := g.ys[i], g.ys[i+1]
	rest := p - g.cdf[i]
	a := (y1 - y0) / (2 * g.dx)
	var t float64
	switch {
	case math.Abs(a) < 1e-12:
		if y0 > 0 {
			t = rest / y0
		} else {
			t = g.dx / 2
		}
	default:
		disc := y0*y0 + 4*a*rest
		if disc < 0 {
			disc = 0
		}
		t = (-y0 + math.Sqrt(disc)) / (2 * a)
	}
	t = math.Max(0, math.Min(g.dx, t))
	return g.xs[i] + t
}

func (g *Grid) Support() (float64, float64) {
	return g.xs[0], g.xs[len(g.xs)-1]
}

func (g *Grid) Mean() float64 { return g.mean }

func (g *Grid) Variance() float64 { return g.vari }

func (g *Grid) String() string {
	lo, hi := g.Support()
	return fmt.Sprintf("%s(points=%d, support=[%.4g, %.4g], mean=%.4g)", g.kind, len(g.xs), lo, hi, g.mean)
}
