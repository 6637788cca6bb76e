package convolution

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/jt05610/spn/distribution"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultSteps = 1000
	// epsilon is the tail mass cut from distributions with infinite support.
	epsilon = 1e-4
)

var ErrNothingToConvolve = errors.New("nothing to convolve")

func bounds(d distribution.Distribution) (float64, float64) {
	lo, hi := d.Support()
	if math.IsInf(lo, -1) {
		lo = d.Quantile(epsilon)
	}
	if math.IsInf(hi, 1) {
		hi = d.Quantile(1 - epsilon)
	}
	return lo, hi
}

// masses discretizes d into n cells of width dx starting at lo. The first
// cell starts from the left limit of the CDF at lo, so an atom sitting on lo
// falls into it.
func masses(d distribution.Distribution, lo, dx float64, n int) []float64 {
	out := make([]float64, n)
	prev := d.Cumulative(math.Nextafter(lo, math.Inf(-1)))
	for i := range out {
		next := d.Cumulative(lo + float64(i+1)*dx)
		out[i] = math.Max(next-prev, 0)
		prev = next
	}
	return out
}

// gridSize rounds steps up to a power of two.
func gridSize(steps int) int {
	if steps <= 0 {
		steps = DefaultSteps
	}
	return 1 << bits.Len(uint(steps-1))
}

// Convolve returns the distribution of X+Y for independent X ~ f and Y ~ g.
//
// Both distributions are discretized into steps cells, rounded up to a power
// of two, over a common interval
// that contains both supports and zero. The cell masses are zero-padded to
// twice their length, so the FFT product is a linear rather than circular
// convolution. The result is a grid starting at twice the interval minimum.
func Convolve(f, g distribution.Distribution, steps int) (*distribution.Grid, error) {
	if f == nil || g == nil {
		return nil, distribution.ErrUndefinedDistribution
	}
	steps = gridSize(steps)
	flo, fhi := bounds(f)
	glo, ghi := bounds(g)
	lo := math.Min(math.Min(flo, glo), 0)
	hi := math.Max(math.Max(fhi, ghi), 0)
	if hi <= lo {
		hi = lo + 1
	}
	dx := (hi - lo) / float64(steps)

	n := 2 * steps
	a := make([]float64, n)
	b := make([]float64, n)
	copy(a, masses(f, lo, dx, steps))
	copy(b, masses(g, lo, dx, steps))

	fft := fourier.NewFFT(n)
	ca := fft.Coefficients(nil, a)
	cb := fft.Coefficients(nil, b)
	for i := range ca {
		ca[i] *= cb[i]
	}
	sum := fft.Sequence(nil, ca)
	floats.Scale(1/float64(n), sum)

	// Cell i of f and cell j of g are centred on lo+(i+0.5)dx and lo+(j+0.5)dx,
	// so their sum lands on grid point i+j+1 from 2lo.
	ys := make([]float64, n)
	for k := 0; k < n-1; k++ {
		ys[k+1] = math.Max(sum[k], 0) / dx
	}
	grid, err := distribution.NewGrid(2*lo, dx, ys)
	if err != nil {
		return nil, fmt.Errorf("convolve %s with %s: %w", f, g, err)
	}
	return grid, nil
}

// ConvolveAll folds Convolve over ds from the left. A single distribution is
// returned as is.
func ConvolveAll(steps int, ds ...distribution.Distribution) (distribution.Distribution, error) {
	if len(ds) == 0 {
		return nil, ErrNothingToConvolve
	}
	acc := ds[0]
	if acc == nil {
		return nil, distribution.ErrUndefinedDistribution
	}
	for _, d := range ds[1:] {
		g, err := Convolve(acc, d, steps)
		if err != nil {
			return nil, err
		}
		acc = g
	}
	return acc, nil
}
