package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const maxBins = 10000

// Hist is a histogram estimate of an empirical law. Values are uniform
// within each bin.
type Hist struct {
	obs   []float64
	width float64
	edges []float64
	mass  []float64
	cdf   []float64
}

var _ Distribution = (*Hist)(nil)

// NewHistogram fits a histogram to the observations. The slice is copied.
func NewHistogram(obs []float64) (*Hist, error) {
	sorted, err := snapshot(Histogram, obs, 1)
	if err != nil {
		return nil, err
	}
	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]
	span := hi - lo

	width := 2 * iqr(sorted) * math.Pow(float64(n), -1.0/3)
	if !(width > 0) {
		// Sturges
		width = span / (math.Ceil(math.Log2(float64(n))) + 1)
	}
	if !(width > 0) {
		width = math.Max(1e-6, math.Abs(lo)*1e-6)
		lo -= width / 2
		span = width
	}
	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	if bins > maxBins {
		bins = maxBins
		width = span / float64(bins)
	}

	h := &Hist{
		obs:   sorted,
		width: width,
		edges: make([]float64, bins+1),
		mass:  make([]float64, bins),
		cdf:   make([]float64, bins+1),
	}
	for i := range h.edges {
		h.edges[i] = lo + float64(i)*width
	}
	for _, x := range sorted {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		h.mass[i]++
	}
	for i := range h.mass {
		h.mass[i] /= float64(n)
		h.cdf[i+1] = h.cdf[i] + h.mass[i]
	}
	h.cdf[bins] = 1
	return h, nil
}

func (h *Hist) Kind() Kind { return Histogram }

// Observations returns a copy of the sorted observations the histogram was fit to.
func (h *Hist) Observations() []float64 {
	out := make([]float64, len(h.obs))
	copy(out, h.obs)
	return out
}

// Bins returns the number of bins.
func (h *Hist) Bins() int { return len(h.mass) }

func (h *Hist) bin(x float64) int {
	i := int((x - h.edges[0]) / h.width)
	if i >= len(h.mass) {
		i = len(h.mass) - 1
	}
	return i
}

func (h *Hist) Sample(rng *rand.Rand) float64 {
	return h.Quantile(rng.Float64())
}

func (h *Hist) Density(x float64) float64 {
	lo, hi := h.Support()
	if x < lo || x > hi {
		return 0
	}
	return h.mass[h.bin(x)] / h.width
}

func (h *Hist) Cumulative(x float64) float64 {
	lo, hi := h.Support()
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	i := h.bin(x)
	return h.cdf[i] + h.mass[i]*(x-h.edges[i])/h.width
}

func (h *Hist) Quantile(p float64) float64 {
	lo, hi := h.Support()
	if p <= 0 {
		return lo
	}
	if p >= 1 {
		return hi
	}
	j := sort.Search(len(h.cdf), func(k int) bool { return h.cdf[k] > p })
	if j == 0 {
		return lo
	}
	if j >= len(h.cdf) {
		return hi
	}
	i := j - 1
	return h.edges[i] + h.width*(p-h.cdf[i])/h.mass[i]
}

func (h *Hist) Support() (float64, float64) {
	return h.edges[0], h.edges[len(h.edges)-1]
}

func (h *Hist) Mean() float64 {
	var m float64
	for i, p := range h.mass {
		m += p * (h.edges[i] + h.width/2)
	}
	return m
}

func (h *Hist) Variance() float64 {
	var m2 float64
	for i, p := range h.mass {
		c := h.edges[i] + h.width/2
		m2 += p * (c*c + h.width*h.width/12)
	}
	m := h.Mean()
	return m2 - m*m
}

func (h *Hist) String() string {
	return fmt.Sprintf("histogram(observations=%d, bins=%d, width=%.4g)", len(h.obs), len(h.mass), h.width)
}

// snapshot validates and returns a sorted copy of obs.
func snapshot(k Kind, obs []float64, min int) ([]float64, error) {
	out := make([]float64, 0, len(obs))
	for _, x := range obs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, invalid(k, "observation %v is not finite", x)
		}
		out = append(out, x)
	}
	if len(out) < min {
		return nil, &DataError{Kind: k, Min: min, Got: len(out)}
	}
	sort.Float64s(out)
	return out, nil
}

func iqr(sorted []float64) float64 {
	return stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
}
