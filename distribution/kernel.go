package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// kernelReach is the number of bandwidths beyond which a kernel contributes nothing.
const kernelReach = 8

// Kernel is a Gaussian kernel density estimate.
type Kernel struct {
	obs       []float64
	bandwidth float64
	mean      float64
	variance  float64
}

var _ Distribution = (*Kernel)(nil)

// NewKernel fits a Gaussian kernel density to the observations using
// Silverman's rule of thumb for the bandwidth. The slice is copied.
func NewKernel(obs []float64) (*Kernel, error) {
	sorted, err := snapshot(GaussianKernel, obs, 1)
	if err != nil {
		return nil, err
	}
	n := float64(len(sorted))
	mean, variance := stat.PopMeanVariance(sorted, nil)
	sd := math.Sqrt(variance)

	spread := sd
	if r := iqr(sorted) / 1.34; r > 0 && r < spread {
		spread = r
	}
	bw := 0.9 * spread * math.Pow(n, -0.2)
	if !(bw > 0) {
		bw = math.Max(1e-6, math.Abs(mean)*1e-6)
	}
	return &Kernel{
		obs:       sorted,
		bandwidth: bw,
		mean:      mean,
		variance:  variance,
	}, nil
}

func (k *Kernel) Kind() Kind { return GaussianKernel }

func (k *Kernel) Bandwidth() float64 { return k.bandwidth }

// Observations returns a copy of the sorted observations the kernel was fit to.
func (k *Kernel) Observations() []float64 {
	out := make([]float64, len(k.obs))
	copy(out, k.obs)
	return out
}

func (k *Kernel) Sample(rng *rand.Rand) float64 {
	return k.obs[rng.IntN(len(k.obs))] + k.bandwidth*rng.NormFloat64()
}

// window returns the index range of observations within reach of x.
func (k *Kernel) window(x float64) (int, int) {
	reach := kernelReach * k.bandwidth
	i := sort.SearchFloat64s(k.obs, x-reach)
	j := sort.SearchFloat64s(k.obs, x+reach)
	return i, j
}

func (k *Kernel) Density(x float64) float64 {
	i, j := k.window(x)
	var sum float64
	for _, o := range k.obs[i:j] {
		z := (x - o) / k.bandwidth
		sum += math.Exp(-0.5 * z * z)
	}
	return sum / (float64(len(k.obs)) * k.bandwidth * math.Sqrt(2*math.Pi))
}

func (k *Kernel) Cumulative(x float64) float64 {
	lo, hi := k.Support()
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	i, j := k.window(x)
	// observations left of the window are fully counted
	sum := float64(i)
	for _, o := range k.obs[i:j] {
		sum += distuv.UnitNormal.CDF((x - o) / k.bandwidth)
	}
	return math.Min(1, sum/float64(len(k.obs)))
}

func (k *Kernel) Quantile(p float64) float64 {
	lo, hi := k.Support()
	return bisect(k.Cumulative, p, lo, hi)
}

func (k *Kernel) Support() (float64, float64) {
	reach := kernelReach * k.bandwidth
	return k.obs[0] - reach, k.obs[len(k.obs)-1] + reach
}

func (k *Kernel) Mean() float64 { return k.mean }

func (k *Kernel) Variance() float64 {
	return k.variance + k.bandwidth*k.bandwidth
}

func (k *Kernel) String() string {
	return fmt.Sprintf("gaussian-kernel(observations=%d, bandwidth=%.4g)", len(k.obs), k.bandwidth)
}

// bisect inverts a monotone cumulative function on [lo, hi].
func bisect(cdf func(float64) float64, p, lo, hi float64) float64 {
	if p <= 0 {
		return lo
	}
	if p >= 1 {
		return hi
	}
	for i := 0; i < 100 && hi-lo > 1e-12*math.Max(1, math.Abs(lo)); i++ {
		mid := lo + (hi-lo)/2
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2
}
