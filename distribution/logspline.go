package distribution

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

const (
	logSplineMinObservations = 10
	logSplinePoints          = 512
)

// NewLogSpline fits a smooth density to the observations by interpolating
// the log of the binned density with a natural cubic spline. The fitted
// density is tabulated on a fine grid.
func NewLogSpline(obs []float64) (*Grid, error) {
	sorted, err := snapshot(LogSpline, obs, logSplineMinObservations)
	if err != nil {
		return nil, err
	}
	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]
	if !(hi > lo) {
		return nil, invalid(LogSpline, "observations have no spread")
	}
	bins := int(math.Ceil(2 * math.Cbrt(float64(n))))
	bins = max(logSplineMinObservations, min(bins, 100))
	width := (hi - lo) / float64(bins)

	counts := make([]float64, bins)
	for _, x := range sorted {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	centers := make([]float64, bins)
	logDensity := make([]float64, bins)
	for i, c := range counts {
		centers[i] = lo + (float64(i)+0.5)*width
		// half a count keeps empty bins finite on the log scale
		logDensity[i] = math.Log((c + 0.5) / (float64(n) * width))
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(centers, logDensity); err != nil {
		return nil, fmt.Errorf("log-spline fit: %w", err)
	}

	xs := floats.Span(make([]float64, logSplinePoints), lo, hi)
	ys := make([]float64, logSplinePoints)
	first, last := centers[0], centers[bins-1]
	for i, x := range xs {
		ys[i] = math.Exp(spline.Predict(math.Max(first, math.Min(last, x))))
	}
	return newGrid(LogSpline, lo, xs[1]-xs[0], ys)
}
