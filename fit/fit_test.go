package fit_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"github.com/jt05610/spn/fit"
)

func draw(t *testing.T, d distribution.Distribution, n int) []float64 {
	t.Helper()
	rng := rand.New(rand.NewPCG(5, 8))
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Sample(rng)
	}
	return out
}

func law(t *testing.T, k distribution.Kind, params ...float64) distribution.Distribution {
	t.Helper()
	d, err := distribution.New(k, params...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFit_Parametric(t *testing.T) {
	for _, c := range []struct {
		kind   distribution.Kind
		params []float64
		tol    float64
	}{
		{distribution.Exponential, []float64{2}, 0.1},
		{distribution.Normal, []float64{10, 2}, 0.1},
		{distribution.LogNormal, []float64{1, 0.5}, 0.05},
		{distribution.Gamma, []float64{3, 2}, 0.2},
		{distribution.Beta, []float64{2, 5}, 0.3},
		{distribution.Uniform, []float64{1, 4}, 0.01},
	} {
		t.Run(c.kind.String(), func(t *testing.T) {
			obs := draw(t, law(t, c.kind, c.params...), 10000)
			d, err := fit.Fit(c.kind, obs)
			if err != nil {
				t.Fatal(err)
			}
			if d.Kind() != c.kind {
				t.Fatalf("fitted a %s", d.Kind())
			}
			got, _ := distribution.Parameters(d)
			for i, want := range c.params {
				if math.Abs(got[i]-want) > c.tol {
					t.Errorf("parameter %d: %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestFit_Empirical(t *testing.T) {
	obs := draw(t, law(t, distribution.Normal, 5, 1), 500)
	for _, k := range []distribution.Kind{distribution.Histogram, distribution.GaussianKernel, distribution.LogSpline} {
		d, err := fit.Fit(k, obs)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if math.Abs(d.Mean()-5) > 0.2 {
			t.Errorf("%s: mean %v", k, d.Mean())
		}
	}
}

func TestFit_Errors(t *testing.T) {
	if _, err := fit.Fit(distribution.Weibull, []float64{1, 2, 3}); !errors.Is(err, distribution.ErrUnsupportedType) {
		t.Errorf("weibull: %v", err)
	}
	if _, err := fit.Fit(distribution.Normal, []float64{1}); !errors.Is(err, distribution.ErrInsufficientData) {
		t.Errorf("one observation: %v", err)
	}
	if _, err := fit.Fit(distribution.Exponential, []float64{1, -1}); !errors.Is(err, distribution.ErrInvalidParameter) {
		t.Errorf("negative duration: %v", err)
	}
	if _, err := fit.Fit(distribution.LogSpline, []float64{1, 2, 3}); !errors.Is(err, distribution.ErrInsufficientData) {
		t.Errorf("short log-spline: %v", err)
	}
}

func TestObservations(t *testing.T) {
	obs, err := fit.Observations([]float64{1, math.NaN(), 2}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Errorf("kept %v", obs)
	}
	if _, err := fit.Observations([]float64{math.Inf(1)}, false); err == nil {
		t.Error("accepted an infinite duration")
	}
}

func TestApproximateAsExponentialMixture(t *testing.T) {
	b, err := fit.ApproximateAsExponentialMixture(law(t, distribution.Exponential, 1), 0, 10, 64)
	if err != nil {
		t.Fatal(err)
	}
	if b.Order() != 64 || math.Abs(b.Lambda()-math.Log(64)/10) > 1e-12 {
		t.Errorf("order %d lambda %v", b.Order(), b.Lambda())
	}
	if math.Abs(b.Mean()-1) > 0.25 {
		t.Errorf("mean %v", b.Mean())
	}
	if _, err := fit.ApproximateAsExponentialMixture(b, 0, 10, 1); !errors.Is(err, distribution.ErrInvalidParameter) {
		t.Errorf("order 1: %v", err)
	}
	if _, err := fit.ApproximateAsExponentialMixture(b, 3, 3, 8); !errors.Is(err, distribution.ErrInvalidParameter) {
		t.Errorf("empty range: %v", err)
	}
}

func TestConvert(t *testing.T) {
	base, err := spn.NewTransition("serve", distribution.Exponential, 2)
	if err != nil {
		t.Fatal(err)
	}
	base = base.WithPriority(3)

	g, err := fit.Convert(base, distribution.Gamma)
	if err != nil {
		t.Fatal(err)
	}
	params := g.Parameters()
	if g.DistributionKind() != distribution.Gamma || math.Abs(params[0]-1) > 0.1 || math.Abs(params[1]-0.5) > 0.05 {
		t.Errorf("gamma %v", params)
	}
	if g.Label() != "serve" || g.Priority() != 3 {
		t.Errorf("lost identity: %s priority %d", g.Label(), g.Priority())
	}
	if base.DistributionKind() != distribution.Exponential {
		t.Error("conversion changed the original")
	}

	for _, k := range []distribution.Kind{distribution.BernsteinExponential, distribution.Approximate, distribution.GaussianKernel} {
		c, err := fit.Convert(base, k)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if c.DistributionKind() != k {
			t.Errorf("%s: converted to %s", k, c.DistributionKind())
		}
		if math.Abs(c.Distribution().Mean()-0.5) > 0.1 {
			t.Errorf("%s: mean %v", k, c.Distribution().Mean())
		}
	}

	_, err = fit.Convert(base, distribution.StudentT)
	var te *spn.TransitionError
	if !errors.Is(err, distribution.ErrUnsupportedType) || !errors.As(err, &te) {
		t.Errorf("student-t: %v", err)
	}
	if _, err := fit.Convert(spn.NewTransitionFrom("x", nil), distribution.Normal); !errors.Is(err, distribution.ErrUndefinedDistribution) {
		t.Errorf("undefined: %v", err)
	}
}
