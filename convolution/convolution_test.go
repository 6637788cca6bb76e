package convolution_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/convolution"
	"github.com/jt05610/spn/distribution"
)

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}

func TestConvolve_Normal(t *testing.T) {
	f := must(distribution.NewNormal(50, 1))
	g, err := convolution.Convolve(f, f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.Mean()-100) > 0.4 {
		t.Errorf("mean %v, want 100", g.Mean())
	}
	if math.Abs(g.Variance()-2) > 0.1 {
		t.Errorf("variance %v, want 2", g.Variance())
	}
	lo, hi := g.Support()
	if lo != 0 {
		t.Errorf("grid starts at %v", lo)
	}
	if c := g.Cumulative(hi); math.Abs(c-1) > 1e-9 {
		t.Errorf("total mass %v", c)
	}
}

func TestConvolve_Exponential(t *testing.T) {
	e := must(distribution.NewExponential(1))
	g, err := convolution.Convolve(e, e, 2000)
	if err != nil {
		t.Fatal(err)
	}
	// the sum of two unit exponentials is gamma(2, 1)
	want := 1 - 3*math.Exp(-2)
	if got := g.Cumulative(2); math.Abs(got-want) > 0.01 {
		t.Errorf("F(2) = %v, want %v", got, want)
	}
}

func TestConvolve_Associative(t *testing.T) {
	f := must(distribution.NewNormal(5, 1))
	g := must(distribution.NewExponential(0.5))
	h := must(distribution.NewUniform(1, 3))
	left := must(convolution.Convolve(must(convolution.Convolve(f, g, 0)), h, 0))
	right := must(convolution.Convolve(f, must(convolution.Convolve(g, h, 0)), 0))
	want := 5 + 2 + 2.0
	for name, d := range map[string]*distribution.Grid{"(f*g)*h": left, "f*(g*h)": right} {
		if math.Abs(d.Mean()-want) > 0.15 {
			t.Errorf("%s: mean %v, want %v", name, d.Mean(), want)
		}
	}
	if math.Abs(left.Mean()-right.Mean()) > 0.1 {
		t.Errorf("means differ: %v and %v", left.Mean(), right.Mean())
	}
}

func TestConvolve_PointMass(t *testing.T) {
	e := must(distribution.NewExponential(1))
	for _, c := range []struct {
		name  string
		f, g  distribution.Distribution
		shift float64
	}{
		{"immediate first", distribution.NewImmediate(), e, 0},
		{"deterministic zero last", e, must(distribution.NewDeterministic(0)), 0},
		{"deterministic two", must(distribution.NewDeterministic(2)), e, 2},
	} {
		g, err := convolution.Convolve(c.f, c.g, 0)
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		for _, x := range []float64{0.5, 1, 2} {
			want := 1 - math.Exp(-x)
			if got := g.Cumulative(c.shift + x); math.Abs(got-want) > 0.01 {
				t.Errorf("%s: F(%v) = %v, want %v", c.name, c.shift+x, got, want)
			}
		}
	}
}

func TestConvolve_GridIsPowerOfTwo(t *testing.T) {
	u := must(distribution.NewUniform(0, 1))
	g, err := convolution.Convolve(u, u, 1000)
	if err != nil {
		t.Fatal(err)
	}
	// 1024 cells of width 1/1024, padded to 2048 points from 0
	if _, hi := g.Support(); math.Abs(hi-2047.0/1024) > 1e-9 {
		t.Errorf("grid ends at %v", hi)
	}
}

func TestConvolveAll(t *testing.T) {
	if _, err := convolution.ConvolveAll(0); !errors.Is(err, convolution.ErrNothingToConvolve) {
		t.Errorf("empty fold: %v", err)
	}
	d := must(distribution.NewDeterministic(3))
	one, err := convolution.ConvolveAll(0, d)
	if err != nil || one != distribution.Distribution(d) {
		t.Errorf("single fold: %v %v", one, err)
	}
	sum, err := convolution.ConvolveAll(0, d, d, d)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sum.Mean()-9) > 0.05 {
		t.Errorf("mean %v, want 9", sum.Mean())
	}
}

func step(t *testing.T, label string, duration float64, children ...*convolution.ReplayStep) *convolution.ReplayStep {
	t.Helper()
	tr, err := spn.NewTransition(label, distribution.Exponential, 1)
	if err != nil {
		t.Fatal(err)
	}
	return &convolution.ReplayStep{Transition: tr, Duration: duration, Children: children}
}

func TestTree(t *testing.T) {
	root := step(t, "a", 0.5, step(t, "b", 1, step(t, "c", 0.25)), step(t, "d", 2))
	d, err := convolution.Tree(context.Background(), root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.Mean()-4) > 0.1 {
		t.Errorf("mean %v, want 4", d.Mean())
	}
	if got := convolution.Observed(root); got != 3.75 {
		t.Errorf("observed %v", got)
	}
	p, err := convolution.Percentile(context.Background(), root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p <= 0 || p >= 1 {
		t.Errorf("percentile %v", p)
	}

	leaf := step(t, "leaf", 1)
	d, err = convolution.Tree(context.Background(), leaf, 0)
	if err != nil || d.Kind() != distribution.Exponential {
		t.Errorf("leaf: %v %v", d, err)
	}
}

func TestTree_Immediate(t *testing.T) {
	start := &convolution.ReplayStep{Transition: spn.NewImmediateTransition("start")}
	root := step(t, "run", 0.5, start)
	d, err := convolution.Tree(context.Background(), root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.Mean()-1) > 0.05 {
		t.Errorf("mean %v, want 1", d.Mean())
	}
	start.Children = []*convolution.ReplayStep{step(t, "finish", 1)}
	p, err := convolution.Percentile(context.Background(), &convolution.ReplayStep{
		Transition: spn.NewImmediateTransition("begin"),
		Children:   []*convolution.ReplayStep{start},
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := 1 - math.Exp(-1); math.Abs(p-want) > 0.02 {
		t.Errorf("percentile %v, want %v", p, want)
	}
}

func TestTree_Undefined(t *testing.T) {
	root := &convolution.ReplayStep{
		Transition: spn.NewTransitionFrom("a", nil),
	}
	_, err := convolution.Tree(context.Background(), step(t, "root", 1, root), 0)
	if !errors.Is(err, distribution.ErrUndefinedDistribution) {
		t.Errorf("got %v", err)
	}
}

func ExampleConvolve() {
	a := must(distribution.NewNormal(50, 1))
	sum := must(convolution.Convolve(a, a, 0))
	fmt.Printf("%.0f\n", sum.Mean())
	// Output: 100
}
