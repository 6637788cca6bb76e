package simulation_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"github.com/jt05610/spn/marked"
	"github.com/jt05610/spn/simulation"
)

func transition(t *testing.T, label string, kind distribution.Kind, params ...float64) *spn.Transition {
	t.Helper()
	tr, err := spn.NewTransition(label, kind, params...)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

type fixture struct {
	net     *marked.Net
	initial marked.Marking
	final   marked.Marking
}

func build(t *testing.T, n *spn.Net, initial, final map[string]int) fixture {
	t.Helper()
	mn, err := marked.New(n)
	if err != nil {
		t.Fatal(err)
	}
	f := fixture{net: mn}
	if f.initial, err = mn.NewMarking(initial); err != nil {
		t.Fatal(err)
	}
	if final != nil {
		if f.final, err = mn.NewMarking(final); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func single(t *testing.T) fixture {
	p0, p1 := spn.NewPlace("p0"), spn.NewPlace("p1")
	tr := transition(t, "t", distribution.Exponential, 1)
	n := spn.NewNet("single").
		WithPlaces(p0, p1).
		WithTransitions(tr).
		WithArcs(spn.NewArc(p0, tr), spn.NewArc(tr, p1))
	return build(t, n, map[string]int{"p0": 1}, map[string]int{"p1": 1})
}

func choice(t *testing.T) fixture {
	p0, p1, p2 := spn.NewPlace("p0"), spn.NewPlace("p1"), spn.NewPlace("p2")
	a := transition(t, "a", distribution.Exponential, 1)
	b := transition(t, "b", distribution.Exponential, 3)
	n := spn.NewNet("choice").
		WithPlaces(p0, p1, p2).
		WithTransitions(a, b).
		WithArcs(
			spn.NewArc(p0, a), spn.NewArc(a, p1),
			spn.NewArc(p0, b), spn.NewArc(b, p2),
		)
	return build(t, n, map[string]int{"p0": 1}, nil)
}

func pingPong(t *testing.T) fixture {
	left, right := spn.NewPlace("left"), spn.NewPlace("right")
	ping, pong := spn.NewImmediateTransition("ping"), spn.NewImmediateTransition("pong")
	n := spn.NewNet("ping-pong").
		WithPlaces(left, right).
		WithTransitions(ping, pong).
		WithArcs(
			spn.NewArc(left, ping), spn.NewArc(ping, right),
			spn.NewArc(right, pong), spn.NewArc(pong, left),
		)
	return build(t, n, map[string]int{"left": 1}, nil)
}

func simulator(t *testing.T, f fixture, cfg simulation.Config) *simulation.Simulator {
	t.Helper()
	sim, err := simulation.New(f.net.Net, f.net, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sim
}

func TestRun_ExponentialFiringTimes(t *testing.T) {
	f := single(t)
	cfg := simulation.DefaultConfig()
	cfg.RandomSeed = 2024
	res, err := simulator(t, f, cfg).Run(context.Background(), f.initial, f.final)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Traces) != 1000 {
		t.Fatalf("got %d traces", len(res.Traces))
	}
	times := make([]float64, 0, len(res.Traces))
	for _, tr := range res.Traces {
		if tr.Len() != 1 || !tr.ReachedFinal || !tr.Complete {
			t.Fatalf("run %d: %v reached=%v complete=%v", tr.Run, tr.Labels(), tr.ReachedFinal, tr.Complete)
		}
		times = append(times, tr.Duration())
	}
	sort.Float64s(times)
	n := float64(len(times))
	d := 0.0
	for i, x := range times {
		cdf := 1 - math.Exp(-x)
		d = math.Max(d, math.Max(float64(i+1)/n-cdf, cdf-float64(i)/n))
	}
	// Kolmogorov-Smirnov critical value at the 1% level for n = 1000.
	if d > 0.0515 {
		t.Errorf("KS statistic %.4f", d)
	}
}

func TestRun_Reproducible(t *testing.T) {
	f := choice(t)
	durations := func(workers int) []float64 {
		cfg := simulation.DefaultConfig()
		cfg.RunCount = 200
		cfg.RandomSeed = 11
		cfg.Workers = workers
		res, err := simulator(t, f, cfg).Run(context.Background(), f.initial, nil)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]float64, len(res.Traces))
		for i, tr := range res.Traces {
			out[i] = tr.Duration()
		}
		return out
	}
	one, many := durations(1), durations(8)
	for i := range one {
		if one[i] != many[i] {
			t.Fatalf("run %d: %v with one worker, %v with eight", i, one[i], many[i])
		}
	}
}

func TestRun_StepBound(t *testing.T) {
	f := pingPong(t)
	cfg := simulation.DefaultConfig()
	cfg.RunCount = 5
	cfg.MaxSteps = 50
	res, err := simulator(t, f, cfg).Run(context.Background(), f.initial, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Runs != 5 || res.Summary.Truncated != 5 {
		t.Fatalf("summary %+v", res.Summary)
	}
	for _, tr := range res.Traces {
		if tr.Complete || !errors.Is(tr.Err, simulation.ErrStepBound) || tr.Len() != 50 {
			t.Errorf("run %d: complete=%v err=%v len=%d", tr.Run, tr.Complete, tr.Err, tr.Len())
		}
	}
}

func TestRun_TimeBound(t *testing.T) {
	p := spn.NewPlace("p")
	tick := transition(t, "tick", distribution.Deterministic, 1)
	n := spn.NewNet("clock").WithPlaces(p).WithTransitions(tick).
		WithArcs(spn.NewArc(p, tick), spn.NewArc(tick, p))
	f := build(t, n, map[string]int{"p": 1}, nil)
	cfg := simulation.DefaultConfig()
	cfg.RunCount = 1
	cfg.MaxTime = 3.5
	res, err := simulator(t, f, cfg).Run(context.Background(), f.initial, nil)
	if err != nil {
		t.Fatal(err)
	}
	tr := res.Traces[0]
	if !errors.Is(tr.Err, simulation.ErrTimeBound) || tr.Len() != 3 || tr.Duration() != 3 {
		t.Errorf("err=%v len=%d duration=%v", tr.Err, tr.Len(), tr.Duration())
	}
}

func TestRun_TraceLess(t *testing.T) {
	f := single(t)
	cfg := simulation.DefaultConfig()
	cfg.RunCount = 100
	cfg.TraceLess = true
	res, err := simulator(t, f, cfg).Run(context.Background(), f.initial, f.final)
	if err != nil {
		t.Fatal(err)
	}
	if res.Traces != nil {
		t.Error("traces retained")
	}
	if res.Summary.Runs != 100 || res.Summary.ReachedFinal != 100 {
		t.Errorf("summary %+v", res.Summary)
	}
	if math.Abs(res.Summary.MeanDuration-1) > 0.35 {
		t.Errorf("mean duration %v", res.Summary.MeanDuration)
	}
}

func TestRun_Cancelled(t *testing.T) {
	f := pingPong(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := simulator(t, f, simulation.DefaultConfig()).Run(ctx, f.initial, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}

func TestStream(t *testing.T) {
	f := choice(t)
	cfg := simulation.DefaultConfig()
	cfg.RunCount = 30
	seen := 0
	err := simulator(t, f, cfg).Stream(context.Background(), f.initial, nil, func(tr *simulation.Trace) error {
		if tr.Run != seen {
			t.Errorf("run %d streamed in position %d", tr.Run, seen)
		}
		seen++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != 30 {
		t.Errorf("streamed %d traces", seen)
	}
}

func TestExplore(t *testing.T) {
	f := choice(t)
	cfg := simulation.DefaultConfig()
	cfg.Deterministic = true
	cfg.Quantile = 1
	traces, err := simulator(t, f, cfg).Explore(context.Background(), f.initial, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 2 {
		t.Fatalf("got %d paths", len(traces))
	}
	want := []struct {
		label string
		p     float64
	}{{"b", 0.75}, {"a", 0.25}}
	for i, w := range want {
		tr := traces[i]
		if tr.Labels()[0] != w.label || math.Abs(tr.Probability-w.p) > 1e-12 {
			t.Errorf("path %d: %v with probability %v", i, tr.Labels(), tr.Probability)
		}
		if math.Abs(tr.Duration()-0.25) > 1e-12 {
			t.Errorf("path %d: expected duration %v", i, tr.Duration())
		}
	}

	cfg.Quantile = 0.5
	traces, err = simulator(t, f, cfg).Explore(context.Background(), f.initial, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 1 || traces[0].Labels()[0] != "b" {
		t.Errorf("quantile 0.5 kept %d paths", len(traces))
	}
}

func TestExplore_StepBound(t *testing.T) {
	f := pingPong(t)
	cfg := simulation.DefaultConfig()
	cfg.Deterministic = true
	cfg.MaxSteps = 10
	res, err := simulator(t, f, cfg).Simulate(context.Background(), f.initial, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Traces) != 1 {
		t.Fatalf("got %d paths", len(res.Traces))
	}
	tr := res.Traces[0]
	if tr.Complete || !errors.Is(tr.Err, simulation.ErrStepBound) || tr.Probability != 1 {
		t.Errorf("complete=%v err=%v p=%v", tr.Complete, tr.Err, tr.Probability)
	}
}

func TestConfig_Validate(t *testing.T) {
	for name, mutate := range map[string]func(*simulation.Config){
		"runs":     func(c *simulation.Config) { c.RunCount = 0 },
		"quantile": func(c *simulation.Config) { c.Quantile = 1.5 },
		"steps":    func(c *simulation.Config) { c.MaxSteps = 0 },
		"time":     func(c *simulation.Config) { c.MaxTime = -1 },
		"workers":  func(c *simulation.Config) { c.Workers = 0 },
	} {
		cfg := simulation.DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, simulation.ErrInvalidConfig) {
			t.Errorf("%s: %v", name, err)
		}
	}
	if err := simulation.DefaultConfig().Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}
}
