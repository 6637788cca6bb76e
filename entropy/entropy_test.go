package entropy_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"github.com/jt05610/spn/entropy"
	"github.com/jt05610/spn/marked"
	"github.com/jt05610/spn/simulation"
)

func calculator(t *testing.T, n *spn.Net, a entropy.Abstraction) (*entropy.Calculator, marked.Marking) {
	t.Helper()
	mn, err := marked.New(n)
	if err != nil {
		t.Fatal(err)
	}
	initial, err := mn.NewMarking(map[string]int{"start": 1})
	if err != nil {
		t.Fatal(err)
	}
	cfg := simulation.DefaultConfig()
	cfg.Quantile = 1
	cfg.RandomSeed = 99
	sim, err := simulation.New(n, mn, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return entropy.New(sim, a), initial
}

func exp(t *testing.T, label string, rate float64) *spn.Transition {
	t.Helper()
	tr, err := spn.NewTransition(label, distribution.Exponential, rate)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func sequence(t *testing.T) *spn.Net {
	start, mid, end := spn.NewPlace("start"), spn.NewPlace("mid"), spn.NewPlace("end")
	a, b := exp(t, "a", 1), exp(t, "b", 2)
	return spn.NewNet("sequence").
		WithPlaces(start, mid, end).
		WithTransitions(a, b).
		WithArcs(spn.NewArc(start, a), spn.NewArc(a, mid), spn.NewArc(mid, b), spn.NewArc(b, end))
}

func fork(t *testing.T) *spn.Net {
	start, left, right := spn.NewPlace("start"), spn.NewPlace("left"), spn.NewPlace("right")
	a, b := exp(t, "a", 1), exp(t, "b", 1)
	return spn.NewNet("fork").
		WithPlaces(start, left, right).
		WithTransitions(a, b).
		WithArcs(spn.NewArc(start, a), spn.NewArc(a, left), spn.NewArc(start, b), spn.NewArc(b, right))
}

func TestExact(t *testing.T) {
	for _, c := range []struct {
		name string
		net  func(*testing.T) *spn.Net
		want float64
	}{
		{"single path", sequence, 0},
		{"two equal outcomes", fork, 1},
	} {
		t.Run(c.name, func(t *testing.T) {
			calc, initial := calculator(t, c.net(t), entropy.List)
			h, dist, err := calc.Exact(context.Background(), initial, nil)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(h-c.want) > 1e-12 {
				t.Errorf("entropy %v bits, want %v", h, c.want)
			}
			if dist.Len() != int(c.want)+1 {
				t.Errorf("%d outcomes", dist.Len())
			}
		})
	}
}

func TestApproximate(t *testing.T) {
	calc, initial := calculator(t, fork(t), entropy.Set)
	h, curve, err := calc.Approximate(context.Background(), initial, nil, 2000, 250)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(h-1) > 0.01 {
		t.Errorf("entropy %v bits", h)
	}
	if len(curve) != 8 || curve[7].Samples != 2000 || curve[7].Entropy != h {
		t.Errorf("curve %+v", curve)
	}
	if _, _, err := calc.Approximate(context.Background(), initial, nil, 0, 1); !errors.Is(err, simulation.ErrInvalidConfig) {
		t.Errorf("zero samples: %v", err)
	}
}

func trace(labels ...string) *simulation.Trace {
	tr := &simulation.Trace{}
	for i, l := range labels {
		t := spn.NewImmediateTransition(l)
		if l == "tau" {
			t = t.AsInvisible()
		}
		tr.Events = append(tr.Events, simulation.Event{Transition: t, Time: float64(i)})
	}
	return tr
}

func TestEncoder(t *testing.T) {
	enc := entropy.NewEncoder()
	abc := trace("a", "b", "tau", "a", "c")
	for _, c := range []struct {
		a    entropy.Abstraction
		want entropy.Outcome
	}{
		{entropy.List, "0 1 0 2"},
		{entropy.Multiset, "0 0 1 2"},
		{entropy.Set, "0 1 2"},
	} {
		if got := enc.Encode(abc, c.a); got != c.want {
			t.Errorf("%s: %q, want %q", c.a, got, c.want)
		}
	}
	ab, ba := trace("a", "b"), trace("b", "a")
	if enc.Encode(ab, entropy.List) == enc.Encode(ba, entropy.List) {
		t.Error("list abstraction ignores order")
	}
	if enc.Encode(ab, entropy.Multiset) != enc.Encode(ba, entropy.Multiset) {
		t.Error("multiset abstraction keeps order")
	}
}

func TestParseAbstraction(t *testing.T) {
	for _, a := range []entropy.Abstraction{entropy.List, entropy.Multiset, entropy.Set} {
		got, err := entropy.ParseAbstraction(a.String())
		if err != nil || got != a {
			t.Errorf("%s: %v %v", a, got, err)
		}
	}
	if _, err := entropy.ParseAbstraction("bag"); !errors.Is(err, entropy.ErrUnknownAbstraction) {
		t.Errorf("bag: %v", err)
	}
}

func ExampleShannon() {
	fmt.Printf("%.3f\n", entropy.Shannon([]float64{1, 1, 1, 1}))
	fmt.Printf("%.3f\n", entropy.Shannon([]float64{3, 0, -1}))
	// Output:
	// 2.000
	// 0.000
}
