package spn_test

import (
	"errors"
	"testing"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
)

func sequence(t *testing.T) (*spn.Net, *spn.Transition) {
	t.Helper()
	work, err := spn.NewTransition("work", distribution.Exponential, 1)
	if err != nil {
		t.Fatal(err)
	}
	p0, p1 := spn.NewPlace("p0"), spn.NewPlace("p1")
	n := spn.NewNet("sequence").
		WithPlaces(p0, p1).
		WithTransitions(work).
		WithArcs(spn.NewArc(p0, work), spn.NewArc(work, p1))
	return n, work
}

func TestNet_InputsOutputs(t *testing.T) {
	n, work := sequence(t)
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	in := n.Inputs(work)
	if len(in) != 1 || in[0].Src.String() != "p0" {
		t.Fatalf("inputs = %v", in)
	}
	out := n.Outputs(work)
	if len(out) != 1 || out[0].Dest.String() != "p1" {
		t.Fatalf("outputs = %v", out)
	}
	if n.Arc(n.Place("p0"), work) == nil {
		t.Error("missing arc p0 -> work")
	}
	if n.Arc(work, n.Place("p0")) != nil {
		t.Error("unexpected arc work -> p0")
	}
}

func TestNet_AddArc(t *testing.T) {
	n, work := sequence(t)
	if _, err := n.AddArc(n.Place("p0"), n.Place("p1"), 1); !errors.Is(err, spn.ErrSameKind) {
		t.Errorf("place to place: %v", err)
	}
	if _, err := n.AddArc(n.Place("p0"), work, 1); !errors.Is(err, spn.ErrArcExists) {
		t.Errorf("duplicate arc: %v", err)
	}
	p2 := spn.NewPlace("p2")
	n.WithPlaces(p2)
	if _, err := n.AddArc(work, p2, 0); !errors.Is(err, spn.ErrArcWeight) {
		t.Errorf("zero weight: %v", err)
	}
	if _, err := n.AddArc(work, p2, 2); err != nil {
		t.Fatal(err)
	}
	if got := len(n.Outputs(work)); got != 2 {
		t.Errorf("outputs after AddArc = %d", got)
	}
}

func TestNet_ReplaceTransition(t *testing.T) {
	n, work := sequence(t)
	fast, err := work.WithDistribution(distribution.Exponential, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.ReplaceTransition(fast); err != nil {
		t.Fatal(err)
	}
	if n.Transition("work") != fast {
		t.Fatal("transition not replaced")
	}
	if n.Inputs(fast)[0].Dest != spn.Node(fast) {
		t.Error("arc still points to the old transition")
	}
	if work.Parameters()[0] != 1 {
		t.Error("original transition was modified")
	}
	missing := spn.NewImmediateTransition("missing")
	if err := n.ReplaceTransition(missing); !errors.Is(err, spn.ErrNotFound) {
		t.Errorf("missing transition: %v", err)
	}
}

func TestNet_Validate(t *testing.T) {
	n, _ := sequence(t)
	n.WithPlaces(spn.NewPlace("work"))
	if err := n.Validate(); !errors.Is(err, spn.ErrDuplicateNode) {
		t.Errorf("duplicate name: %v", err)
	}
	n, work := sequence(t)
	n.WithArcs(spn.NewArc(work, spn.NewPlace("elsewhere")))
	if err := n.Validate(); !errors.Is(err, spn.ErrNotFound) {
		t.Errorf("dangling arc: %v", err)
	}
}
