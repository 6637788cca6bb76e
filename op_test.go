package spn_test

import (
	"fmt"

	"github.com/jt05610/spn"
)

func ExampleAdd() {
	b := spn.NewImmediateTransition("b")
	n1 := spn.NewNet("first").
		WithPlaces(spn.NewPlace("a"), spn.NewPlace("c")).
		WithTransitions(b).
		WithArcs(
			spn.NewArc(&spn.Place{Name: "a"}, b),
			spn.NewArc(b, &spn.Place{Name: "c"}),
		)
	n2 := spn.NewNet("second").
		WithPlaces(spn.NewPlace("d"), spn.NewPlace("c")).
		WithTransitions(b).
		WithArcs(
			spn.NewArc(&spn.Place{Name: "d"}, b),
			spn.NewArc(b, &spn.Place{Name: "c"}),
		)
	combined := spn.Add(n1, n2)
	fmt.Println("Places")
	for i, place := range combined.Places {
		fmt.Printf("%d. %s\n", i+1, place.Name)
	}
	fmt.Println("Transitions")
	for i, t := range combined.Transitions {
		fmt.Printf("%d. %s\n", i+1, t.Label())
	}
	fmt.Println("Arcs")
	for _, arc := range combined.Arcs {
		fmt.Printf("%s\n", arc)
	}
	// Output:
	// Places
	// 1. a
	// 2. c
	// 3. d
	// Transitions
	// 1. b
	// Arcs
	// a -> b
	// b -> c
	// d -> b
}
