package spn

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSameKind      = errors.New("cannot connect two places or two transitions")
	ErrArcExists     = errors.New("arc already exists")
	ErrDuplicateNode = errors.New("duplicate node name")
	ErrArcWeight     = errors.New("arc weight must be positive")
)

// Net is a stochastic Petri net: places, timed transitions and weighted arcs.
// Nodes are looked up by name, so names must be unique across places and
// transitions.
type Net struct {
	Name        string
	Places      []*Place
	Transitions []*Transition
	Arcs        []*Arc
	inputs      map[string][]*Arc
	outputs     map[string][]*Arc
}

// New creates a net from its parts and indexes the arcs.
func New(places []*Place, transitions []*Transition, arcs []*Arc, name ...string) *Net {
	nn := ""
	if len(name) > 0 {
		nn = name[0]
	}
	net := &Net{
		Name:        nn,
		Places:      places,
		Transitions: transitions,
		Arcs:        arcs,
	}
	net.index()
	return net
}

// NewNet starts an empty net to be filled with the With methods.
func NewNet(name string) *Net {
	return New(nil, nil, nil, name)
}

func (n *Net) index() {
	n.inputs = make(map[string][]*Arc)
	n.outputs = make(map[string][]*Arc)
	for _, arc := range n.Arcs {
		n.outputs[arc.Src.String()] = append(n.outputs[arc.Src.String()], arc)
		n.inputs[arc.Dest.String()] = append(n.inputs[arc.Dest.String()], arc)
	}
}

func (n *Net) WithPlaces(places ...*Place) *Net {
	n.Places = append(n.Places, places...)
	return n
}

func (n *Net) WithTransitions(transitions ...*Transition) *Net {
	n.Transitions = append(n.Transitions, transitions...)
	return n
}

func (n *Net) WithArcs(arcs ...*Arc) *Net {
	n.Arcs = append(n.Arcs, arcs...)
	n.index()
	return n
}

// Place returns the place with the given name, or nil.
func (n *Net) Place(name string) *Place {
	for _, p := range n.Places {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Transition returns the transition with the given label, or nil.
func (n *Net) Transition(label string) *Transition {
	for _, t := range n.Transitions {
		if t.label == label {
			return t
		}
	}
	return nil
}

// Arc returns the arc from head to tail, or nil.
func (n *Net) Arc(head, tail Node) *Arc {
	for _, arc := range n.outputs[head.String()] {
		if arc.Dest.String() == tail.String() {
			return arc
		}
	}
	return nil
}

// Inputs returns the arcs ending in node.
func (n *Net) Inputs(node Node) []*Arc {
	return append([]*Arc(nil), n.inputs[node.String()]...)
}

// Outputs returns the arcs leaving node.
func (n *Net) Outputs(node Node) []*Arc {
	return append([]*Arc(nil), n.outputs[node.String()]...)
}

// AddArc connects from to to with the given weight.
func (n *Net) AddArc(from, to Node, weight int) (*Arc, error) {
	if from.Kind() == to.Kind() {
		return nil, ErrSameKind
	}
	if weight < 1 {
		return nil, fmt.Errorf("%w: %s -> %s has weight %d", ErrArcWeight, from, to, weight)
	}
	if arc := n.Arc(from, to); arc != nil {
		return nil, ErrArcExists
	}
	a := NewArc(from, to, weight)
	n.Arcs = append(n.Arcs, a)
	n.outputs[from.String()] = append(n.outputs[from.String()], a)
	n.inputs[to.String()] = append(n.inputs[to.String()], a)
	return a, nil
}

// ReplaceTransition swaps the transition carrying t's label for t, including
// in the arcs. Transitions are immutable, so this is how a changed
// distribution, priority or weight is installed in a net.
func (n *Net) ReplaceTransition(t *Transition) error {
	for i, old := range n.Transitions {
		if old.label != t.label {
			continue
		}
		n.Transitions[i] = t
		for _, arc := range n.Arcs {
			if arc.Src == Node(old) {
				arc.Src = t
			}
			if arc.Dest == Node(old) {
				arc.Dest = t
			}
		}
		return nil
	}
	return fmt.Errorf("transition %q: %w", t.label, ErrNotFound)
}

// Validate checks that names are unique, arcs alternate between places and
// transitions, arc weights are positive and every arc end belongs to the net.
func (n *Net) Validate() error {
	seen := make(map[string]bool)
	for _, p := range n.Places {
		if seen[p.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, p.Name)
		}
		seen[p.Name] = true
	}
	for _, t := range n.Transitions {
		if seen[t.label] {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, t.label)
		}
		seen[t.label] = true
	}
	for _, arc := range n.Arcs {
		if arc.Src.Kind() == arc.Dest.Kind() {
			return fmt.Errorf("%s: %w", arc, ErrSameKind)
		}
		if arc.Weight < 1 {
			return fmt.Errorf("%w: %s has weight %d", ErrArcWeight, arc, arc.Weight)
		}
		for _, end := range []Node{arc.Src, arc.Dest} {
			if !seen[end.String()] {
				return fmt.Errorf("arc %s: node %s: %w", arc, end, ErrNotFound)
			}
		}
	}
	return nil
}
