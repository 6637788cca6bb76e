package marked

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jt05610/spn"
)

var (
	ErrNotEnabled  = errors.New("transition is not enabled")
	ErrPlaceFull   = errors.New("place is full")
	ErrMarkingSize = errors.New("marking does not match the net")
)

// Marking holds the token count of every place, in the order of the net's places.
type Marking []int

func (m Marking) Clone() Marking {
	return append(Marking(nil), m...)
}

func (m Marking) Equal(o Marking) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// Key is a comparable encoding of the marking, for use in maps.
func (m Marking) Key() string {
	var sb strings.Builder
	for i, v := range m {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Net gives a stochastic Petri net its token game. It never mutates a
// marking: firing returns a new one.
type Net struct {
	*spn.Net
	index  map[string]int
	guards map[string]*vm.Program
}

// New compiles the guards of every transition and indexes the places.
// Guards are type-checked against the place names, so a guard naming an
// unknown place fails here.
func New(n *spn.Net) (*Net, error) {
	net := &Net{
		Net:    n,
		index:  make(map[string]int, len(n.Places)),
		guards: make(map[string]*vm.Program),
	}
	for i, p := range n.Places {
		net.index[p.Name] = i
	}
	env := net.env(make(Marking, len(n.Places)))
	for _, t := range n.Transitions {
		if t.Guard() == "" {
			continue
		}
		program, err := expr.Compile(t.Guard(), expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, &spn.TransitionError{Label: t.Label(), Err: fmt.Errorf("guard: %w", err)}
		}
		net.guards[t.Label()] = program
	}
	return net, nil
}

// NewMarking builds a marking from token counts by place name. Places that
// are not mentioned hold no tokens.
func (net *Net) NewMarking(tokens map[string]int) (Marking, error) {
	m := make(Marking, len(net.Places))
	for name, count := range tokens {
		i, ok := net.index[name]
		if !ok {
			return nil, fmt.Errorf("place %q: %w", name, spn.ErrNotFound)
		}
		if count < 0 {
			return nil, fmt.Errorf("place %q: negative token count %d", name, count)
		}
		m[i] = count
	}
	return m, nil
}

// Tokens returns the number of tokens m holds in place.
func (net *Net) Tokens(m Marking, place string) int {
	i, ok := net.index[place]
	if !ok {
		return 0
	}
	return m[i]
}

func (net *Net) env(m Marking) map[string]interface{} {
	env := make(map[string]interface{}, len(net.Places))
	for i, p := range net.Places {
		env[p.Name] = m[i]
	}
	return env
}

// Enabled returns true if every input place holds enough tokens and the
// guard, if any, holds.
func (net *Net) Enabled(m Marking, t *spn.Transition) bool {
	for _, arc := range net.Inputs(t) {
		pt, ok := arc.Src.(*spn.Place)
		if !ok {
			return false
		}
		if m[net.index[pt.Name]] < arc.Weight {
			return false
		}
	}
	program, ok := net.guards[t.Label()]
	if !ok {
		return true
	}
	ret, err := expr.Run(program, net.env(m))
	if err != nil {
		return false
	}
	b, _ := ret.(bool)
	return b
}

// Available returns the transitions enabled in m, in net order.
func (net *Net) Available(m Marking) []*spn.Transition {
	transitions := make([]*spn.Transition, 0)
	for _, t := range net.Transitions {
		if net.Enabled(m, t) {
			transitions = append(transitions, t)
		}
	}
	return transitions
}

// Fire returns the marking reached by firing t in m.
func (net *Net) Fire(m Marking, t *spn.Transition) (Marking, error) {
	if len(m) != len(net.Places) {
		return nil, ErrMarkingSize
	}
	if !net.Enabled(m, t) {
		return nil, fmt.Errorf("%s: %w", t.Label(), ErrNotEnabled)
	}
	next := m.Clone()
	for _, arc := range net.Inputs(t) {
		pt := arc.Src.(*spn.Place)
		next[net.index[pt.Name]] -= arc.Weight
	}
	for _, arc := range net.Outputs(t) {
		pt, ok := arc.Dest.(*spn.Place)
		if !ok {
			return nil, fmt.Errorf("arc %s: %w", arc, spn.ErrSameKind)
		}
		i := net.index[pt.Name]
		next[i] += arc.Weight
		if pt.Bound > 0 && next[i] > pt.Bound {
			return nil, fmt.Errorf("%s: %w", pt.Name, ErrPlaceFull)
		}
	}
	return next, nil
}

// Format renders m with place names, skipping empty places.
func (net *Net) Format(m Marking) string {
	parts := make([]string, 0, len(m))
	for i, p := range net.Places {
		if m[i] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d", p.Name, m[i]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
