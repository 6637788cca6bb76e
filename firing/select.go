package firing

import (
	"math"
	"math/rand/v2"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/marked"
)

// Semantics is the token game the selector plays. *marked.Net implements it.
type Semantics interface {
	Available(m marked.Marking) []*spn.Transition
	Fire(m marked.Marking, t *spn.Transition) (marked.Marking, error)
}

var _ Semantics = (*marked.Net)(nil)

// Result is the outcome of one selection. When State is NoneEnabled the
// transition is nil.
type Result struct {
	State      State
	Transition *spn.Transition
	Delay      float64
}

// PriorityGroup returns the enabled transitions sharing the highest
// priority, in their original order.
func PriorityGroup(enabled []*spn.Transition) []*spn.Transition {
	if len(enabled) == 0 {
		return nil
	}
	top := math.MinInt
	for _, t := range enabled {
		if t.Priority() > top {
			top = t.Priority()
		}
	}
	group := make([]*spn.Transition, 0, len(enabled))
	for _, t := range enabled {
		if t.Priority() == top {
			group = append(group, t)
		}
	}
	return group
}

func allImmediate(group []*spn.Transition) bool {
	for _, t := range group {
		if !t.IsImmediate() {
			return false
		}
	}
	return true
}

// Select picks the transition to fire among enabled ones. Only the highest
// priority group competes. A group of immediate transitions is resolved by
// weighted preselection and fires with zero delay; any other group races:
// every member samples a delay and the strictly smallest wins, ties going to
// the member that comes first.
func Select(rng *rand.Rand, enabled []*spn.Transition) (Result, error) {
	group := PriorityGroup(enabled)
	if len(group) == 0 {
		return Result{State: NoneEnabled}, nil
	}
	if allImmediate(group) {
		return Result{State: Selected, Transition: preselect(rng, group)}, nil
	}
	var (
		winner *spn.Transition
		best   = math.Inf(1)
	)
	for _, t := range group {
		d, err := t.Sample(rng)
		if err != nil {
			return Result{}, err
		}
		if winner == nil || d < best {
			winner, best = t, d
		}
	}
	return Result{State: Selected, Transition: winner, Delay: best}, nil
}

func preselect(rng *rand.Rand, group []*spn.Transition) *spn.Transition {
	total := 0.0
	for _, t := range group {
		total += t.Weight()
	}
	u := rng.Float64() * total
	for _, t := range group {
		u -= t.Weight()
		if u < 0 {
			return t
		}
	}
	return group[len(group)-1]
}

// Selector runs the firing state machine against a marking.
type Selector struct {
	Semantics Semantics
	trace     []State
}

func NewSelector(sem Semantics) *Selector {
	return &Selector{Semantics: sem}
}

// Next computes the enabled set of m and selects the transition to fire.
func (s *Selector) Next(rng *rand.Rand, m marked.Marking) (Result, error) {
	s.trace = append(s.trace[:0], Idle)
	enabled := s.Semantics.Available(m)
	s.trace = append(s.trace, EnabledSetComputed)
	if len(enabled) == 0 {
		s.trace = append(s.trace, NoneEnabled)
		return Result{State: NoneEnabled}, nil
	}
	s.trace = append(s.trace, PriorityFiltered)
	res, err := Select(rng, enabled)
	if err != nil {
		return res, err
	}
	s.trace = append(s.trace, res.State)
	return res, nil
}

// Trace returns the states visited by the last call to Next.
func (s *Selector) Trace() []State {
	return append([]State(nil), s.trace...)
}
