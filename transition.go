package spn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/jt05610/spn/distribution"
)

var _ Node = (*Transition)(nil)

var ErrInvalidWeight = errors.New("weight must be positive and finite")

// TransitionError ties a construction or sampling failure to the transition
// it happened on.
type TransitionError struct {
	Label string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %q: %v", e.Label, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Transition is a timed transition. Besides its label it carries a priority
// (higher fires first), a weight used to choose among immediate transitions
// and the distribution of its firing delay.
//
// Transitions are immutable: the With and As methods return modified copies,
// so the distribution built at construction is never stale.
type Transition struct {
	label     string
	priority  int
	weight    float64
	kind      distribution.Kind
	params    []float64
	guard     string
	invisible bool
	dist      distribution.Distribution
}

// NewTransition creates a transition whose delay follows kind with params.
// Immediate transitions get priority 1, all others priority 0. The
// distribution is built right away and any error is returned.
func NewTransition(label string, kind distribution.Kind, params ...float64) (*Transition, error) {
	t := &Transition{
		label:  label,
		weight: 1,
	}
	if kind == distribution.Immediate {
		t.priority = 1
	}
	if err := t.setDistribution(kind, params); err != nil {
		return nil, err
	}
	return t, nil
}

// NewImmediateTransition creates a zero delay transition with priority 1.
func NewImmediateTransition(label string) *Transition {
	return &Transition{
		label:    label,
		priority: 1,
		weight:   1,
		kind:     distribution.Immediate,
		dist:     distribution.NewImmediate(),
	}
}

// NewTransitionFrom creates a transition around an existing distribution,
// for laws that are not described by a parameter vector such as fitted
// approximations. A nil distribution yields an undefined transition.
func NewTransitionFrom(label string, d distribution.Distribution) *Transition {
	t := &Transition{
		label:  label,
		weight: 1,
		kind:   distribution.Undefined,
	}
	if d == nil {
		return t
	}
	t.kind = d.Kind()
	t.dist = d
	if p, ok := distribution.Parameters(d); ok {
		t.params = p
	}
	if t.kind == distribution.Immediate {
		t.priority = 1
	}
	return t
}

func (t *Transition) setDistribution(kind distribution.Kind, params []float64) error {
	d, err := distribution.New(kind, params...)
	if err != nil {
		return &TransitionError{Label: t.label, Err: err}
	}
	t.kind = kind
	t.params = append([]float64(nil), params...)
	t.dist = d
	return nil
}

func (t *Transition) clone() *Transition {
	c := *t
	c.params = append([]float64(nil), t.params...)
	return &c
}

func (t *Transition) Kind() NodeKind { return TransitionNode }

func (t *Transition) String() string { return t.label }

func (t *Transition) Label() string { return t.label }

func (t *Transition) Priority() int { return t.priority }

func (t *Transition) Weight() float64 { return t.weight }

// DistributionKind is the family of the firing delay.
func (t *Transition) DistributionKind() distribution.Kind { return t.kind }

// Parameters returns a copy of the distribution parameters.
func (t *Transition) Parameters() []float64 {
	return append([]float64(nil), t.params...)
}

// Distribution returns the delay law, or nil for undefined transitions.
func (t *Transition) Distribution() distribution.Distribution { return t.dist }

// Guard is an optional boolean expression over place token counts.
func (t *Transition) Guard() string { return t.guard }

// Invisible transitions are silent: they fire but leave no activity in outcomes.
func (t *Transition) Invisible() bool { return t.invisible }

func (t *Transition) IsImmediate() bool { return t.kind == distribution.Immediate }

// WithDistribution returns a copy whose delay follows kind with params.
// Priority and weight are kept.
func (t *Transition) WithDistribution(kind distribution.Kind, params ...float64) (*Transition, error) {
	c := t.clone()
	if err := c.setDistribution(kind, params); err != nil {
		return nil, err
	}
	return c, nil
}

// WithLaw returns a copy whose delay follows d. Parameters are taken from d
// when it has a parameter vector and cleared otherwise.
func (t *Transition) WithLaw(d distribution.Distribution) *Transition {
	c := t.clone()
	c.dist = d
	c.params = nil
	c.kind = distribution.Undefined
	if d == nil {
		return c
	}
	c.kind = d.Kind()
	if p, ok := distribution.Parameters(d); ok {
		c.params = p
	}
	return c
}

// AsImmediate returns a zero delay copy with priority 1.
func (t *Transition) AsImmediate() *Transition {
	c := t.clone()
	c.priority = 1
	c.kind = distribution.Immediate
	c.params = nil
	c.dist = distribution.NewImmediate()
	return c
}

// AsTimed returns a copy with the default timed settings: priority 0 and an
// exponential delay with rate 1.
func (t *Transition) AsTimed() *Transition {
	c := t.clone()
	c.priority = 0
	if err := c.setDistribution(distribution.Exponential, []float64{1}); err != nil {
		panic(err)
	}
	return c
}

func (t *Transition) WithPriority(p int) *Transition {
	c := t.clone()
	c.priority = p
	return c
}

func (t *Transition) WithWeight(w float64) (*Transition, error) {
	if !(w > 0) || math.IsInf(w, 0) {
		return nil, &TransitionError{Label: t.label, Err: fmt.Errorf("%w: %v", ErrInvalidWeight, w)}
	}
	c := t.clone()
	c.weight = w
	return c, nil
}

func (t *Transition) WithGuard(expression string) *Transition {
	c := t.clone()
	c.guard = expression
	return c
}

func (t *Transition) AsInvisible() *Transition {
	c := t.clone()
	c.invisible = true
	return c
}

func (t *Transition) undefined() error {
	return &TransitionError{Label: t.label, Err: distribution.ErrUndefinedDistribution}
}

// Sample draws a firing delay.
func (t *Transition) Sample(rng *rand.Rand) (float64, error) {
	if t.dist == nil {
		return 0, t.undefined()
	}
	return t.dist.Sample(rng), nil
}

func (t *Transition) Density(x float64) (float64, error) {
	if t.dist == nil {
		return 0, t.undefined()
	}
	return t.dist.Density(x), nil
}

func (t *Transition) Cumulative(x float64) (float64, error) {
	if t.dist == nil {
		return 0, t.undefined()
	}
	return t.dist.Cumulative(x), nil
}
