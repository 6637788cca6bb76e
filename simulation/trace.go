package simulation

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jt05610/spn"
	"github.com/jt05610/spn/marked"
)

var (
	ErrStepBound = errors.New("step bound exceeded")
	ErrTimeBound = errors.New("time bound exceeded")
)

// Event records that a transition fired at a point in simulated time.
type Event struct {
	Transition *spn.Transition
	Time       float64
}

// Trace is one run through the net. It is not modified once returned.
type Trace struct {
	ID      uuid.UUID
	Run     int
	Events  []Event
	Initial marked.Marking
	Final   marked.Marking

	// ReachedFinal is set when the run stopped on the requested final marking.
	ReachedFinal bool

	// Complete is false when the run was cut by a step or time bound; Err
	// says which.
	Complete bool
	Err      error

	// Probability is the exact path probability in exhaustive mode and 1
	// for sampled runs.
	Probability float64

	duration float64
}

// record is what a batch summary needs from a run.
type record struct {
	duration     float64
	probability  float64
	complete     bool
	reachedFinal bool
}

func (t *Trace) record() record {
	return record{
		duration:     t.duration,
		probability:  t.Probability,
		complete:     t.Complete,
		reachedFinal: t.ReachedFinal,
	}
}

func newTrace(run int, initial marked.Marking) *Trace {
	return &Trace{
		ID:          uuid.New(),
		Run:         run,
		Initial:     initial.Clone(),
		Probability: 1,
	}
}

// Duration is the time of the last event.
func (t *Trace) Duration() float64 { return t.duration }

func (t *Trace) Len() int { return len(t.Events) }

func (t *Trace) Labels() []string {
	labels := make([]string, len(t.Events))
	for i, e := range t.Events {
		labels[i] = e.Transition.Label()
	}
	return labels
}
