package entropy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jt05610/spn/simulation"
)

var ErrUnknownAbstraction = errors.New("unknown abstraction")

// Abstraction reduces an encoded trace before outcomes are counted. Each
// level keeps less information than the previous one.
type Abstraction int

const (
	// List keeps the activity sequence as is.
	List Abstraction = iota
	// Multiset forgets the order but keeps repetitions.
	Multiset
	// Set forgets order and repetitions.
	Set
)

var abstractionNames = map[Abstraction]string{
	List:     "list",
	Multiset: "multiset",
	Set:      "set",
}

func (a Abstraction) String() string {
	if s, ok := abstractionNames[a]; ok {
		return s
	}
	return "unknown"
}

func ParseAbstraction(s string) (Abstraction, error) {
	for a, name := range abstractionNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAbstraction, s)
}

func (a Abstraction) apply(seq []int) []int {
	switch a {
	case Multiset:
		sort.Ints(seq)
	case Set:
		sort.Ints(seq)
		out := seq[:0]
		for i, v := range seq {
			if i == 0 || v != seq[i-1] {
				out = append(out, v)
			}
		}
		seq = out
	}
	return seq
}

// Outcome is the comparable key of an abstracted trace.
type Outcome string

// Encoder gives every activity a stable integer identifier in order of first
// appearance. It is not safe for concurrent use.
type Encoder struct {
	ids map[string]int
}

func NewEncoder() *Encoder {
	return &Encoder{ids: make(map[string]int)}
}

// ID returns the identifier of label, assigning the next free one on first
// use.
func (e *Encoder) ID(label string) int {
	id, ok := e.ids[label]
	if !ok {
		id = len(e.ids)
		e.ids[label] = id
	}
	return id
}

// Sequence encodes the visible activities of trace in firing order.
// Invisible transitions are skipped.
func (e *Encoder) Sequence(trace *simulation.Trace) []int {
	seq := make([]int, 0, len(trace.Events))
	for _, ev := range trace.Events {
		if ev.Transition.Invisible() {
			continue
		}
		seq = append(seq, e.ID(ev.Transition.Label()))
	}
	return seq
}

// Encode returns the outcome of trace under abstraction a.
func (e *Encoder) Encode(trace *simulation.Trace, a Abstraction) Outcome {
	seq := a.apply(e.Sequence(trace))
	var sb strings.Builder
	for i, v := range seq {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return Outcome(sb.String())
}
