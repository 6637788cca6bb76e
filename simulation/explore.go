package simulation

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/jt05610/spn/firing"
	"github.com/jt05610/spn/marked"
	"go.uber.org/zap"
)

type path struct {
	marking     marked.Marking
	events      []Event
	probability float64
	time        float64
	seq         int
}

// frontier pops the most probable path first; equally probable paths come
// out in the order they were pushed.
type frontier []*path

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].probability != f[j].probability {
		return f[i].probability > f[j].probability
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*path)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return p
}

// Explore enumerates the runs of the net from initial with their exact
// probabilities, most probable first. Event times are expected times:
// every step advances by the expected minimum delay of its race.
//
// Exploration stops when the emitted probability mass reaches Quantile,
// when MaxStates paths were expanded or when nothing is left to expand.
func (s *Simulator) Explore(ctx context.Context, initial, final marked.Marking) ([]*Trace, error) {
	if err := s.checkMarking(initial); err != nil {
		return nil, err
	}
	if err := s.checkMarking(final); err != nil {
		return nil, err
	}
	var (
		traces    []*Trace
		mass      float64
		expanded  int
		seq       int
		truncated int
	)
	emit := func(p *path, reached, complete bool, err error) {
		t := newTrace(len(traces), initial)
		t.Events = p.events
		if n := len(p.events); n > 0 {
			t.duration = p.events[n-1].Time
		}
		t.Final = p.marking.Clone()
		t.ReachedFinal = reached
		t.Complete = complete
		t.Err = err
		t.Probability = p.probability
		traces = append(traces, t)
		mass += p.probability
		if err != nil {
			truncated++
			s.logger.Debug("path truncated", zap.Int("path", t.Run), zap.Error(err))
		}
	}

	f := &frontier{{marking: initial.Clone(), probability: 1}}
	for f.Len() > 0 && mass < s.cfg.Quantile {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.cfg.MaxStates > 0 && expanded >= s.cfg.MaxStates {
			s.logger.Warn("state budget exhausted",
				zap.Int("maxStates", s.cfg.MaxStates),
				zap.Float64("mass", mass),
			)
			break
		}
		p := heap.Pop(f).(*path)
		if final != nil && p.marking.Equal(final) {
			emit(p, true, true, nil)
			continue
		}
		if len(p.events) >= s.cfg.MaxSteps {
			emit(p, false, false, fmt.Errorf("%w after %d steps", ErrStepBound, len(p.events)))
			continue
		}
		choices, err := firing.Choices(s.sem.Available(p.marking))
		if err != nil {
			return nil, err
		}
		if len(choices) == 0 {
			emit(p, false, true, nil)
			continue
		}
		expanded++
		for _, c := range choices {
			if c.Probability <= 0 {
				continue
			}
			now := p.time + c.Delay
			next, err := s.sem.Fire(p.marking, c.Transition)
			if err != nil {
				return nil, err
			}
			seq++
			child := &path{
				marking:     next,
				events:      append(append(make([]Event, 0, len(p.events)+1), p.events...), Event{Transition: c.Transition, Time: now}),
				probability: p.probability * c.Probability,
				time:        now,
				seq:         seq,
			}
			if s.cfg.MaxTime > 0 && now > s.cfg.MaxTime {
				child.events = p.events
				child.marking = p.marking
				emit(child, false, false, fmt.Errorf("%w at %v", ErrTimeBound, now))
				continue
			}
			heap.Push(f, child)
		}
	}
	s.logger.Info("exploration finished",
		zap.Int("paths", len(traces)),
		zap.Int("expanded", expanded),
		zap.Int("truncated", truncated),
		zap.Float64("mass", mass),
	)
	return traces, nil
}
