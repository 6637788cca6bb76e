package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/firing"
	"github.com/jt05610/spn/marked"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Simulator samples runs of a net under a firing semantics.
type Simulator struct {
	net    *spn.Net
	sem    firing.Semantics
	cfg    Config
	logger *zap.Logger
}

type Option func(*Simulator)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

func New(net *spn.Net, sem firing.Semantics, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		net:    net,
		sem:    sem,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("net", net.Name))
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

// WithRuns returns a simulator that shares everything with s but performs n
// runs per batch.
func (s *Simulator) WithRuns(n int) *Simulator {
	c := *s
	c.cfg.RunCount = n
	return &c
}

// Summary aggregates a batch. Duration moments are weighted by trace
// probability.
type Summary struct {
	Runs             int
	Complete         int
	Truncated        int
	ReachedFinal     int
	MeanDuration     float64
	VarianceDuration float64
}

type Result struct {
	// Traces is nil when the config asks for trace-less runs.
	Traces  []*Trace
	Summary Summary
}

func (s *Simulator) checkMarking(m marked.Marking) error {
	if m != nil && len(m) != len(s.net.Places) {
		return fmt.Errorf("%w: %d places, marking has %d", marked.ErrMarkingSize, len(s.net.Places), len(m))
	}
	return nil
}

// Simulate runs the batch the config asks for: exhaustive exploration when
// Deterministic is set, Monte-Carlo sampling otherwise.
func (s *Simulator) Simulate(ctx context.Context, initial, final marked.Marking) (*Result, error) {
	if !s.cfg.Deterministic {
		return s.Run(ctx, initial, final)
	}
	traces, err := s.Explore(ctx, initial, final)
	if err != nil {
		return nil, err
	}
	res := &Result{Summary: summarizeTraces(traces)}
	if !s.cfg.TraceLess {
		res.Traces = traces
	}
	return res, nil
}

// Run samples RunCount independent runs in parallel. Run i is seeded with
// (RandomSeed, i), so a batch is reproducible regardless of scheduling.
// final may be nil, in which case runs stop when nothing is enabled. With
// TraceLess runs record no events and only their summary is kept.
func (s *Simulator) Run(ctx context.Context, initial, final marked.Marking) (*Result, error) {
	if err := s.checkMarking(initial); err != nil {
		return nil, err
	}
	if err := s.checkMarking(final); err != nil {
		return nil, err
	}
	keep := !s.cfg.TraceLess
	var traces []*Trace
	if keep {
		traces = make([]*Trace, s.cfg.RunCount)
	}
	records := make([]record, s.cfg.RunCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range records {
		i := i
		g.Go(func() error {
			trace, err := s.run(ctx, i, initial, final, keep)
			if err != nil {
				return err
			}
			records[i] = trace.record()
			if keep {
				traces[i] = trace
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &Result{Summary: summarize(records), Traces: traces}
	s.logger.Info("simulation finished",
		zap.Int("runs", res.Summary.Runs),
		zap.Int("complete", res.Summary.Complete),
		zap.Int("truncated", res.Summary.Truncated),
		zap.Float64("meanDuration", res.Summary.MeanDuration),
		zap.String("timeUnit", s.cfg.TimeUnit),
	)
	return res, nil
}

// Stream runs the batch sequentially and hands every trace to fn without
// retaining it. An error from fn stops the batch.
func (s *Simulator) Stream(ctx context.Context, initial, final marked.Marking, fn func(*Trace) error) error {
	if err := s.checkMarking(initial); err != nil {
		return err
	}
	if err := s.checkMarking(final); err != nil {
		return err
	}
	for i := 0; i < s.cfg.RunCount; i++ {
		trace, err := s.run(ctx, i, initial, final, true)
		if err != nil {
			return err
		}
		if err := fn(trace); err != nil {
			return err
		}
	}
	return nil
}

// run plays one run. Events are only recorded when events is set; the step
// count and duration are tracked either way.
func (s *Simulator) run(ctx context.Context, i int, initial, final marked.Marking, events bool) (*Trace, error) {
	rng := rand.New(rand.NewPCG(s.cfg.RandomSeed, uint64(i)))
	sel := firing.NewSelector(s.sem)
	trace := newTrace(i, initial)
	m := initial
	now := 0.0
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if final != nil && m.Equal(final) {
			trace.ReachedFinal = true
			trace.Complete = true
			break
		}
		if steps >= s.cfg.MaxSteps {
			trace.Err = fmt.Errorf("run %d: %w after %d steps", i, ErrStepBound, steps)
			break
		}
		res, err := sel.Next(rng, m)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		if res.State == firing.NoneEnabled {
			trace.Complete = true
			break
		}
		if s.cfg.MaxTime > 0 && now+res.Delay > s.cfg.MaxTime {
			trace.Err = fmt.Errorf("run %d: %w at %v", i, ErrTimeBound, now+res.Delay)
			break
		}
		next, err := s.sem.Fire(m, res.Transition)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		now += res.Delay
		m = next
		steps++
		if events {
			trace.Events = append(trace.Events, Event{Transition: res.Transition, Time: now})
		}
	}
	trace.Final = m.Clone()
	trace.duration = now
	if trace.Err != nil {
		s.logger.Warn("run truncated", zap.Int("run", i), zap.Error(trace.Err))
	}
	return trace, nil
}

func summarizeTraces(traces []*Trace) Summary {
	records := make([]record, len(traces))
	for i, t := range traces {
		records[i] = t.record()
	}
	return summarize(records)
}

func summarize(records []record) Summary {
	var sum Summary
	durations := make([]float64, 0, len(records))
	weights := make([]float64, 0, len(records))
	for _, r := range records {
		sum.Runs++
		if r.complete {
			sum.Complete++
		} else {
			sum.Truncated++
		}
		if r.reachedFinal {
			sum.ReachedFinal++
		}
		durations = append(durations, r.duration)
		weights = append(weights, r.probability)
	}
	if len(durations) > 0 {
		sum.MeanDuration, sum.VarianceDuration = stat.PopMeanVariance(durations, weights)
	}
	return sum
}
