// Package entropy measures how many distinct outcomes a net produces, as the
// Shannon entropy of the distribution of its abstracted traces.
package entropy

import (
	"context"
	"fmt"
	"math"

	"github.com/jt05610/spn/marked"
	"github.com/jt05610/spn/simulation"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Shannon returns the entropy in bits of the distribution proportional to
// weights. Weights that are not positive are ignored.
func Shannon(weights []float64) float64 {
	p := make([]float64, 0, len(weights))
	for _, w := range weights {
		if w > 0 && !math.IsInf(w, 0) {
			p = append(p, w)
		}
	}
	total := floats.Sum(p)
	if len(p) == 0 || !(total > 0) {
		return 0
	}
	floats.Scale(1/total, p)
	return stat.Entropy(p) / math.Ln2
}

// Distribution accumulates outcome weights.
type Distribution struct {
	weights map[Outcome]float64
	order   []Outcome
}

func NewDistribution() *Distribution {
	return &Distribution{weights: make(map[Outcome]float64)}
}

func (d *Distribution) Add(o Outcome, w float64) {
	if _, ok := d.weights[o]; !ok {
		d.order = append(d.order, o)
	}
	d.weights[o] += w
}

func (d *Distribution) Weight(o Outcome) float64 { return d.weights[o] }

// Len is the number of distinct outcomes.
func (d *Distribution) Len() int { return len(d.order) }

func (d *Distribution) Entropy() float64 {
	w := make([]float64, len(d.order))
	for i, o := range d.order {
		w[i] = d.weights[o]
	}
	return Shannon(w)
}

// Point is one step of the convergence curve of an approximation.
type Point struct {
	Samples int
	Entropy float64
}

// Calculator computes the entropy of the traces a simulator produces.
type Calculator struct {
	sim         *simulation.Simulator
	abstraction Abstraction
	logger      *zap.Logger
}

type Option func(*Calculator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

func New(sim *simulation.Simulator, a Abstraction, opts ...Option) *Calculator {
	c := &Calculator{
		sim:         sim,
		abstraction: a,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exact explores the net exhaustively and weighs every outcome by the exact
// probability of the paths leading to it. The result is exact up to the
// probability mass the exploration bounds leave out.
func (c *Calculator) Exact(ctx context.Context, initial, final marked.Marking) (float64, *Distribution, error) {
	traces, err := c.sim.Explore(ctx, initial, final)
	if err != nil {
		return 0, nil, fmt.Errorf("exact entropy: %w", err)
	}
	enc := NewEncoder()
	dist := NewDistribution()
	for _, t := range traces {
		dist.Add(enc.Encode(t, c.abstraction), t.Probability)
	}
	h := dist.Entropy()
	c.logger.Info("exact entropy",
		zap.Stringer("abstraction", c.abstraction),
		zap.Int("paths", len(traces)),
		zap.Int("outcomes", dist.Len()),
		zap.Float64("bits", h),
	)
	return h, dist, nil
}

// Approximate estimates the entropy from n sampled runs. Every interval runs
// the running estimate is recorded, so callers can judge convergence.
func (c *Calculator) Approximate(ctx context.Context, initial, final marked.Marking, n, interval int) (float64, []Point, error) {
	if n < 1 {
		return 0, nil, fmt.Errorf("%w: %d samples", simulation.ErrInvalidConfig, n)
	}
	if interval < 1 {
		interval = n
	}
	enc := NewEncoder()
	dist := NewDistribution()
	curve := make([]Point, 0, n/interval+1)
	seen := 0
	err := c.sim.WithRuns(n).Stream(ctx, initial, final, func(t *simulation.Trace) error {
		dist.Add(enc.Encode(t, c.abstraction), 1)
		seen++
		if seen%interval == 0 {
			p := Point{Samples: seen, Entropy: dist.Entropy()}
			curve = append(curve, p)
			c.logger.Debug("entropy estimate", zap.Int("samples", p.Samples), zap.Float64("bits", p.Entropy))
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("approximate entropy: %w", err)
	}
	if seen%interval != 0 {
		curve = append(curve, Point{Samples: seen, Entropy: dist.Entropy()})
	}
	h := dist.Entropy()
	c.logger.Info("approximate entropy",
		zap.Stringer("abstraction", c.abstraction),
		zap.Int("samples", seen),
		zap.Int("outcomes", dist.Len()),
		zap.Float64("bits", h),
	)
	return h, curve, nil
}
