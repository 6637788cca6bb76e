package simulation

import (
	"errors"
	"fmt"
	"runtime"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Config controls a batch of runs.
type Config struct {
	// RunCount is the number of Monte-Carlo runs.
	RunCount int

	// TimeUnit labels simulated time in logs and reports.
	TimeUnit string

	// RandomSeed seeds every run together with the run index.
	RandomSeed uint64

	// Deterministic switches to exhaustive state space exploration.
	Deterministic bool

	// Quantile stops exploration once this much probability mass was emitted.
	Quantile float64

	// TraceLess drops the traces and keeps only the summary.
	TraceLess bool

	// MaxSteps bounds the number of firings in one run.
	MaxSteps int

	// MaxTime bounds simulated time in one run. Zero means no bound.
	MaxTime float64

	// MaxStates bounds the number of expansions during exploration. Zero
	// means no bound.
	MaxStates int

	// Workers is the number of runs executed in parallel.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		RunCount:  1000,
		TimeUnit:  "s",
		Quantile:  0.99,
		MaxSteps:  10000,
		MaxStates: 100000,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

func (c Config) Validate() error {
	switch {
	case c.RunCount < 1 && !c.Deterministic:
		return fmt.Errorf("%w: run count %d", ErrInvalidConfig, c.RunCount)
	case !(c.Quantile > 0 && c.Quantile <= 1):
		return fmt.Errorf("%w: quantile %v not in (0, 1]", ErrInvalidConfig, c.Quantile)
	case c.MaxSteps < 1:
		return fmt.Errorf("%w: max steps %d", ErrInvalidConfig, c.MaxSteps)
	case c.MaxTime < 0:
		return fmt.Errorf("%w: max time %v", ErrInvalidConfig, c.MaxTime)
	case c.MaxStates < 0:
		return fmt.Errorf("%w: max states %d", ErrInvalidConfig, c.MaxStates)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
