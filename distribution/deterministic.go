package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
)

// Point is a law that puts all of its mass on a single value. It backs both
// deterministic delays and immediate (zero delay) transitions.
type Point struct {
	kind  Kind
	value float64
}

var _ Distribution = (*Point)(nil)

// NewDeterministic returns the Dirac delta at value.
func NewDeterministic(value float64) (*Point, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, invalid(Deterministic, "value must be finite, got %v", value)
	}
	return &Point{kind: Deterministic, value: value}, nil
}

// NewImmediate returns the zero delay law of immediate transitions.
func NewImmediate() *Point {
	return &Point{kind: Immediate}
}

func (p *Point) Kind() Kind { return p.kind }

func (p *Point) Value() float64 { return p.value }

func (p *Point) Parameters() []float64 {
	if p.kind == Immediate {
		return nil
	}
	return []float64{p.value}
}

func (p *Point) Sample(*rand.Rand) float64 { return p.value }

func (p *Point) Density(x float64) float64 {
	if x == p.value {
		return math.Inf(1)
	}
	return 0
}

func (p *Point) Cumulative(x float64) float64 {
	if x < p.value {
		return 0
	}
	return 1
}

func (p *Point) Quantile(float64) float64 { return p.value }

func (p *Point) Support() (float64, float64) { return p.value, p.value }

func (p *Point) Mean() float64 { return p.value }

func (p *Point) Variance() float64 { return 0 }

func (p *Point) String() string {
	if p.kind == Immediate {
		return "immediate"
	}
	return fmt.Sprintf("deterministic(value=%s)", strconv.FormatFloat(p.value, 'g', 6, 64))
}
