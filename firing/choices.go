package firing

import (
	"math"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

const (
	tail       = 1e-9
	quadrature = 2001
)

// Choice is one branch of a firing step: the transition, the probability
// that it is the one selected and the expected time the step takes.
type Choice struct {
	Transition  *spn.Transition
	Probability float64
	Delay       float64
}

// Choices returns the exact branching of a firing step from the enabled set,
// with the same rules as Select.
func Choices(enabled []*spn.Transition) ([]Choice, error) {
	group := PriorityGroup(enabled)
	if len(group) == 0 {
		return nil, nil
	}
	for _, t := range group {
		if t.Distribution() == nil {
			return nil, &spn.TransitionError{Label: t.Label(), Err: distribution.ErrUndefinedDistribution}
		}
	}
	if allImmediate(group) {
		total := 0.0
		for _, t := range group {
			total += t.Weight()
		}
		choices := make([]Choice, len(group))
		for i, t := range group {
			choices[i] = Choice{Transition: t, Probability: t.Weight() / total}
		}
		return choices, nil
	}
	if len(group) == 1 {
		return []Choice{{Transition: group[0], Probability: 1, Delay: group[0].Distribution().Mean()}}, nil
	}
	if rates, ok := exponentialRates(group); ok {
		total := floats.Sum(rates)
		choices := make([]Choice, len(group))
		for i, t := range group {
			choices[i] = Choice{Transition: t, Probability: rates[i] / total, Delay: 1 / total}
		}
		return choices, nil
	}
	return race(group), nil
}

func exponentialRates(group []*spn.Transition) ([]float64, bool) {
	rates := make([]float64, len(group))
	for i, t := range group {
		if t.DistributionKind() != distribution.Exponential {
			return nil, false
		}
		rates[i] = t.Parameters()[0]
	}
	return rates, true
}

func bounds(d distribution.Distribution) (float64, float64) {
	lo, hi := d.Support()
	if math.IsInf(lo, -1) {
		lo = d.Quantile(tail)
	}
	if math.IsInf(hi, 1) {
		hi = d.Quantile(1 - tail)
	}
	return lo, hi
}

// race integrates f_i(x) Π_{j≠i} (1-F_j(x)) for every continuous member.
// Point masses are atoms: only the earliest of them can win, taking the
// probability that no continuous member fired before it.
func race(group []*spn.Transition) []Choice {
	choices := make([]Choice, len(group))
	atom := -1
	continuous := make([]int, 0, len(group))
	for i, t := range group {
		choices[i].Transition = t
		if _, ok := t.Distribution().(*distribution.Point); ok {
			v := t.Distribution().Mean()
			if atom < 0 || v < group[atom].Distribution().Mean() {
				atom = i
			}
			continue
		}
		continuous = append(continuous, i)
	}

	lower, upper := math.Inf(1), math.Inf(1)
	for _, i := range continuous {
		lo, hi := bounds(group[i].Distribution())
		lower = math.Min(lower, lo)
		upper = math.Min(upper, hi)
	}
	if atom >= 0 {
		a := group[atom].Distribution().Mean()
		if len(continuous) == 0 || a <= lower {
			choices[atom].Probability = 1
			choices[atom].Delay = a
			for i := range choices {
				if i != atom {
					choices[i].Delay = a
				}
			}
			return choices
		}
		upper = math.Min(upper, a)
	}

	x := floats.Span(make([]float64, quadrature), lower, upper)
	survival := func(x float64, skip int) float64 {
		s := 1.0
		for _, j := range continuous {
			if j == skip {
				continue
			}
			s *= 1 - group[j].Distribution().Cumulative(x)
		}
		return s
	}

	atomMass := 0.0
	if atom >= 0 {
		atomMass = survival(upper, -1)
		choices[atom].Probability = atomMass
	}
	f := make([]float64, len(x))
	won := make([]float64, len(continuous))
	for k, i := range continuous {
		d := group[i].Distribution()
		for n, xn := range x {
			v := d.Density(xn) * survival(xn, i)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			f[n] = v
		}
		won[k] = math.Max(integrate.Simpsons(x, f), 0)
	}
	if total := floats.Sum(won); total > 0 {
		floats.Scale((1-atomMass)/total, won)
	}
	for k, i := range continuous {
		choices[i].Probability = won[k]
	}

	for n, xn := range x {
		f[n] = survival(xn, -1)
	}
	delay := lower + integrate.Simpsons(x, f)
	for i := range choices {
		choices[i].Delay = delay
	}
	return choices
}
