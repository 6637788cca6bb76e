package petrifile

import (
	"fmt"
	"strings"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"github.com/jt05610/spn/petrifile"
	"gopkg.in/yaml.v3"
)

// Arc is one end of a transition. In a file it is either a place name or a
// mapping with the place and the arc weight.
type Arc struct {
	Place  string `yaml:"place"`
	Weight int    `yaml:"weight,omitempty"`
}

func (a *Arc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.Weight = 1
		return value.Decode(&a.Place)
	}
	type plain Arc
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = Arc(p)
	if a.Weight == 0 {
		a.Weight = 1
	}
	return nil
}

func (a Arc) MarshalYAML() (interface{}, error) {
	if a.Weight <= 1 {
		return a.Place, nil
	}
	type plain Arc
	return plain(a), nil
}

type Place struct {
	Name  string `yaml:"name"`
	Bound int    `yaml:"bound,omitempty"`
}

type Transition struct {
	Name         string    `yaml:"name"`
	Distribution string    `yaml:"distribution,omitempty"`
	Parameters   []float64 `yaml:"parameters,omitempty,flow"`
	Priority     *int      `yaml:"priority,omitempty"`
	Weight       float64   `yaml:"weight,omitempty"`
	Guard        []string  `yaml:"guard,omitempty"`
	Invisible    bool      `yaml:"invisible,omitempty"`
	Inputs       []Arc     `yaml:"inputs,omitempty"`
	Outputs      []Arc     `yaml:"outputs,omitempty"`
}

type Petrifile struct {
	Petri       petrifile.Version `yaml:"petri"`
	Name        string            `yaml:"name"`
	Places      []Place           `yaml:"places"`
	Transitions []Transition      `yaml:"transitions"`
	Initial     map[string]int    `yaml:"initial,omitempty"`
	Final       map[string]int    `yaml:"final,omitempty"`
}

func (t Transition) transition() (*spn.Transition, error) {
	kind := distribution.Immediate
	if t.Distribution != "" {
		k, err := distribution.ParseKind(t.Distribution)
		if err != nil {
			return nil, &spn.TransitionError{Label: t.Name, Err: err}
		}
		kind = k
	}
	tr, err := spn.NewTransition(t.Name, kind, t.Parameters...)
	if err != nil {
		return nil, err
	}
	if t.Priority != nil {
		tr = tr.WithPriority(*t.Priority)
	}
	if t.Weight != 0 {
		if tr, err = tr.WithWeight(t.Weight); err != nil {
			return nil, err
		}
	}
	if len(t.Guard) > 0 {
		tr = tr.WithGuard(strings.Join(t.Guard, " && "))
	}
	if t.Invisible {
		tr = tr.AsInvisible()
	}
	return tr, nil
}

// Model builds the net the file describes and checks it.
func (p *Petrifile) Model() (*petrifile.Model, error) {
	if p.Petri != "" && p.Petri != petrifile.V1 {
		return nil, fmt.Errorf("unsupported petrifile version %q", p.Petri)
	}
	net := spn.NewNet(p.Name)
	for _, pl := range p.Places {
		net = net.WithPlaces(spn.NewPlace(pl.Name, pl.Bound))
	}
	var arcs []*spn.Arc
	for _, t := range p.Transitions {
		tr, err := t.transition()
		if err != nil {
			return nil, err
		}
		net = net.WithTransitions(tr)
		for _, in := range t.Inputs {
			pl := net.Place(in.Place)
			if pl == nil {
				return nil, fmt.Errorf("transition %s input %s: %w", t.Name, in.Place, spn.ErrNotFound)
			}
			arcs = append(arcs, spn.NewArc(pl, tr, in.Weight))
		}
		for _, out := range t.Outputs {
			pl := net.Place(out.Place)
			if pl == nil {
				return nil, fmt.Errorf("transition %s output %s: %w", t.Name, out.Place, spn.ErrNotFound)
			}
			arcs = append(arcs, spn.NewArc(tr, pl, out.Weight))
		}
	}
	net = net.WithArcs(arcs...)
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return &petrifile.Model{Net: net, Initial: p.Initial, Final: p.Final}, nil
}

type observed interface {
	Observations() []float64
}

// New describes m as a file document.
func New(m *petrifile.Model) (*Petrifile, error) {
	p := &Petrifile{
		Petri:   petrifile.V1,
		Name:    m.Net.Name,
		Initial: m.Initial,
		Final:   m.Final,
	}
	for _, pl := range m.Net.Places {
		p.Places = append(p.Places, Place{Name: pl.Name, Bound: pl.Bound})
	}
	for _, tr := range m.Net.Transitions {
		t := Transition{
			Name:         tr.Label(),
			Distribution: tr.DistributionKind().String(),
			Parameters:   tr.Parameters(),
			Invisible:    tr.Invisible(),
		}
		switch kind := tr.DistributionKind(); {
		case kind.Empirical():
			obs, ok := tr.Distribution().(observed)
			if !ok {
				return nil, &spn.TransitionError{Label: tr.Label(), Err: fmt.Errorf("%w: %s", petrifile.ErrNotSerializable, kind)}
			}
			t.Parameters = obs.Observations()
		case kind == distribution.BernsteinExponential || kind == distribution.Approximate:
			return nil, &spn.TransitionError{Label: tr.Label(), Err: fmt.Errorf("%w: %s", petrifile.ErrNotSerializable, kind)}
		}
		defaultPriority := 0
		if tr.IsImmediate() {
			defaultPriority = 1
		}
		if tr.Priority() != defaultPriority {
			prio := tr.Priority()
			t.Priority = &prio
		}
		if tr.Weight() != 1 {
			t.Weight = tr.Weight()
		}
		if g := tr.Guard(); g != "" {
			t.Guard = []string{g}
		}
		for _, arc := range m.Net.Inputs(tr) {
			t.Inputs = append(t.Inputs, Arc{Place: arc.Src.String(), Weight: arc.Weight})
		}
		for _, arc := range m.Net.Outputs(tr) {
			t.Outputs = append(t.Outputs, Arc{Place: arc.Dest.String(), Weight: arc.Weight})
		}
		p.Transitions = append(p.Transitions, t)
	}
	return p, nil
}
