package spn

var _ Node = (*Place)(nil)

// Place represents a place.
type Place struct {
	// Name identifies the place within its net.
	Name string
	// Bound is the maximum number of tokens the place can hold. Zero means unbounded.
	Bound int
}

// NewPlace creates a new place. Without a bound the place is unbounded.
func NewPlace(name string, bound ...int) *Place {
	b := 0
	if len(bound) > 0 {
		b = bound[0]
	}
	return &Place{
		Name:  name,
		Bound: b,
	}
}

func (p *Place) Kind() NodeKind { return PlaceNode }

func (p *Place) String() string { return p.Name }
