package spn

import "fmt"

// Arc is a connection from a place to a transition or a transition to a place.
type Arc struct {
	// Src is the place or transition that is the source of the arc.
	Src Node
	// Dest is the place or transition that is the destination of the arc.
	Dest Node
	// Weight is the number of tokens moved along the arc when its transition fires.
	Weight int
}

// NewArc connects from to to. The weight defaults to 1.
func NewArc(from, to Node, weight ...int) *Arc {
	w := 1
	if len(weight) > 0 {
		w = weight[0]
	}
	return &Arc{
		Src:    from,
		Dest:   to,
		Weight: w,
	}
}

// Place returns the place end of the arc.
func (a *Arc) Place() *Place {
	if p, ok := a.Src.(*Place); ok {
		return p
	}
	p, _ := a.Dest.(*Place)
	return p
}

func (a *Arc) String() string {
	if a.Weight != 1 {
		return fmt.Sprintf("%s -%d-> %s", a.Src, a.Weight, a.Dest)
	}
	return a.Src.String() + " -> " + a.Dest.String()
}
