package spn

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
)

// Node is either a place or a transition. Nodes are identified by name.
type Node interface {
	Kind() NodeKind
	String() string
}
