// Package analysis answers structural questions about a net without running
// it: its incidence matrix, the state equation and the coverability tree.
package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/marked"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Omega stands for an unbounded token count in a coverability tree.
const Omega = math.MaxInt

type Net struct {
	*spn.Net
}

// FiringVector is the row vector counting one firing of transition t.
func (net *Net) FiringVector(t int) *mat.Dense {
	v := make([]float64, len(net.Transitions))
	v[t] = 1
	return mat.NewDense(1, len(net.Transitions), v)
}

func (net *Net) arcNet(t *spn.Transition, p *spn.Place) float64 {
	ret := 0.0
	if toPlace := net.Arc(t, p); toPlace != nil {
		ret += float64(toPlace.Weight)
	}
	if fromPlace := net.Arc(p, t); fromPlace != nil {
		ret -= float64(fromPlace.Weight)
	}
	return ret
}

// Incidence is the transitions by places matrix of token changes caused by
// one firing.
func (net *Net) Incidence() *mat.Dense {
	m := len(net.Places)
	n := len(net.Transitions)
	d := make([]float64, m*n)
	for i, trans := range net.Transitions {
		for j, place := range net.Places {
			d[i*m+j] = net.arcNet(trans, place)
		}
	}
	return mat.NewDense(n, m, d)
}

// Apply returns the marking reached from m after the firings counted in x,
// according to the state equation m' = m + x C. It does not check that the
// firings can happen in any order.
func (net *Net) Apply(m marked.Marking, x []float64) []float64 {
	state := mat.NewDense(1, len(m), toFloats(m))
	var delta mat.Dense
	delta.Mul(mat.NewDense(1, len(x), x), net.Incidence())
	state.Add(state, &delta)
	return state.RawRowView(0)
}

// Consistent reports whether the state equation final = initial + x C has a
// real solution x. When it does not, final is unreachable from initial.
func (net *Net) Consistent(initial, final marked.Marking) bool {
	if len(net.Transitions) == 0 {
		return initial.Equal(final)
	}
	c := net.Incidence()
	var ct mat.Dense
	ct.CloneFrom(c.T())
	diff := toFloats(final)
	floats.Sub(diff, toFloats(initial))
	b := mat.NewVecDense(len(diff), diff)

	var svd mat.SVD
	if !svd.Factorize(&ct, mat.SVDThin) {
		return false
	}
	values := svd.Values(nil)
	rank := 0
	for _, v := range values {
		if v > 1e-9*values[0] {
			rank++
		}
	}
	if rank == 0 {
		return floats.Norm(diff, 2) == 0
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)
	var residual mat.VecDense
	residual.MulVec(&ct, &x)
	residual.SubVec(&residual, b)
	return mat.Norm(&residual, 2) < 1e-6
}

func toFloats(m marked.Marking) []float64 {
	out := make([]float64, len(m))
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

type TreeNode struct {
	Marking    marked.Marking
	Transition *spn.Transition
	Parent     *TreeNode
	Children   []*TreeNode
}

type Tree struct {
	Root *TreeNode
	Size int
}

func key(m marked.Marking) string {
	parts := make([]string, len(m))
	for i, v := range m {
		if v == Omega {
			parts[i] = "ω"
			continue
		}
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (net *Net) enabled(m marked.Marking, index map[string]int, t *spn.Transition) bool {
	for _, arc := range net.Inputs(t) {
		if v := m[index[arc.Src.String()]]; v != Omega && v < arc.Weight {
			return false
		}
	}
	return true
}

func (net *Net) fire(m marked.Marking, index map[string]int, t *spn.Transition) marked.Marking {
	next := m.Clone()
	for _, arc := range net.Inputs(t) {
		if i := index[arc.Src.String()]; next[i] != Omega {
			next[i] -= arc.Weight
		}
	}
	for _, arc := range net.Outputs(t) {
		if i := index[arc.Dest.String()]; next[i] != Omega {
			next[i] += arc.Weight
		}
	}
	return next
}

// accelerate replaces with Omega every count that strictly grew since an
// ancestor the new marking dominates.
func accelerate(node *TreeNode) {
	for par := node.Parent; par != nil; par = par.Parent {
		ge, gt := true, false
		for i, v := range node.Marking {
			if v < par.Marking[i] {
				ge = false
				break
			}
			if v > par.Marking[i] {
				gt = true
			}
		}
		if !ge || !gt {
			continue
		}
		for i, v := range node.Marking {
			if v > par.Marking[i] {
				node.Marking[i] = Omega
			}
		}
	}
}

// Coverability builds the Karp-Miller tree of the net from initial. Guards
// are ignored, so the tree over-approximates the reachable markings. limit
// bounds the number of nodes; zero means no bound.
func (net *Net) Coverability(initial marked.Marking, limit int) *Tree {
	index := make(map[string]int, len(net.Places))
	for i, p := range net.Places {
		index[p.Name] = i
	}
	tree := &Tree{Root: &TreeNode{Marking: initial.Clone()}, Size: 1}
	seen := map[string]bool{key(initial): true}
	queue := []*TreeNode{tree.Root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, t := range net.Transitions {
			if limit > 0 && tree.Size >= limit {
				return tree
			}
			if !net.enabled(node.Marking, index, t) {
				continue
			}
			child := &TreeNode{Marking: net.fire(node.Marking, index, t), Transition: t, Parent: node}
			accelerate(child)
			node.Children = append(node.Children, child)
			tree.Size++
			if k := key(child.Marking); !seen[k] {
				seen[k] = true
				queue = append(queue, child)
			}
		}
	}
	return tree
}

// Covers reports whether some node of the tree holds at least as many
// tokens as target in every place.
func (t *Tree) Covers(target marked.Marking) bool {
	stack := []*TreeNode{t.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		covers := true
		for i, v := range target {
			if node.Marking[i] < v {
				covers = false
				break
			}
		}
		if covers {
			return true
		}
		stack = append(stack, node.Children...)
	}
	return false
}

// Bounded reports whether no place can hold an unbounded number of tokens.
func (t *Tree) Bounded() bool {
	stack := []*TreeNode{t.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range node.Marking {
			if v == Omega {
				return false
			}
		}
		stack = append(stack, node.Children...)
	}
	return true
}
