package convolution

import (
	"context"
	"fmt"

	"github.com/jt05610/spn"
	"github.com/jt05610/spn/distribution"
	"golang.org/x/sync/errgroup"
)

// ReplayStep is one transition of a path replayed on a net, with the
// duration that was observed for it and the steps that followed it.
type ReplayStep struct {
	Transition *spn.Transition
	Duration   float64
	Children   []*ReplayStep
}

// Tree returns the distribution of the total duration of the replay rooted
// at root. A leaf contributes its transition's delay distribution; an inner
// step convolves its own distribution with the result of each child in turn.
// Subtrees are evaluated concurrently.
func Tree(ctx context.Context, root *ReplayStep, steps int) (distribution.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	own := root.Transition.Distribution()
	if own == nil {
		return nil, &spn.TransitionError{Label: root.Transition.Label(), Err: distribution.ErrUndefinedDistribution}
	}
	if len(root.Children) == 0 {
		return own, nil
	}
	children := make([]distribution.Distribution, len(root.Children))
	g, ctx := errgroup.WithContext(ctx)
	for i, child := range root.Children {
		i, child := i, child
		g.Go(func() error {
			d, err := Tree(ctx, child, steps)
			if err != nil {
				return err
			}
			children[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d, err := ConvolveAll(steps, append([]distribution.Distribution{own}, children...)...)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", root.Transition.Label(), err)
	}
	return d, nil
}

// Observed sums the observed durations of every step in the tree.
func Observed(root *ReplayStep) float64 {
	total := root.Duration
	for _, child := range root.Children {
		total += Observed(child)
	}
	return total
}

// Percentile places the observed duration of the replay in the distribution
// implied by the net.
func Percentile(ctx context.Context, root *ReplayStep, steps int) (float64, error) {
	d, err := Tree(ctx, root, steps)
	if err != nil {
		return 0, err
	}
	return d.Cumulative(Observed(root)), nil
}
