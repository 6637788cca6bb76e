/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"fmt"

	"github.com/jt05610/spn/entropy"
	"github.com/spf13/cobra"
)

var (
	abstraction string
	exact       bool
	interval    int
)

// entropyCmd represents the entropy command
var entropyCmd = &cobra.Command{
	Use:   "entropy",
	Short: "Measure the entropy of the outcomes of a net",
	Long: `Measure the Shannon entropy, in bits, of the outcomes of a net. Outcomes are
traces reduced to a list, multiset or set of activities. With --exact the
state space is explored; otherwise the entropy is estimated from sampled runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := entropy.ParseAbstraction(abstraction)
		if err != nil {
			return err
		}
		cfg := config(cmd)
		s, err := open(cfg)
		if err != nil {
			return err
		}
		calc := entropy.New(s.sim, a, entropy.WithLogger(logger))
		out := cmd.OutOrStdout()
		if exact {
			h, dist, err := calc.Exact(cmd.Context(), s.initial, s.final)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d outcomes, entropy %.6f bits\n", dist.Len(), h)
			return nil
		}
		h, curve, err := calc.Approximate(cmd.Context(), s.initial, s.final, cfg.RunCount, interval)
		if err != nil {
			return err
		}
		for _, p := range curve {
			fmt.Fprintf(out, "%8d %.6f\n", p.Samples, p.Entropy)
		}
		fmt.Fprintf(out, "entropy %.6f bits\n", h)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(entropyCmd)
	entropyCmd.Flags().StringVarP(&abstraction, "abstraction", "a", "list", "outcome abstraction: list, multiset or set")
	entropyCmd.Flags().BoolVar(&exact, "exact", false, "explore the state space instead of sampling")
	entropyCmd.Flags().IntVar(&interval, "interval", 100, "samples between convergence points")
}
