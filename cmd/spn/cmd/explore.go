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

	"github.com/jt05610/spn/analysis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var maxStates int

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Enumerate the runs of a net with their exact probabilities",
	Long: `Enumerate the runs of a net, most probable first, until the quantile of
probability mass is covered or the state budget is spent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config(cmd)
		cfg.Deterministic = true
		if cmd.Flags().Changed("max-states") {
			cfg.MaxStates = maxStates
		}
		s, err := open(cfg)
		if err != nil {
			return err
		}
		if s.final != nil {
			an := &analysis.Net{Net: s.model.Net}
			if !an.Consistent(s.initial, s.final) {
				logger.Warn("final marking violates the state equation, it is unreachable")
			} else if !an.Coverability(s.initial, cfg.MaxStates).Covers(s.final) {
				logger.Warn("final marking is not covered by the coverability tree", zap.Int("limit", cfg.MaxStates))
			}
		}
		res, err := s.sim.Simulate(cmd.Context(), s.initial, s.final)
		if err != nil {
			return err
		}
		mass := 0.0
		for _, t := range res.Traces {
			mass += t.Probability
			printTrace(cmd, t, cfg.TimeUnit)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "paths: %d, probability mass: %.6f, expected duration: %.4g %s\n",
			len(res.Traces), mass, res.Summary.MeanDuration, cfg.TimeUnit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().IntVar(&maxStates, "max-states", 100000, "number of expansions before exploration stops")
}
