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
	"math"
	"strings"

	"github.com/jt05610/spn/simulation"
	"github.com/spf13/cobra"
)

var showTraces bool

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Sample runs of a net",
	Long: `Sample runs of a net from its initial marking until the final marking is
reached, nothing is enabled or a bound is hit, and summarize their durations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config(cmd)
		cfg.TraceLess = !showTraces
		s, err := open(cfg)
		if err != nil {
			return err
		}
		res, err := s.sim.Run(cmd.Context(), s.initial, s.final)
		if err != nil {
			return err
		}
		if showTraces {
			for _, t := range res.Traces {
				printTrace(cmd, t, cfg.TimeUnit)
			}
		}
		sum := res.Summary
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "runs:          %d\n", sum.Runs)
		fmt.Fprintf(out, "complete:      %d\n", sum.Complete)
		fmt.Fprintf(out, "truncated:     %d\n", sum.Truncated)
		fmt.Fprintf(out, "reached final: %d\n", sum.ReachedFinal)
		fmt.Fprintf(out, "duration:      %.4g ± %.4g %s\n", sum.MeanDuration, math.Sqrt(sum.VarianceDuration), cfg.TimeUnit)
		return nil
	},
}

func printTrace(cmd *cobra.Command, t *simulation.Trace, unit string) {
	steps := make([]string, len(t.Events))
	for i, e := range t.Events {
		steps[i] = fmt.Sprintf("%s@%.4g", e.Transition.Label(), e.Time)
	}
	status := "complete"
	if !t.Complete {
		status = t.Err.Error()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s p=%.4g %.4g%s [%s] %s\n", t.ID, t.Probability, t.Duration(), unit, strings.Join(steps, " "), status)
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().BoolVar(&showTraces, "traces", false, "print every trace")
}
