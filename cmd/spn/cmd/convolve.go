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
	"strconv"
	"strings"

	"github.com/jt05610/spn/convolution"
	"github.com/spf13/cobra"
)

var steps int

// convolveCmd represents the convolve command
var convolveCmd = &cobra.Command{
	Use:   "convolve label[=duration] ...",
	Short: "Compute the duration distribution of a path",
	Long: `Compute the distribution of the total duration of a path of transitions by
convolving their delay distributions. When every step carries an observed
duration, the percentile of the observed total is reported too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(modelFile)
		if err != nil {
			return err
		}
		var (
			root, last *convolution.ReplayStep
			observed   = true
		)
		for _, arg := range args {
			label, value, found := strings.Cut(arg, "=")
			t := m.Net.Transition(label)
			if t == nil {
				return fmt.Errorf("no transition %q in %s", label, m.Net.Name)
			}
			step := &convolution.ReplayStep{Transition: t}
			if found {
				if step.Duration, err = strconv.ParseFloat(value, 64); err != nil {
					return fmt.Errorf("duration of %s: %w", label, err)
				}
			} else {
				observed = false
			}
			if root == nil {
				root = step
			} else {
				last.Children = []*convolution.ReplayStep{step}
			}
			last = step
		}
		d, err := convolution.Tree(cmd.Context(), root, steps)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, d)
		fmt.Fprintf(out, "mean %.4g, variance %.4g\n", d.Mean(), d.Variance())
		for _, p := range []float64{0.05, 0.25, 0.5, 0.75, 0.95} {
			fmt.Fprintf(out, "q%02.0f %.4g\n", 100*p, d.Quantile(p))
		}
		if observed {
			total := convolution.Observed(root)
			fmt.Fprintf(out, "observed %.4g at percentile %.2f\n", total, 100*d.Cumulative(total))
		}
		logger.Debug("convolved path")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convolveCmd)
	convolveCmd.Flags().IntVar(&steps, "steps", convolution.DefaultSteps, "grid cells per convolution")
}
