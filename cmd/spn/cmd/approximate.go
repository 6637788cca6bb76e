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
	"os"

	"github.com/jt05610/spn/distribution"
	"github.com/jt05610/spn/fit"
	"github.com/jt05610/spn/petrifile/v1/yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	targetKind string
	outputFile string
)

// approximateCmd represents the approximate command
var approximateCmd = &cobra.Command{
	Use:   "approximate label",
	Short: "Convert the delay distribution of a transition to another family",
	Long: `Convert the delay distribution of a transition to another family, either by
fitting it or, for bernstein-exponential, by a mixture of exponentials. With
--output the converted model is written to a new petri file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := distribution.ParseKind(targetKind)
		if err != nil {
			return err
		}
		m, err := loadModel(modelFile)
		if err != nil {
			return err
		}
		t := m.Net.Transition(args[0])
		if t == nil {
			return fmt.Errorf("no transition %q in %s", args[0], m.Net.Name)
		}
		c, err := fit.Convert(t, kind)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s -> %s\n", t.Label(), t.Distribution(), c.Distribution())
		if b, ok := c.Distribution().(*distribution.Bernstein); ok {
			for _, term := range b.Terms() {
				fmt.Fprintf(out, "  %+.6g exp(-%.6g (x - lower))\n", term.Coefficient, term.Rate)
			}
		}
		if outputFile == "" {
			return nil
		}
		if err := m.Net.ReplaceTransition(c); err != nil {
			return err
		}
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := (&yaml.Service{}).Save(cmd.Context(), f, m); err != nil {
			return err
		}
		logger.Info("model written", zap.String("file", outputFile), zap.String("transition", c.Label()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(approximateCmd)
	approximateCmd.Flags().StringVarP(&targetKind, "kind", "k", "bernstein-exponential", "target distribution family")
	approximateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the converted model to this petri file")
}
