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
	"os"

	"github.com/jt05610/spn/graphviz"
	"github.com/spf13/cobra"
)

var (
	renderFormat string
	renderOutput string
	renderLaws   bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the net with its initial marking",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := graphviz.ParseFormat(renderFormat)
		if err != nil {
			return err
		}
		m, err := loadModel(modelFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if renderOutput != "" {
			f, err := os.Create(renderOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		w := graphviz.New(&graphviz.Config{
			Name:   m.Net.Name,
			Format: format,
			Laws:   renderLaws,
		})
		return w.Flush(out, m.Net, m.Initial)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "dot", "output format: dot, svg, png or jpg")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "file to write, standard output if empty")
	renderCmd.Flags().BoolVar(&renderLaws, "laws", true, "show delay distributions on timed transitions")
}
