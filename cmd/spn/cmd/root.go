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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jt05610/spn/env"
	"github.com/jt05610/spn/marked"
	"github.com/jt05610/spn/petrifile"
	"github.com/jt05610/spn/petrifile/v1/yaml"
	"github.com/jt05610/spn/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	modelFile string
	envFile   string
	runCount  int
	seed      uint64
	quantile  float64
	maxSteps  int
	maxTime   float64
	workers   int
	logLevel  string

	environment *env.Environment
	logger      = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spn",
	Short: "Simulate and analyze stochastic Petri nets",
	Long: `spn runs stochastic Petri nets described in petri files. It samples
runs, explores the state space exactly, measures the entropy of the outcomes
and computes duration distributions by convolution.

Defaults are read from SPN_ environment variables and from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		environment, err = env.LoadEnv(zap.NewNop(), envFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			environment.LogLevel = logLevel
		}
		logger, err = environment.Logger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFile, "model", "m", "", "petri file describing the net")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with SPN_ defaults")
	rootCmd.PersistentFlags().IntVarP(&runCount, "runs", "n", 1000, "number of runs")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed")
	rootCmd.PersistentFlags().Float64VarP(&quantile, "quantile", "q", 0.99, "probability mass after which exploration stops")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max-steps", 10000, "step bound of a run")
	rootCmd.PersistentFlags().Float64Var(&maxTime, "max-time", 0, "time bound of a run, 0 for none")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "parallel runs, 0 for one per CPU")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
}

// config starts from the environment and applies the flags that were set.
func config(cmd *cobra.Command) simulation.Config {
	cfg := environment.Config()
	flags := cmd.Flags()
	if flags.Changed("runs") {
		cfg.RunCount = runCount
	}
	if flags.Changed("seed") {
		cfg.RandomSeed = seed
	}
	if flags.Changed("quantile") {
		cfg.Quantile = quantile
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("max-time") {
		cfg.MaxTime = maxTime
	}
	if flags.Changed("workers") && workers > 0 {
		cfg.Workers = workers
	}
	return cfg
}

type session struct {
	model   *petrifile.Model
	net     *marked.Net
	initial marked.Marking
	final   marked.Marking
	sim     *simulation.Simulator
}

func loadModel(path string) (*petrifile.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("no model file, use --model")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return (&yaml.Service{}).Load(context.Background(), f)
}

func open(cfg simulation.Config) (*session, error) {
	m, err := loadModel(modelFile)
	if err != nil {
		return nil, err
	}
	mn, err := marked.New(m.Net)
	if err != nil {
		return nil, err
	}
	s := &session{model: m, net: mn}
	if s.initial, err = mn.NewMarking(m.Initial); err != nil {
		return nil, fmt.Errorf("initial marking: %w", err)
	}
	if m.Final != nil {
		if s.final, err = mn.NewMarking(m.Final); err != nil {
			return nil, fmt.Errorf("final marking: %w", err)
		}
	}
	s.sim, err = simulation.New(m.Net, mn, cfg, simulation.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("model loaded",
		zap.String("file", modelFile),
		zap.String("net", m.Net.Name),
		zap.Int("places", len(m.Net.Places)),
		zap.Int("transitions", len(m.Net.Transitions)),
	)
	return s, nil
}
