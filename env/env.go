package env

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/jt05610/spn/simulation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment holds the defaults the command line starts from.
type Environment struct {
	RunCount  int     `env:"SPN_RUN_COUNT" envDefault:"1000"`
	Seed      uint64  `env:"SPN_SEED" envDefault:"0"`
	Quantile  float64 `env:"SPN_QUANTILE" envDefault:"0.99"`
	MaxSteps  int     `env:"SPN_MAX_STEPS" envDefault:"10000"`
	MaxTime   float64 `env:"SPN_MAX_TIME" envDefault:"0"`
	MaxStates int     `env:"SPN_MAX_STATES" envDefault:"100000"`
	Workers   int     `env:"SPN_WORKERS"`
	TimeUnit  string  `env:"SPN_TIME_UNIT" envDefault:"s"`
	LogLevel  string  `env:"SPN_LOG_LEVEL" envDefault:"info"`
}

// LoadEnv reads the given dotenv files, .env by default, into the process
// environment and parses the SPN_ variables. Missing files are skipped.
func LoadEnv(logger *zap.Logger, files ...string) (*Environment, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no dotenv file", zap.String("file", f))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	e := &Environment{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Config is the simulation config the environment describes.
func (e *Environment) Config() simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.RunCount = e.RunCount
	cfg.RandomSeed = e.Seed
	cfg.Quantile = e.Quantile
	cfg.MaxSteps = e.MaxSteps
	cfg.MaxTime = e.MaxTime
	cfg.MaxStates = e.MaxStates
	cfg.TimeUnit = e.TimeUnit
	if e.Workers > 0 {
		cfg.Workers = e.Workers
	}
	return cfg
}

// Logger builds a production logger at the configured level.
func (e *Environment) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(e.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
