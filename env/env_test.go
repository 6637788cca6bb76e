package env_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jt05610/spn/env"
	"go.uber.org/zap"
)

func TestLoadEnv_Defaults(t *testing.T) {
	e, err := env.LoadEnv(zap.NewNop(), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := e.Config()
	if cfg.RunCount != 1000 || cfg.Quantile != 0.99 || cfg.MaxSteps != 10000 || cfg.TimeUnit != "s" {
		t.Errorf("config %+v", cfg)
	}
	if cfg.Workers < 1 {
		t.Errorf("workers %d", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadEnv_Variables(t *testing.T) {
	t.Setenv("SPN_RUN_COUNT", "25")
	t.Setenv("SPN_WORKERS", "3")
	dotenv := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(dotenv, []byte("SPN_SEED=42\nSPN_TIME_UNIT=min\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SPN_SEED")
		os.Unsetenv("SPN_TIME_UNIT")
	})
	e, err := env.LoadEnv(zap.NewNop(), dotenv)
	if err != nil {
		t.Fatal(err)
	}
	cfg := e.Config()
	if cfg.RunCount != 25 || cfg.Workers != 3 || cfg.RandomSeed != 42 || cfg.TimeUnit != "min" {
		t.Errorf("config %+v", cfg)
	}
}

func TestEnvironment_Logger(t *testing.T) {
	e := &env.Environment{LogLevel: "debug"}
	logger, err := e.Logger()
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug disabled")
	}
	e.LogLevel = "chatty"
	if _, err := e.Logger(); err == nil {
		t.Error("accepted an unknown level")
	}
}
