package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garciat/kinfer/diag"
)

type Config struct {
	// Workers bounds the number of files checked in parallel.
	Workers int            `yaml:"workers"`
	Color   diag.ColorMode `yaml:"color"`
	// Debug lists the trace categories to enable: unify, resolve, checker
	// or all.
	Debug []string `yaml:"debug"`
	// Stubs are extra declaration files layered over the prelude.
	Stubs []string `yaml:"stubs"`
}

func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Color:   diag.ColorAuto,
	}
}

// LoadConfig reads the YAML file at path, if any, over the defaults and then
// applies the KINFER_* environment overrides. A .env file in the working
// directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if workers := os.Getenv("KINFER_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid KINFER_WORKERS %q: %w", workers, err)
		}
		c.Workers = n
	}
	if color := os.Getenv("KINFER_COLOR"); color != "" {
		c.Color = diag.ColorMode(color)
	}
	if debug := os.Getenv("KINFER_DEBUG"); debug != "" {
		c.Debug = strings.Split(debug, ",")
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.Color {
	case diag.ColorAuto, diag.ColorAlways, diag.ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q", c.Color)
	}
	return nil
}
