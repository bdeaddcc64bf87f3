// Package config holds the explicit run configuration for dataset generation
// and model training.
//
// Nothing in this package reads the environment. Callers choose a Profile and
// adjust the returned Config before passing it to the entry points that need
// it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// Profile selects a preset size for a run.
type Profile int

const (
	// Full runs the complete experiment.
	Full Profile = iota
	// Fast shrinks datasets and iterations for smoke tests.
	Fast
)

func (p Profile) String() string {
	switch p {
	case Full:
		return "full"
	case Fast:
		return "fast"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile parses "full" or "fast" (case-insensitive).
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return Full, nil
	case "fast":
		return Fast, nil
	default:
		return Full, fmt.Errorf("unknown profile %q (want full or fast)", s)
	}
}

// Precision is the floating point width used for features.
type Precision int

const (
	Float64 Precision = iota
	Float32
)

func (p Precision) String() string {
	if p == Float32 {
		return "float32"
	}
	return "float64"
}

var ErrInvalidConfig = errors.New("invalid config")

// Config is passed explicitly to dataset generation and training.
type Config struct {
	FloatPrecision Precision
	Jitter         float64
	MaxIterations  int
	TrainSize      int
	TestSize       int
	Width          int
	Height         int
	Seed           uint64
	MaxAttempts    int
}

// ForProfile returns the preset configuration for p.
func ForProfile(p Profile) Config {
	cfg := Config{
		FloatPrecision: Float64,
		Jitter:         1e-6,
		MaxIterations:  2000,
		TrainSize:      100,
		TestSize:       300,
		Width:          14,
		Height:         14,
		MaxAttempts:    dataset.DefaultMaxAttempts,
	}
	if p == Fast {
		cfg.MaxIterations = 2
		cfg.TrainSize = 5
		cfg.TestSize = 7
	}
	return cfg
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Jitter < 0:
		return fmt.Errorf("%w: jitter must be non-negative, got %g", ErrInvalidConfig, c.Jitter)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	case c.TrainSize <= 0 || c.TestSize <= 0:
		return fmt.Errorf("%w: train and test sizes must be positive, got %d and %d", ErrInvalidConfig, c.TrainSize, c.TestSize)
	case c.Width < dataset.MinDimension || c.Height < dataset.MinDimension:
		return fmt.Errorf("%w: image must be at least %dx%d, got %dx%d",
			ErrInvalidConfig, dataset.MinDimension, dataset.MinDimension, c.Width, c.Height)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	return nil
}

// TrainOptions returns the dataset options for the training split.
func (c Config) TrainOptions() dataset.Options {
	return c.datasetOptions(c.TrainSize)
}

// TestOptions returns the dataset options for the test split.
func (c Config) TestOptions() dataset.Options {
	return c.datasetOptions(c.TestSize)
}

func (c Config) datasetOptions(n int) dataset.Options {
	return dataset.Options{
		Num:         n,
		Width:       c.Width,
		Height:      c.Height,
		MaxAttempts: c.MaxAttempts,
		Float32:     c.FloatPrecision == Float32,
	}
}
