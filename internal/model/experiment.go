package model

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ironsheep/rectangles-mcp/internal/config"
	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// DefaultMethod is the optimization method requested by Experiment.
const DefaultMethod = "L-BFGS-B"

// Report summarizes one experiment run.
type Report struct {
	Profile            string  `json:"profile,omitempty"`
	TrainSize          int     `json:"train_size"`
	TestSize           int     `json:"test_size"`
	InitialLogLik      float64 `json:"initial_train_log_likelihood"`
	TrainLogLikelihood float64 `json:"train_log_likelihood"`
	TestLogLikelihood  float64 `json:"test_log_likelihood"`
	TrainAccuracy      float64 `json:"train_accuracy"`
	TestAccuracy       float64 `json:"test_accuracy"`
	Optimization       *Result `json:"optimization,omitempty"`
	Summary            string  `json:"summary"`
}

// Experiment generates train and test splits from a Config, optionally
// trains a model on the training split, and scores it on both.
type Experiment struct {
	Config    config.Config
	Optimizer Optimizer
	Method    string

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// NewExperiment returns an experiment using L-BFGS.
func NewExperiment(cfg config.Config) *Experiment {
	return &Experiment{
		Config:    cfg,
		Optimizer: LBFGS{},
		Method:    DefaultMethod,
	}
}

// Datasets builds the training and test splits. The training split uses
// Config.Seed and the test split Config.Seed+1.
func (e *Experiment) Datasets() (train, test *dataset.Dataset, err error) {
	if err := e.Config.Validate(); err != nil {
		return nil, nil, err
	}
	train, err = dataset.BuildDatasetWithOptions(e.Config.TrainOptions(), dataset.NewSource(e.Config.Seed))
	if err != nil {
		return nil, nil, fmt.Errorf("training split: %w", err)
	}
	test, err = dataset.BuildDatasetWithOptions(e.Config.TestOptions(), dataset.NewSource(e.Config.Seed+1))
	if err != nil {
		return nil, nil, fmt.Errorf("test split: %w", err)
	}
	return train, test, nil
}

// Run executes the experiment on m. When train is false the model is scored
// with its current parameters.
func (e *Experiment) Run(ctx context.Context, m TrainableModel, train bool) (*Report, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	trainSet, testSet, err := e.Datasets()
	if err != nil {
		return nil, err
	}
	logger.Printf("generated %d training and %d test images (%dx%d)",
		trainSet.Len(), testSet.Len(), e.Config.Width, e.Config.Height)

	initial, err := m.LogLikelihood(trainSet)
	if err != nil {
		return nil, fmt.Errorf("initial log likelihood: %w", err)
	}

	report := &Report{
		TrainSize:     trainSet.Len(),
		TestSize:      testSet.Len(),
		InitialLogLik: initial,
	}

	if train {
		if e.Optimizer == nil {
			return nil, fmt.Errorf("experiment has no optimizer")
		}
		loss := func() (float64, error) {
			ll, err := m.LogLikelihood(trainSet)
			return -ll, err
		}
		res, err := e.Optimizer.Minimize(ctx, loss, m.Parameters(), Options{
			Method:        e.Method,
			MaxIterations: e.Config.MaxIterations,
		})
		if err != nil {
			return nil, fmt.Errorf("training: %w", err)
		}
		report.Optimization = res
		logger.Printf("training finished after %d iterations: %s (loss %.6g)", res.Iterations, res.Status, res.Loss)
	}

	if report.TrainLogLikelihood, report.TrainAccuracy, err = score(m, trainSet); err != nil {
		return nil, fmt.Errorf("training split: %w", err)
	}
	if report.TestLogLikelihood, report.TestAccuracy, err = score(m, testSet); err != nil {
		return nil, fmt.Errorf("test split: %w", err)
	}
	report.Summary = Summary(m.Parameters())
	logger.Printf("test accuracy %.3f, test log likelihood %.6g", report.TestAccuracy, report.TestLogLikelihood)

	return report, nil
}

func score(m Model, ds *dataset.Dataset) (ll, acc float64, err error) {
	ll, err = m.LogLikelihood(ds)
	if err != nil {
		return 0, 0, err
	}
	probs, err := m.Predict(ds)
	if err != nil {
		return 0, 0, err
	}
	acc, err = Accuracy(probs, ds.Labels)
	return ll, acc, err
}
