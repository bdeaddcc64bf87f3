package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// LossFunc evaluates the training loss at the parameters' current values.
type LossFunc func() (float64, error)

// Options configures a Minimize call.
type Options struct {
	// Method names the algorithm. LBFGS accepts "L-BFGS-B", "L-BFGS" and
	// "lbfgs"; an empty method selects L-BFGS.
	Method string

	// MaxIterations bounds the number of major iterations. Must be positive.
	MaxIterations int
}

// Result describes a finished optimization.
type Result struct {
	Loss            float64 `json:"loss"`
	Iterations      int     `json:"iterations"`
	FuncEvaluations int     `json:"func_evaluations"`
	Status          string  `json:"status"`
	Message         string  `json:"message,omitempty"`
}

// Optimizer minimizes a loss over the trainable parameters in params.
type Optimizer interface {
	Minimize(ctx context.Context, loss LossFunc, params []*Parameter, opts Options) (*Result, error)
}

var ErrUnknownMethod = errors.New("unknown optimization method")

// LBFGS minimizes with limited-memory BFGS over the unconstrained parameter
// values. Gradients are central finite differences.
//
// Only trainable parameters are varied. When the run ends the parameters hold
// the best location found.
type LBFGS struct {
	// Store is the number of past updates kept. Zero uses the gonum default.
	Store int
}

// Minimize runs the optimizer.
//
// # Errors
//
//   - ErrUnknownMethod for a method LBFGS does not implement
//   - The first error returned by loss, which aborts the run
//   - ctx.Err() when the context is cancelled between evaluations
//
// Line search failures are not errors: the best location is kept and the
// failure is reported in Result.Message.
func (o LBFGS) Minimize(ctx context.Context, loss LossFunc, params []*Parameter, opts Options) (*Result, error) {
	switch strings.ToLower(opts.Method) {
	case "", "l-bfgs-b", "l-bfgs", "lbfgs":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", opts.MaxIterations)
	}

	var trainable []*Parameter
	for _, p := range params {
		if p.Trainable() {
			trainable = append(trainable, p)
		}
	}
	if len(trainable) == 0 {
		v, err := loss()
		if err != nil {
			return nil, err
		}
		return &Result{Loss: v, FuncEvaluations: 1, Status: "NoTrainableParameters"}, nil
	}

	x0 := make([]float64, len(trainable))
	for i, p := range trainable {
		x0[i] = p.Raw()
	}

	var lossErr error
	f := func(x []float64) float64 {
		if lossErr != nil {
			return math.Inf(1)
		}
		for i, p := range trainable {
			p.SetRaw(x[i])
		}
		v, err := loss()
		if err != nil {
			lossErr = err
			return math.Inf(1)
		}
		return v
	}

	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			if lossErr != nil {
				return optimize.Failure, lossErr
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{MajorIterations: opts.MaxIterations}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{Store: o.Store})
	if lossErr != nil {
		return nil, lossErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	for i, p := range trainable {
		p.SetRaw(res.X[i])
	}

	out := &Result{
		Loss:            res.F,
		Iterations:      res.Stats.MajorIterations,
		FuncEvaluations: res.Stats.FuncEvaluations,
		Status:          res.Status.String(),
	}
	if err != nil {
		out.Message = err.Error()
	}
	return out, nil
}
