package model

import (
	"fmt"
	"math"
)

// Transform maps an unconstrained real number to a constrained parameter value.
type Transform interface {
	// Forward maps an unconstrained value to the constrained space.
	Forward(u float64) float64
	// Inverse maps a constrained value back. It fails for values outside the
	// constrained space.
	Inverse(v float64) (float64, error)
	// Name describes the transform in summaries.
	Name() string
}

// Identity leaves values unconstrained.
type Identity struct{}

func (Identity) Forward(u float64) float64 { return u }

func (Identity) Inverse(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %v is not finite", v)
	}
	return v, nil
}

func (Identity) Name() string { return "identity" }

// Positive constrains values to (Lower, +Inf) with a shifted softplus.
type Positive struct {
	Lower float64
}

func (p Positive) Forward(u float64) float64 {
	return softplus(u) + p.Lower
}

func (p Positive) Inverse(v float64) (float64, error) {
	y := v - p.Lower
	if !(y > 0) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("value %v is not greater than %v", v, p.Lower)
	}
	// log(exp(y) - 1), rearranged to stay finite for large y
	return y + math.Log(-math.Expm1(-y)), nil
}

func (p Positive) Name() string { return fmt.Sprintf("softplus(>%g)", p.Lower) }

// Interval constrains values to (Lo, Hi) with a scaled sigmoid.
type Interval struct {
	Lo float64
	Hi float64
}

func (b Interval) Forward(u float64) float64 {
	return b.Lo + (b.Hi-b.Lo)*sigmoid(u)
}

func (b Interval) Inverse(v float64) (float64, error) {
	if !(v > b.Lo && v < b.Hi) {
		return 0, fmt.Errorf("value %v is outside (%v, %v)", v, b.Lo, b.Hi)
	}
	return math.Log((v - b.Lo) / (b.Hi - v)), nil
}

func (b Interval) Name() string { return fmt.Sprintf("sigmoid(%g, %g)", b.Lo, b.Hi) }

// Parameter is a named, optionally trainable model parameter.
type Parameter struct {
	name      string
	transform Transform
	raw       float64
	trainable bool
}

// NewParameter creates a trainable parameter holding value.
func NewParameter(name string, value float64, transform Transform) (*Parameter, error) {
	if transform == nil {
		transform = Identity{}
	}
	raw, err := transform.Inverse(value)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", name, err)
	}
	return &Parameter{name: name, transform: transform, raw: raw, trainable: true}, nil
}

// Name returns the parameter name used in summaries.
func (p *Parameter) Name() string { return p.name }

// Transform returns the constraint applied to the parameter.
func (p *Parameter) Transform() Transform { return p.transform }

// Value returns the constrained value.
func (p *Parameter) Value() float64 { return p.transform.Forward(p.raw) }

// SetValue stores a constrained value.
func (p *Parameter) SetValue(v float64) error {
	raw, err := p.transform.Inverse(v)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	p.raw = raw
	return nil
}

// Raw returns the unconstrained value seen by optimizers.
func (p *Parameter) Raw() float64 { return p.raw }

// SetRaw stores an unconstrained value.
func (p *Parameter) SetRaw(u float64) { p.raw = u }

// Trainable reports whether optimizers may change the parameter.
func (p *Parameter) Trainable() bool { return p.trainable }

// SetTrainable marks the parameter as trainable or fixed.
func (p *Parameter) SetTrainable(t bool) { p.trainable = t }

func softplus(u float64) float64 {
	return math.Max(u, 0) + math.Log1p(math.Exp(-math.Abs(u)))
}

func sigmoid(u float64) float64 {
	if u >= 0 {
		return 1 / (1 + math.Exp(-u))
	}
	e := math.Exp(u)
	return e / (1 + e)
}
