package model

import (
	"context"
	"math"
	"testing"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

func TestNewOutlineClassifier_Jitter(t *testing.T) {
	for _, jitter := range []float64{-0.1, 0.5, 1} {
		if _, err := NewOutlineClassifier(jitter); err == nil {
			t.Errorf("jitter %v: expected error", jitter)
		}
	}
	c, err := NewOutlineClassifier(1e-6)
	if err != nil {
		t.Fatalf("NewOutlineClassifier failed: %v", err)
	}
	if math.Abs(c.Scale.Value()-1) > 1e-9 || c.Bias.Value() != 0 {
		t.Errorf("defaults: scale %v bias %v", c.Scale.Value(), c.Bias.Value())
	}
}

func TestOutlineClassifier_PredictImage(t *testing.T) {
	c, err := NewOutlineClassifier(0)
	if err != nil {
		t.Fatalf("NewOutlineClassifier failed: %v", err)
	}

	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		tall           bool
	}{
		{"tall", 2, 1, 4, 8, true},
		{"wide", 1, 2, 8, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := dataset.NewImage(10, 10)
			if err := dataset.GenerateRectangle(img, tt.x0, tt.y0, tt.x1, tt.y1); err != nil {
				t.Fatalf("GenerateRectangle failed: %v", err)
			}
			p, err := c.PredictImage(img)
			if err != nil {
				t.Fatalf("PredictImage failed: %v", err)
			}
			if (p > 0.5) != tt.tall {
				t.Errorf("p(tall) = %v, want tall=%v", p, tt.tall)
			}
		})
	}

	if _, err := c.PredictImage(dataset.NewImage(10, 10)); err == nil {
		t.Error("expected error for an empty image")
	}
}

func TestOutlineClassifier_JitterBoundsProbabilities(t *testing.T) {
	c, err := NewOutlineClassifier(0.1)
	if err != nil {
		t.Fatalf("NewOutlineClassifier failed: %v", err)
	}
	ds, err := dataset.BuildDataset(30, 14, 14, dataset.NewSource(4))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}
	probs, err := c.Predict(ds)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, p := range probs {
		if p < 0.1 || p > 0.9 {
			t.Errorf("sample %d: p = %v outside [0.1, 0.9]", i, p)
		}
	}
}

func TestOutlineClassifier_Training(t *testing.T) {
	c, err := NewOutlineClassifier(1e-6)
	if err != nil {
		t.Fatalf("NewOutlineClassifier failed: %v", err)
	}
	ds, err := dataset.BuildDataset(40, 14, 14, dataset.NewSource(8))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	before, err := c.LogLikelihood(ds)
	if err != nil {
		t.Fatalf("LogLikelihood failed: %v", err)
	}

	loss := func() (float64, error) {
		ll, err := c.LogLikelihood(ds)
		return -ll, err
	}
	if _, err := (LBFGS{}).Minimize(context.Background(), loss, c.Parameters(), Options{MaxIterations: 50}); err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	after, err := c.LogLikelihood(ds)
	if err != nil {
		t.Fatalf("LogLikelihood failed: %v", err)
	}
	if after < before {
		t.Errorf("training lowered the log likelihood: %v -> %v", before, after)
	}
	if c.Scale.Value() <= 1 {
		t.Errorf("separable data should sharpen the scale, got %v", c.Scale.Value())
	}
}

func TestOutlineClassifier_SetTrainable(t *testing.T) {
	c, err := NewOutlineClassifier(0)
	if err != nil {
		t.Fatalf("NewOutlineClassifier failed: %v", err)
	}
	c.SetTrainable(false)
	for _, p := range c.Parameters() {
		if p.Trainable() {
			t.Errorf("%s still trainable", p.Name())
		}
	}
}

func TestBernoulliLogLikelihood(t *testing.T) {
	ll, err := BernoulliLogLikelihood([]float64{0.8, 0.25}, []float64{1, 0})
	if err != nil {
		t.Fatalf("BernoulliLogLikelihood failed: %v", err)
	}
	want := math.Log(0.8) + math.Log(0.75)
	if math.Abs(ll-want) > 1e-12 {
		t.Errorf("got %v, want %v", ll, want)
	}

	if _, err := BernoulliLogLikelihood([]float64{0.5}, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		probs  []float64
		labels []float64
		want   float64
	}{
		{"all correct", []float64{0.9, 0.1}, []float64{1, 0}, 1},
		{"half", []float64{0.9, 0.9}, []float64{1, 0}, 0.5},
		{"ties predict zero", []float64{0.5}, []float64{0}, 1},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.probs, tt.labels)
			if err != nil {
				t.Fatalf("Accuracy failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
