package model

import (
	"fmt"
	"sync"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
	"github.com/ironsheep/rectangles-mcp/internal/detection"
)

// OutlineClassifier predicts p(tall) = jitter + (1-2*jitter) * sigmoid(scale*(h-w) + bias),
// where h and w are the height and width of the largest outline in the image.
type OutlineClassifier struct {
	Scale  *Parameter
	Bias   *Parameter
	Jitter float64

	mu    sync.Mutex
	diffs map[*dataset.Dataset][]float64
}

// NewOutlineClassifier returns a classifier with scale 1 and bias 0. jitter
// keeps probabilities away from 0 and 1 and must lie in [0, 0.5).
func NewOutlineClassifier(jitter float64) (*OutlineClassifier, error) {
	if jitter < 0 || jitter >= 0.5 {
		return nil, fmt.Errorf("jitter must be in [0, 0.5), got %g", jitter)
	}
	scale, err := NewParameter("scale", 1, Interval{Lo: 1e-3, Hi: 50})
	if err != nil {
		return nil, err
	}
	bias, err := NewParameter("bias", 0, Identity{})
	if err != nil {
		return nil, err
	}
	return &OutlineClassifier{
		Scale:  scale,
		Bias:   bias,
		Jitter: jitter,
		diffs:  make(map[*dataset.Dataset][]float64),
	}, nil
}

// Parameters returns scale and bias.
func (c *OutlineClassifier) Parameters() []*Parameter {
	return []*Parameter{c.Scale, c.Bias}
}

// SetTrainable fixes or frees every parameter.
func (c *OutlineClassifier) SetTrainable(trainable bool) {
	for _, p := range c.Parameters() {
		p.SetTrainable(trainable)
	}
}

// Predict returns p(label = 1) for every sample.
func (c *OutlineClassifier) Predict(ds *dataset.Dataset) ([]float64, error) {
	diffs, err := c.measure(ds)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(diffs))
	for i, d := range diffs {
		probs[i] = c.probability(d)
	}
	return probs, nil
}

// PredictImage returns p(label = 1) for a single image.
func (c *OutlineClassifier) PredictImage(img dataset.Image) (float64, error) {
	d, err := heightMinusWidth(img)
	if err != nil {
		return 0, err
	}
	return c.probability(d), nil
}

// LogLikelihood returns the Bernoulli log likelihood of the labels.
func (c *OutlineClassifier) LogLikelihood(ds *dataset.Dataset) (float64, error) {
	probs, err := c.Predict(ds)
	if err != nil {
		return 0, err
	}
	return BernoulliLogLikelihood(probs, ds.Labels)
}

func (c *OutlineClassifier) probability(diff float64) float64 {
	return c.Jitter + (1-2*c.Jitter)*sigmoid(c.Scale.Value()*diff+c.Bias.Value())
}

// measure returns the height-width difference of every sample. Results are
// cached per dataset since datasets are immutable.
func (c *OutlineClassifier) measure(ds *dataset.Dataset) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.diffs[ds]; ok {
		return d, nil
	}
	diffs := make([]float64, ds.Len())
	for i, img := range ds.Images {
		d, err := heightMinusWidth(img)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		diffs[i] = d
	}
	c.diffs[ds] = diffs
	return diffs, nil
}

func heightMinusWidth(img dataset.Image) (float64, error) {
	outlines := detection.FindOutlines(img, 1)
	if len(outlines) == 0 {
		return 0, fmt.Errorf("no outline found in %dx%d image", img.Width, img.Height)
	}
	return float64(outlines[0].Height - outlines[0].Width), nil
}
