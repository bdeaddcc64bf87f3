package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// Model scores and predicts rectangle labels.
type Model interface {
	// LogLikelihood returns the log probability of the dataset's labels
	// under the model.
	LogLikelihood(ds *dataset.Dataset) (float64, error)

	// Predict returns, for each sample, the probability that its label is 1.
	Predict(ds *dataset.Dataset) ([]float64, error)
}

// Trainable exposes a model's parameters to an optimizer.
type Trainable interface {
	Parameters() []*Parameter
	SetTrainable(trainable bool)
}

// TrainableModel is a Model whose parameters can be optimized.
type TrainableModel interface {
	Model
	Trainable
}

var ErrLengthMismatch = errors.New("predictions and labels differ in length")

// BernoulliLogLikelihood sums y*log(p) + (1-y)*log(1-p) over the samples.
func BernoulliLogLikelihood(probs, labels []float64) (float64, error) {
	if len(probs) != len(labels) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(probs), len(labels))
	}
	var ll float64
	for i, p := range probs {
		if labels[i] == 1 {
			ll += math.Log(p)
		} else {
			ll += math.Log1p(-p)
		}
	}
	return ll, nil
}

// Accuracy returns the fraction of samples whose thresholded prediction
// (p > 0.5) matches the label.
func Accuracy(probs, labels []float64) (float64, error) {
	if len(probs) != len(labels) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(probs), len(labels))
	}
	if len(probs) == 0 {
		return 0, nil
	}
	correct := 0
	for i, p := range probs {
		pred := 0.0
		if p > 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(probs)), nil
}

// Summary renders the parameters as an aligned text table.
func Summary(params []*Parameter) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "name\ttransform\ttrainable\tvalue")
	for _, p := range params {
		fmt.Fprintf(w, "%s\t%s\t%t\t%.6g\n", p.Name(), p.Transform().Name(), p.Trainable(), p.Value())
	}
	w.Flush()
	return b.String()
}
