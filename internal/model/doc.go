// Package model defines the capabilities a rectangle classifier exposes and
// the machinery to train and evaluate one.
//
// Classifiers are consumed only through small interfaces:
//   - Model: LogLikelihood over a dataset and per-sample Predict probabilities
//   - Trainable: the constrained Parameters an optimizer may change
//   - Optimizer: a Minimize entry point over a loss closure
//
// This keeps probabilistic models such as variational Gaussian process
// classifiers swappable: anything satisfying the interfaces can be trained
// and scored by Experiment.
//
// # Parameters
//
// A Parameter stores an unconstrained value and maps it through a Transform
// to the constrained value the model uses. Optimizers only ever see the
// unconstrained values, so every step lands on a valid parameter.
//
// # Outline Classifier
//
// OutlineClassifier is a concrete, non-GP baseline. It measures the single
// outline in each image with package detection and maps the height-width
// difference to a probability through a logistic curve with a trainable
// scale and bias.
package model
