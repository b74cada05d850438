// Package model defines the capability interfaces a regression model must
// satisfy to be wrapped by the conformal engine, together with the small
// fitted-state machine shared by all estimators in this module.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained on a feature matrix X and an n×1
// target matrix y.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that produces point predictions. Predict returns an
// n×1 matrix with one prediction per input row.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is the full capability the conformal wrappers require of an
// underlying model. Anything that can fit and predict can be conformalized;
// the engine never inspects model internals.
type Regressor interface {
	Fitter
	Predictor
}

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted marks an estimator that has not been trained yet.
	NotFitted EstimatorState = iota
	// Fitted marks an estimator whose training has completed.
	Fitted
)

// BaseEstimator is embedded by every estimator in this module and carries
// its lifecycle state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
