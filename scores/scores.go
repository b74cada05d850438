// Package scores provides conformity scores for conformal regression.
//
// A conformity score turns a (target, prediction) pair into a single
// nonconformity value; its Bounds method inverts the score around a new
// prediction to recover a prediction interval from a calibrated quantile.
// Larger scores mean the model missed by more.
package scores

import (
	"math"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// ConformityScore defines the interface for conformity score families
type ConformityScore interface {
	// Score calculates the nonconformity value for a single sample
	Score(yTrue, yPred float64) (float64, error)

	// Bounds inverts the score around a prediction: given the calibrated
	// quantile q it returns the interval [lower, upper] for the sample
	Bounds(yPred, quantile float64) (lower, upper float64, err error)

	// Name returns the name of the score family
	Name() string
}

// Absolute implements the absolute residual score |y - yPred|.
// Intervals have constant width 2q across the whole input space.
type Absolute struct{}

func NewAbsolute() *Absolute {
	return &Absolute{}
}

func (s *Absolute) Score(yTrue, yPred float64) (float64, error) {
	return math.Abs(yTrue - yPred), nil
}

func (s *Absolute) Bounds(yPred, quantile float64) (float64, float64, error) {
	return yPred - quantile, yPred + quantile, nil
}

func (s *Absolute) Name() string {
	return "absolute"
}

// Gamma implements the relative residual score |y - yPred| / yPred.
// Interval width scales with the magnitude of the prediction, which suits
// heteroscedastic targets such as prices, durations or counts. Both the
// target and the prediction must be strictly positive; zero or negative
// inputs are rejected before any non-finite value can be produced.
type Gamma struct{}

func NewGamma() *Gamma {
	return &Gamma{}
}

func (s *Gamma) Score(yTrue, yPred float64) (float64, error) {
	if yPred <= 0 {
		return 0, conferrors.NewNumericDomainError("Score", s.Name(), -1, yPred, "prediction must be strictly positive")
	}
	if yTrue <= 0 {
		return 0, conferrors.NewNumericDomainError("Score", s.Name(), -1, yTrue, "target must be strictly positive")
	}
	return math.Abs(yTrue-yPred) / yPred, nil
}

func (s *Gamma) Bounds(yPred, quantile float64) (float64, float64, error) {
	if yPred <= 0 {
		return 0, 0, conferrors.NewNumericDomainError("Bounds", s.Name(), -1, yPred, "prediction must be strictly positive")
	}
	return yPred * (1 - quantile), yPred * (1 + quantile), nil
}

func (s *Gamma) Name() string {
	return "gamma"
}

// ByName creates the conformity score registered under the given name.
// It is used when restoring persisted calibration state.
func ByName(name string) (ConformityScore, error) {
	switch name {
	case "absolute", "absolute_residual":
		return NewAbsolute(), nil
	case "gamma", "relative_residual":
		return NewGamma(), nil
	default:
		return nil, conferrors.NewInvalidInputError("ByName", "unknown conformity score", name)
	}
}
