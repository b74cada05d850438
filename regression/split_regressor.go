package regression

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
	"github.com/YuminosukeSato/conformal/pkg/log"
	"github.com/YuminosukeSato/conformal/scores"
)

// SplitConformalRegressor wraps a point regressor with split conformal
// prediction.
//
// The workflow has three phases: Fit trains the estimator on the training
// split, Conformalize collects conformity scores on a disjoint
// conformalization split, and PredictInterval turns new predictions into
// intervals at the configured confidence levels. With Prefit the estimator
// arrives already trained and Fit must not be called.
type SplitConformalRegressor struct {
	model.BaseEstimator

	// Estimator is the underlying point regressor.
	Estimator model.Regressor
	// ConfidenceLevels are the levels PredictInterval produces.
	ConfidenceLevels []float64
	// Score selects the conformity score family.
	Score scores.ConformityScore
	// Prefit marks the estimator as already trained.
	Prefit bool
	// Verbose enables structured progress logs.
	Verbose bool

	calibration_ *Calibration
}

// NewSplitConformalRegressor creates a split conformal regressor around the
// given estimator, with the absolute score and a 0.9 confidence level.
func NewSplitConformalRegressor(estimator model.Regressor) *SplitConformalRegressor {
	return &SplitConformalRegressor{
		Estimator:        estimator,
		ConfidenceLevels: []float64{0.9},
		Score:            scores.NewAbsolute(),
	}
}

// WithConfidenceLevels sets the confidence levels PredictInterval produces
func (s *SplitConformalRegressor) WithConfidenceLevels(levels ...float64) *SplitConformalRegressor {
	s.ConfidenceLevels = levels
	return s
}

// WithConformityScore sets the conformity score family
func (s *SplitConformalRegressor) WithConformityScore(score scores.ConformityScore) *SplitConformalRegressor {
	s.Score = score
	return s
}

// WithPrefit marks the estimator as already trained
func (s *SplitConformalRegressor) WithPrefit(prefit bool) *SplitConformalRegressor {
	s.Prefit = prefit
	return s
}

// WithVerbose enables progress logging
func (s *SplitConformalRegressor) WithVerbose(verbose bool) *SplitConformalRegressor {
	s.Verbose = verbose
	return s
}

// Fit trains the underlying estimator on the training split.
func (s *SplitConformalRegressor) Fit(X, y mat.Matrix) (err error) {
	defer conferrors.Recover(&err, "SplitConformalRegressor.Fit")

	if s.Prefit {
		return conferrors.NewInvalidInputError("SplitConformalRegressor.Fit",
			"estimator is marked prefit; call Conformalize directly", nil)
	}
	if s.Estimator == nil {
		return conferrors.NewInvalidInputError("SplitConformalRegressor.Fit", "nil estimator", nil)
	}

	rows, cols := X.Dims()
	if err := s.Estimator.Fit(X, y); err != nil {
		return conferrors.NewModelError("SplitConformalRegressor.Fit", "estimator fit failed", err)
	}
	s.SetFitted()

	if s.Verbose {
		logger := log.GetLoggerWithName("regression.split")
		logger.Info("estimator fitted",
			log.ModelNameKey, "SplitConformalRegressor",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, rows,
			log.FeaturesKey, cols)
	}
	return nil
}

// Conformalize scores a held-out conformalization set and stores the
// calibration state. The set must be disjoint from the training data for
// the coverage guarantee to hold.
func (s *SplitConformalRegressor) Conformalize(X, y mat.Matrix) (err error) {
	defer conferrors.Recover(&err, "SplitConformalRegressor.Conformalize")

	if s.Estimator == nil {
		return conferrors.NewInvalidInputError("SplitConformalRegressor.Conformalize", "nil estimator", nil)
	}
	if !s.Prefit && !s.IsFitted() {
		return conferrors.NewNotFittedError("SplitConformalRegressor", "Conformalize")
	}

	cal, err := Calibrate(s.Estimator, X, y, s.Score)
	if err != nil {
		return err
	}
	s.calibration_ = cal

	if s.Verbose {
		logger := log.GetLoggerWithName("regression.split")
		logger.Info("conformalized",
			log.ModelNameKey, "SplitConformalRegressor",
			log.OperationKey, log.OperationConformalize,
			log.ScoreKey, cal.ScoreName(),
			log.CalibrationSizeKey, cal.Len())
	}
	return nil
}

// PredictInterval returns prediction intervals for X at the configured
// confidence levels.
func (s *SplitConformalRegressor) PredictInterval(X mat.Matrix) (result *IntervalResult, err error) {
	defer conferrors.Recover(&err, "SplitConformalRegressor.PredictInterval")

	if !s.Prefit && !s.IsFitted() {
		return nil, conferrors.NewNotFittedError("SplitConformalRegressor", "PredictInterval")
	}
	if s.calibration_ == nil {
		return nil, conferrors.NewNotConformalizedError("SplitConformalRegressor", "PredictInterval")
	}

	start := time.Now()
	result, err = PredictInterval(s.calibration_, s.Estimator, X, s.ConfidenceLevels)
	if err != nil {
		return nil, err
	}

	if s.Verbose {
		rows, _ := X.Dims()
		logger := log.GetLoggerWithName("regression.split")
		logger.Info("intervals predicted",
			log.ModelNameKey, "SplitConformalRegressor",
			log.OperationKey, log.OperationPredictInterval,
			log.SamplesKey, rows,
			log.LevelsKey, s.ConfidenceLevels,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return result, nil
}

// Predict returns the point predictions of the underlying estimator.
func (s *SplitConformalRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.Prefit && !s.IsFitted() {
		return nil, conferrors.NewNotFittedError("SplitConformalRegressor", "Predict")
	}
	if s.Estimator == nil {
		return nil, conferrors.NewInvalidInputError("SplitConformalRegressor.Predict", "nil estimator", nil)
	}
	return s.Estimator.Predict(X)
}

// Calibration exposes the conformalization state, e.g. for persistence.
// It returns nil before Conformalize has run.
func (s *SplitConformalRegressor) Calibration() *Calibration {
	return s.calibration_
}
