package regression

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	"github.com/YuminosukeSato/conformal/core/parallel"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
	"github.com/YuminosukeSato/conformal/pkg/log"
	"github.com/YuminosukeSato/conformal/scores"
	"github.com/YuminosukeSato/conformal/split"
)

// CV+ aggregation touches every calibration score per test sample, so
// parallel execution pays off much earlier than in the split method.
const crossParallelThreshold = 100

// CrossConformalRegressor implements cross-conformal prediction intervals
// (the CV+ method).
//
// Fit trains one estimator per fold plus a final model on all rows. Every
// training sample is scored by the fold model that did not see it, which
// reuses all data for both fitting and conformalization. PredictInterval
// aggregates the per-fold candidate bounds into an interval per sample.
type CrossConformalRegressor struct {
	model.BaseEstimator

	// NewEstimator creates a fresh estimator for each fold and for the
	// final full-data model. Fold models train concurrently, so the
	// factory must return independent instances.
	NewEstimator func() model.Regressor
	// CV controls the fold assignment.
	CV *split.KFold
	// ConfidenceLevels are the levels PredictInterval produces.
	ConfidenceLevels []float64
	// Score selects the conformity score family.
	Score scores.ConformityScore
	// Verbose enables structured progress logs.
	Verbose bool

	foldModels_ []model.Regressor
	foldOf_     []int
	calScores_  []float64
	fullModel_  model.Regressor
}

// NewCrossConformalRegressor creates a cross-conformal regressor with a
// shuffled 5-fold split, the absolute score and a 0.9 confidence level.
func NewCrossConformalRegressor(newEstimator func() model.Regressor) *CrossConformalRegressor {
	return &CrossConformalRegressor{
		NewEstimator:     newEstimator,
		CV:               split.NewKFold(5, true, 42),
		ConfidenceLevels: []float64{0.9},
		Score:            scores.NewAbsolute(),
	}
}

// WithCV sets the k-fold splitter
func (s *CrossConformalRegressor) WithCV(cv *split.KFold) *CrossConformalRegressor {
	s.CV = cv
	return s
}

// WithConfidenceLevels sets the confidence levels PredictInterval produces
func (s *CrossConformalRegressor) WithConfidenceLevels(levels ...float64) *CrossConformalRegressor {
	s.ConfidenceLevels = levels
	return s
}

// WithConformityScore sets the conformity score family
func (s *CrossConformalRegressor) WithConformityScore(score scores.ConformityScore) *CrossConformalRegressor {
	s.Score = score
	return s
}

// WithVerbose enables progress logging
func (s *CrossConformalRegressor) WithVerbose(verbose bool) *CrossConformalRegressor {
	s.Verbose = verbose
	return s
}

// Fit trains the fold models concurrently, scores every sample out of fold
// and fits the final full-data model.
func (s *CrossConformalRegressor) Fit(X, y mat.Matrix) (err error) {
	const op = "CrossConformalRegressor.Fit"
	defer conferrors.Recover(&err, op)

	if s.NewEstimator == nil {
		return conferrors.NewInvalidInputError(op, "nil estimator factory", nil)
	}
	if s.Score == nil {
		return conferrors.NewInvalidInputError(op, "nil conformity score", nil)
	}
	if s.CV == nil {
		return conferrors.NewInvalidInputError(op, "nil cross-validator", nil)
	}

	n, cols := X.Dims()
	if n == 0 {
		return conferrors.NewInvalidInputError(op, "empty data", nil)
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return conferrors.NewDimensionError(op, n, yRows, 0)
	}
	if yCols != 1 {
		return conferrors.NewDimensionError(op, 1, yCols, 1)
	}

	folds, err := s.CV.Split(X, y)
	if err != nil {
		return err
	}

	foldModels := make([]model.Regressor, len(folds))
	foldOf := make([]int, n)
	calScores := make([]float64, n)

	// Each goroutine writes only its own fold's test indices, so the
	// shared slices need no locking.
	var wg sync.WaitGroup
	errs := make([]error, len(folds))
	for fi := range folds {
		wg.Add(1)
		go func(fi int) {
			defer wg.Done()
			defer conferrors.Recover(&errs[fi], fmt.Sprintf("%s fold %d", op, fi))

			fold := folds[fi]
			est := s.NewEstimator()
			if est == nil {
				errs[fi] = conferrors.NewInvalidInputError(op, "estimator factory returned nil", fi)
				return
			}

			XTrain, yTrain := split.Take(X, y, fold.TrainIndices)
			if err := est.Fit(XTrain, yTrain); err != nil {
				errs[fi] = conferrors.NewModelError(op, fmt.Sprintf("fold %d estimator fit failed", fi), err)
				return
			}

			XTest, _ := split.Take(X, y, fold.TestIndices)
			preds, err := predictColumn(op, est, XTest, len(fold.TestIndices))
			if err != nil {
				errs[fi] = err
				return
			}

			for j, idx := range fold.TestIndices {
				v, err := s.Score.Score(y.At(idx, 0), preds[j])
				if err != nil {
					errs[fi] = scoreErrorAt(op, err, idx)
					return
				}
				if err := conferrors.CheckScalar(op, v, idx); err != nil {
					errs[fi] = err
					return
				}
				calScores[idx] = v
				foldOf[idx] = fi
			}
			foldModels[fi] = est
		}(fi)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}

	full := s.NewEstimator()
	if full == nil {
		return conferrors.NewInvalidInputError(op, "estimator factory returned nil", nil)
	}
	if err := full.Fit(X, y); err != nil {
		return conferrors.NewModelError(op, "full estimator fit failed", err)
	}

	s.foldModels_ = foldModels
	s.foldOf_ = foldOf
	s.calScores_ = calScores
	s.fullModel_ = full
	s.SetFitted()

	if s.Verbose {
		logger := log.GetLoggerWithName("regression.cross")
		logger.Info("cross-conformal fit complete",
			log.ModelNameKey, "CrossConformalRegressor",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, n,
			log.FeaturesKey, cols,
			log.FoldsKey, len(folds),
			log.ScoreKey, s.Score.Name())
	}
	return nil
}

// PredictInterval aggregates the per-fold candidate bounds into one
// interval per sample and confidence level.
//
// For each test point the fold model of every calibration sample t
// contributes a candidate interval by inverting the score around its own
// prediction with score quantile calScores[t]. The lower bound is the
// kLo-th smallest candidate lower bound, the upper bound the kHi-th
// smallest candidate upper bound.
func (s *CrossConformalRegressor) PredictInterval(X mat.Matrix) (result *IntervalResult, err error) {
	const op = "CrossConformalRegressor.PredictInterval"
	defer conferrors.Recover(&err, op)

	if !s.IsFitted() {
		return nil, conferrors.NewNotFittedError("CrossConformalRegressor", "PredictInterval")
	}
	if len(s.ConfidenceLevels) == 0 {
		return nil, conferrors.NewInvalidInputError(op, "no confidence levels requested", nil)
	}
	m, _ := X.Dims()
	if m == 0 {
		return nil, conferrors.NewInvalidInputError(op, "empty test set", nil)
	}

	n := len(s.calScores_)

	type rankPair struct{ lo, hi int }
	ranks := make([]rankPair, len(s.ConfidenceLevels))
	for li, level := range s.ConfidenceLevels {
		if !(level > 0 && level < 1) {
			return nil, conferrors.NewInvalidInputError(op, "confidence level must be in (0, 1)", level)
		}
		lo, hi := crossRanks(level, n)
		ranks[li] = rankPair{lo: lo, hi: hi}
	}

	start := time.Now()

	foldPreds := make([][]float64, len(s.foldModels_))
	for fi, fm := range s.foldModels_ {
		preds, err := predictColumn(op, fm, X, m)
		if err != nil {
			return nil, conferrors.Wrapf(err, "fold %d", fi)
		}
		foldPreds[fi] = preds
	}

	fullPreds, err := predictColumn(op, s.fullModel_, X, m)
	if err != nil {
		return nil, err
	}

	intervals := make([][]Interval, len(s.ConfidenceLevels))
	for li := range intervals {
		intervals[li] = make([]Interval, m)
	}

	err = parallel.TryParallelize(m, crossParallelThreshold, func(first, last int) error {
		lows := make([]float64, n)
		highs := make([]float64, n)

		for i := first; i < last; i++ {
			for t := 0; t < n; t++ {
				lo, hi, err := s.Score.Bounds(foldPreds[s.foldOf_[t]][i], s.calScores_[t])
				if err != nil {
					return scoreErrorAt(op, err, i)
				}
				lows[t] = lo
				highs[t] = hi
			}
			sort.Float64s(lows)
			sort.Float64s(highs)

			for li, rp := range ranks {
				intervals[li][i] = Interval{Lower: lows[rp.lo-1], Upper: highs[rp.hi-1]}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &IntervalResult{
		Pred:      fullPreds,
		Levels:    append([]float64(nil), s.ConfidenceLevels...),
		Intervals: intervals,
	}

	if s.Verbose {
		logger := log.GetLoggerWithName("regression.cross")
		logger.Info("intervals predicted",
			log.ModelNameKey, "CrossConformalRegressor",
			log.OperationKey, log.OperationPredictInterval,
			log.SamplesKey, m,
			log.LevelsKey, s.ConfidenceLevels,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return result, nil
}

// Predict returns the point predictions of the full-data model.
func (s *CrossConformalRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, conferrors.NewNotFittedError("CrossConformalRegressor", "Predict")
	}
	return s.fullModel_.Predict(X)
}

// crossRanks returns the candidate ranks for the CV+ interval at the given
// confidence level: kLo = floor((1-confidence) * (n+1)) for the lower bound
// and kHi = ceil(confidence * (n+1)) for the upper bound, both clipped to
// [1, n]. Clipping kLo up to 1 widens the interval and is safe; clipping
// kHi down to n means the folds cannot honor the requested confidence, so
// an UndercoverageWarning is emitted.
func crossRanks(confidence float64, n int) (kLo, kHi int) {
	rawLo := (1 - confidence) * float64(n+1)
	kLo = int(math.Floor(rawLo + rawLo*1e-9))
	if kLo < 1 {
		kLo = 1
	}
	if kLo > n {
		kLo = n
	}

	rawHi := confidence * float64(n+1)
	kHi = int(math.Ceil(rawHi - rawHi*1e-9))
	if kHi < 1 {
		kHi = 1
	}
	if kHi > n {
		conferrors.Warn(conferrors.NewUndercoverageWarning(confidence, n, kHi))
		kHi = n
	}
	return kLo, kHi
}
