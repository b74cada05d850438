package regression

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	"github.com/YuminosukeSato/conformal/core/parallel"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// Interval is a closed prediction interval [Lower, Upper].
type Interval struct {
	Lower float64
	Upper float64
}

// Width returns the length of the interval.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// IntervalResult holds point predictions and, for every requested
// confidence level, one interval per sample. Levels keep the order in which
// they were requested; Intervals[li][i] belongs to sample i at Levels[li].
type IntervalResult struct {
	Pred      []float64
	Levels    []float64
	Intervals [][]Interval
}

// At returns the intervals for the given confidence level. When the same
// level was requested more than once the first occurrence wins.
func (r *IntervalResult) At(level float64) ([]Interval, error) {
	for li, l := range r.Levels {
		if l == level {
			return r.Intervals[li], nil
		}
	}
	return nil, conferrors.NewInvalidInputError("IntervalResult.At",
		"confidence level was not requested", level)
}

// Bounds returns the lower and upper bounds for a level as slices, in the
// shape the coverage and width metrics expect.
func (r *IntervalResult) Bounds(level float64) (lower, upper []float64, err error) {
	intervals, err := r.At(level)
	if err != nil {
		return nil, nil, err
	}

	lower = make([]float64, len(intervals))
	upper = make([]float64, len(intervals))
	for i, iv := range intervals {
		lower[i] = iv.Lower
		upper[i] = iv.Upper
	}
	return lower, upper, nil
}

// PredictInterval predicts X with the model and inverts the calibrated
// score quantile around each prediction, producing one interval per sample
// and confidence level. Requesting several levels reuses the same
// predictions, so the extra levels are nearly free.
func PredictInterval(cal *Calibration, m model.Predictor, X mat.Matrix, confidenceLevels []float64) (*IntervalResult, error) {
	const op = "PredictInterval"

	if cal.Len() == 0 {
		return nil, conferrors.NewInvalidInputError(op, "empty calibration state", nil)
	}
	if m == nil {
		return nil, conferrors.NewInvalidInputError(op, "nil model", nil)
	}
	if len(confidenceLevels) == 0 {
		return nil, conferrors.NewInvalidInputError(op, "no confidence levels requested", nil)
	}
	n, _ := X.Dims()
	if n == 0 {
		return nil, conferrors.NewInvalidInputError(op, "empty test set", nil)
	}

	// Resolve all quantiles up front so an out-of-range level fails
	// before the model runs.
	quantiles := make([]float64, len(confidenceLevels))
	for li, level := range confidenceLevels {
		q, err := cal.Quantile(level)
		if err != nil {
			return nil, err
		}
		quantiles[li] = q
	}

	preds, err := predictColumn(op, m, X, n)
	if err != nil {
		return nil, err
	}

	intervals := make([][]Interval, len(confidenceLevels))
	for li := range intervals {
		intervals[li] = make([]Interval, n)
	}

	err = parallel.TryParallelize(n, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			for li, q := range quantiles {
				lower, upper, err := cal.score.Bounds(preds[i], q)
				if err != nil {
					return scoreErrorAt(op, err, i)
				}
				intervals[li][i] = Interval{Lower: lower, Upper: upper}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &IntervalResult{
		Pred:      preds,
		Levels:    append([]float64(nil), confidenceLevels...),
		Intervals: intervals,
	}, nil
}
