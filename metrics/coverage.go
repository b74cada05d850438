package metrics

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// RegressionCoverageScore returns the fraction of targets that fall inside
// their prediction interval. Both bounds are inclusive, so a target lying
// exactly on a bound counts as covered. The result is in [0, 1] and does not
// depend on the order of the samples.
func RegressionCoverageScore(yTrue, yLow, yUp []float64) (float64, error) {
	const op = "RegressionCoverageScore"
	if len(yTrue) == 0 {
		return 0, conferrors.NewInvalidInputError(op, "empty input", nil)
	}
	if len(yLow) != len(yTrue) {
		return 0, conferrors.NewDimensionError(op, len(yTrue), len(yLow), 0)
	}
	if len(yUp) != len(yTrue) {
		return 0, conferrors.NewDimensionError(op, len(yTrue), len(yUp), 0)
	}

	covered := 0
	for i, y := range yTrue {
		if yLow[i] <= y && y <= yUp[i] {
			covered++
		}
	}
	return float64(covered) / float64(len(yTrue)), nil
}

// RegressionCoverageScoreVec is the gonum vector form of
// RegressionCoverageScore.
func RegressionCoverageScoreVec(yTrue, yLow, yUp *mat.VecDense) (float64, error) {
	const op = "RegressionCoverageScore"
	n := yTrue.Len()
	if yLow.Len() != n {
		return 0, conferrors.NewDimensionError(op, n, yLow.Len(), 0)
	}
	if yUp.Len() != n {
		return 0, conferrors.NewDimensionError(op, n, yUp.Len(), 0)
	}

	yt := make([]float64, n)
	lo := make([]float64, n)
	up := make([]float64, n)
	for i := 0; i < n; i++ {
		yt[i] = yTrue.AtVec(i)
		lo[i] = yLow.AtVec(i)
		up[i] = yUp.AtVec(i)
	}
	return RegressionCoverageScore(yt, lo, up)
}

// RegressionMeanWidthScore returns the mean width of the prediction
// intervals. Narrower intervals at the same coverage indicate a more
// informative model.
func RegressionMeanWidthScore(yLow, yUp []float64) (float64, error) {
	const op = "RegressionMeanWidthScore"
	if len(yLow) == 0 {
		return 0, conferrors.NewInvalidInputError(op, "empty input", nil)
	}
	if len(yUp) != len(yLow) {
		return 0, conferrors.NewDimensionError(op, len(yLow), len(yUp), 0)
	}

	var sum float64
	for i := range yLow {
		sum += yUp[i] - yLow[i]
	}
	return sum / float64(len(yLow)), nil
}

// WidthSummary describes the distribution of interval widths across a test
// set. With adaptive scores such as gamma the spread between Q1 and Q3 shows
// how strongly the intervals react to the predicted magnitude.
type WidthSummary struct {
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
	Q1     float64
	Q3     float64
}

// IntervalWidthSummary computes descriptive statistics of the interval
// widths yUp[i] - yLow[i].
func IntervalWidthSummary(yLow, yUp []float64) (WidthSummary, error) {
	const op = "IntervalWidthSummary"
	if len(yLow) == 0 {
		return WidthSummary{}, conferrors.NewInvalidInputError(op, "empty input", nil)
	}
	if len(yUp) != len(yLow) {
		return WidthSummary{}, conferrors.NewDimensionError(op, len(yLow), len(yUp), 0)
	}

	widths := make([]float64, len(yLow))
	for i := range yLow {
		widths[i] = yUp[i] - yLow[i]
	}

	// Quartiles are undefined for a single sample.
	if len(widths) == 1 {
		w := widths[0]
		return WidthSummary{Mean: w, Median: w, Min: w, Max: w, Q1: w, Q3: w}, nil
	}

	var s WidthSummary
	var err error
	if s.Mean, err = stats.Mean(widths); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.StdDev, err = stats.StandardDeviation(widths); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.Median, err = stats.Median(widths); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.Min, err = stats.Min(widths); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.Max, err = stats.Max(widths); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.Q1, err = stats.Percentile(widths, 25); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	if s.Q3, err = stats.Percentile(widths, 75); err != nil {
		return WidthSummary{}, conferrors.Wrap(err, op)
	}
	return s, nil
}
