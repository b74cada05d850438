// Package regression implements conformal prediction intervals for
// regression models.
//
// The split workflow scores a held-out conformalization set with a
// conformity score, keeps the sorted scores as calibration state and turns
// the empirical quantile of those scores into prediction intervals for new
// data. The cross-conformal workflow (CV+) folds the same idea over a
// k-fold split so no separate conformalization set is needed.
package regression

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	"github.com/YuminosukeSato/conformal/core/parallel"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
	"github.com/YuminosukeSato/conformal/scores"
)

// Samples below this count are processed sequentially.
const parallelThreshold = 1000

// Calibration holds the sorted conformity scores of a conformalization set
// together with the score family that produced them. It is immutable after
// construction.
type Calibration struct {
	scores []float64 // ascending
	score  scores.ConformityScore
}

// Calibrate predicts the conformalization set with the model and collects
// one conformity score per sample. The conformalization data must be
// disjoint from the data the model was trained on for the coverage
// guarantee to hold.
func Calibrate(m model.Predictor, X, y mat.Matrix, score scores.ConformityScore) (*Calibration, error) {
	const op = "Calibrate"

	if m == nil {
		return nil, conferrors.NewInvalidInputError(op, "nil model", nil)
	}
	if score == nil {
		return nil, conferrors.NewInvalidInputError(op, "nil conformity score", nil)
	}

	n, _ := X.Dims()
	if n == 0 {
		return nil, conferrors.NewInvalidInputError(op, "empty conformalization set", nil)
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return nil, conferrors.NewDimensionError(op, n, yRows, 0)
	}
	if yCols != 1 {
		return nil, conferrors.NewDimensionError(op, 1, yCols, 1)
	}

	preds, err := predictColumn(op, m, X, n)
	if err != nil {
		return nil, err
	}

	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		targets[i] = y.At(i, 0)
	}

	ss := make([]float64, n)
	err = parallel.TryParallelize(n, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			v, err := score.Score(targets[i], preds[i])
			if err != nil {
				return scoreErrorAt(op, err, i)
			}
			if err := conferrors.CheckScalar(op, v, i); err != nil {
				return err
			}
			ss[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Float64s(ss)
	return &Calibration{scores: ss, score: score}, nil
}

// Len returns the number of calibration scores.
func (c *Calibration) Len() int {
	if c == nil {
		return 0
	}
	return len(c.scores)
}

// Scores returns a copy of the sorted conformity scores.
func (c *Calibration) Scores() []float64 {
	out := make([]float64, len(c.scores))
	copy(out, c.scores)
	return out
}

// ScoreName returns the name of the conformity score family.
func (c *Calibration) ScoreName() string {
	return c.score.Name()
}

// Score returns the conformity score family.
func (c *Calibration) Score() scores.ConformityScore {
	return c.score
}

// Rank returns the calibration rank k = ceil((n+1) * confidence) used by
// Quantile, clipped to [1, n]. Clipping at the top means the conformalization
// set is too small for the requested confidence; an UndercoverageWarning is
// emitted through the warning handler when that happens.
func (c *Calibration) Rank(confidence float64) (int, error) {
	const op = "Rank"
	if c == nil || len(c.scores) == 0 {
		return 0, conferrors.NewInvalidInputError(op, "empty calibration state", nil)
	}
	if !(confidence > 0 && confidence < 1) {
		return 0, conferrors.NewInvalidInputError(op, "confidence level must be in (0, 1)", confidence)
	}

	n := len(c.scores)
	raw := confidence * float64(n+1)
	// Guard against float error nudging an exact integer rank up a step,
	// e.g. 10 * 0.9 evaluating to 9.000000000000002.
	k := int(math.Ceil(raw - raw*1e-9))
	if k < 1 {
		k = 1
	}
	if k > n {
		conferrors.Warn(conferrors.NewUndercoverageWarning(confidence, n, k))
		k = n
	}
	return k, nil
}

// Quantile returns the conformity score quantile for the given confidence
// level: the k-th smallest calibration score with k = Rank(confidence).
func (c *Calibration) Quantile(confidence float64) (float64, error) {
	k, err := c.Rank(confidence)
	if err != nil {
		return 0, err
	}
	return c.scores[k-1], nil
}

type calibrationState struct {
	Score  string    `json:"score"`
	Scores []float64 `json:"scores"`
}

// MarshalJSON serializes the score family name and the sorted scores, so a
// conformalized model can be reused without redoing the conformalization.
func (c *Calibration) MarshalJSON() ([]byte, error) {
	return json.Marshal(calibrationState{Score: c.score.Name(), Scores: c.Scores()})
}

// UnmarshalJSON restores state produced by MarshalJSON. The score family is
// looked up by name and unknown names are rejected. Scores are re-sorted,
// so hand-edited payloads cannot break the quantile lookup.
func (c *Calibration) UnmarshalJSON(data []byte) error {
	const op = "Calibration.UnmarshalJSON"

	var state calibrationState
	if err := json.Unmarshal(data, &state); err != nil {
		return conferrors.Wrap(err, op)
	}

	score, err := scores.ByName(state.Score)
	if err != nil {
		return err
	}
	if len(state.Scores) == 0 {
		return conferrors.NewInvalidInputError(op, "empty calibration state", nil)
	}
	if err := conferrors.CheckValues(op, state.Scores); err != nil {
		return err
	}

	ss := append([]float64(nil), state.Scores...)
	sort.Float64s(ss)
	c.scores = ss
	c.score = score
	return nil
}

// predictColumn runs the model on X and returns its output as a slice,
// after checking that the model produced a finite n×1 column.
func predictColumn(op string, m model.Predictor, X mat.Matrix, n int) ([]float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return nil, conferrors.NewModelError(op, "model prediction failed", err)
	}

	predRows, predCols := pred.Dims()
	if predRows != n {
		return nil, conferrors.NewDimensionError(op, n, predRows, 0)
	}
	if predCols != 1 {
		return nil, conferrors.NewDimensionError(op, 1, predCols, 1)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = pred.At(i, 0)
		if err := conferrors.CheckScalar(op, out[i], i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// scoreErrorAt rebuilds a conformity score error with the offending sample
// index, so batch operations report where the domain violation happened.
func scoreErrorAt(op string, err error, index int) error {
	var domainErr *conferrors.NumericDomainError
	if conferrors.As(err, &domainErr) {
		return conferrors.NewNumericDomainError(op, domainErr.Score, index, domainErr.Value, domainErr.Constraint)
	}
	return conferrors.Wrapf(err, "%s: sample %d", op, index)
}
