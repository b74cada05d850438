// Package linear provides an ordinary least squares estimator used as the
// default underlying model for conformal regressors.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	"github.com/YuminosukeSato/conformal/core/parallel"
	"github.com/YuminosukeSato/conformal/metrics"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// Rows below this count are processed sequentially.
const parallelThreshold = 1000

// LinearRegression fits a least squares model y = Xw + b via a QR
// decomposition of the design matrix. QR avoids forming the normal
// equations, so it stays accurate on poorly conditioned inputs.
type LinearRegression struct {
	model.BaseEstimator

	// FitIntercept controls whether a constant column is added to the
	// design matrix. When false the fitted intercept is zero.
	FitIntercept bool

	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
}

// NewLinearRegression creates a least squares regressor with an intercept.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{FitIntercept: true}
}

// WithFitIntercept toggles the intercept term
func (lr *LinearRegression) WithFitIntercept(fit bool) *LinearRegression {
	lr.FitIntercept = fit
	return lr
}

// Fit estimates the coefficients from training data.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer conferrors.Recover(&err, "LinearRegression.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return conferrors.NewInvalidInputError("LinearRegression.Fit", "empty data", nil)
	}
	if ry != r {
		return conferrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return conferrors.NewDimensionError("LinearRegression.Fit", 1, cy, 1)
	}

	cols := c
	if lr.FitIntercept {
		cols = c + 1
	}
	if r < cols {
		return conferrors.NewInvalidInputError("LinearRegression.Fit",
			"need at least as many samples as coefficients", r)
	}

	design := mat.NewDense(r, cols, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			offset := 0
			if lr.FitIntercept {
				design.Set(i, 0, 1.0)
				offset = 1
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var qr mat.QR
	qr.Factorize(design)

	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, y); err != nil {
		return conferrors.NewModelError("LinearRegression.Fit", "singular design matrix", conferrors.ErrSingularMatrix)
	}

	lr.NFeatures = c
	lr.Weights = mat.NewVecDense(c, nil)
	if lr.FitIntercept {
		lr.Intercept = sol.At(0, 0)
		for j := 0; j < c; j++ {
			lr.Weights.SetVec(j, sol.At(j+1, 0))
		}
	} else {
		lr.Intercept = 0
		for j := 0; j < c; j++ {
			lr.Weights.SetVec(j, sol.At(j, 0))
		}
	}

	lr.SetFitted()
	return nil
}

// Predict computes y = Xw + b for each row of X.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, conferrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, conferrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * lr.Weights.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})

	return predictions, nil
}

// GetWeights returns a copy of the fitted coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept returns the fitted intercept.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score returns the coefficient of determination R² on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, conferrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}
