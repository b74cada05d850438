// Package metrics provides evaluation metrics for point predictions and
// for the prediction intervals produced by conformal regressors.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// MSE computes the mean squared error between targets and predictions.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, conferrors.NewInvalidInputError("MSE", "empty vector", nil)
	}
	if yPred.Len() != n {
		return 0, conferrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error between targets and predictions.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score computes the coefficient of determination R².
//
// R² = 1 - RSS/TSS where RSS is the residual sum of squares and TSS the
// total sum of squares. A constant target vector has TSS = 0 and yields an
// error, since R² is undefined there.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, conferrors.NewInvalidInputError("R2Score", "empty vector", nil)
	}
	if yPred.Len() != n {
		return 0, conferrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		return 0, conferrors.Newf("R2Score: total sum of squares is zero (no variance in targets)")
	}

	return 1 - rss/tss, nil
}

// R2ScoreMatrix computes R² for column-vector matrices. It accepts the n×1
// matrices produced by Regressor.Predict without manual conversion.
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, conferrors.NewInvalidInputError("R2ScoreMatrix", "empty matrix", nil)
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, conferrors.NewDimensionError("R2ScoreMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, conferrors.NewInvalidInputError("R2ScoreMatrix", "must be a column vector (n×1 matrix)", cTrue)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}

	return R2Score(yTrueVec, yPredVec)
}
