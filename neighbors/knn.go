// Package neighbors provides a k-nearest neighbors regressor.
//
// Averaging neighbor targets keeps predictions inside the range of the
// training targets, so a model trained on strictly positive data predicts
// strictly positive values. That makes this estimator a natural partner for
// the gamma conformity score.
package neighbors

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/conformal/core/model"
	"github.com/YuminosukeSato/conformal/core/parallel"
	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// Rows below this count are predicted sequentially.
const parallelThreshold = 100

// KNeighborsRegressor predicts the mean target of the NNeighbors training
// samples closest in Euclidean distance.
type KNeighborsRegressor struct {
	model.BaseEstimator

	NNeighbors int

	xTrain_ *mat.Dense
	yTrain_ []float64
}

// NewKNeighborsRegressor creates a regressor over the given number of
// neighbors. Values below 1 fall back to 5.
func NewKNeighborsRegressor(nNeighbors int) *KNeighborsRegressor {
	if nNeighbors < 1 {
		nNeighbors = 5
	}
	return &KNeighborsRegressor{NNeighbors: nNeighbors}
}

// Fit stores the training data.
func (knn *KNeighborsRegressor) Fit(X, y mat.Matrix) (err error) {
	defer conferrors.Recover(&err, "KNeighborsRegressor.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return conferrors.NewInvalidInputError("KNeighborsRegressor.Fit", "empty data", nil)
	}
	if ry != r {
		return conferrors.NewDimensionError("KNeighborsRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return conferrors.NewDimensionError("KNeighborsRegressor.Fit", 1, cy, 1)
	}
	if r < knn.NNeighbors {
		return conferrors.NewInvalidInputError("KNeighborsRegressor.Fit",
			"need at least as many samples as neighbors", r)
	}

	knn.xTrain_ = mat.DenseCopyOf(X)
	knn.yTrain_ = make([]float64, r)
	for i := 0; i < r; i++ {
		knn.yTrain_[i] = y.At(i, 0)
	}

	knn.SetFitted()
	return nil
}

// Predict returns the mean target of the nearest neighbors for each row.
// Ties in distance are broken by training order.
func (knn *KNeighborsRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.IsFitted() {
		return nil, conferrors.NewNotFittedError("KNeighborsRegressor", "Predict")
	}

	r, c := X.Dims()
	nTrain, nFeatures := knn.xTrain_.Dims()
	if c != nFeatures {
		return nil, conferrors.NewDimensionError("KNeighborsRegressor.Predict", nFeatures, c, 1)
	}

	k := knn.NNeighbors
	predictions := mat.NewDense(r, 1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		bestDist := make([]float64, k)
		bestY := make([]float64, k)

		for i := start; i < end; i++ {
			for p := 0; p < k; p++ {
				bestDist[p] = math.Inf(1)
			}

			for t := 0; t < nTrain; t++ {
				var d float64
				for j := 0; j < nFeatures; j++ {
					diff := X.At(i, j) - knn.xTrain_.At(t, j)
					d += diff * diff
				}
				if d >= bestDist[k-1] {
					continue
				}
				pos := k - 1
				for pos > 0 && bestDist[pos-1] > d {
					bestDist[pos] = bestDist[pos-1]
					bestY[pos] = bestY[pos-1]
					pos--
				}
				bestDist[pos] = d
				bestY[pos] = knn.yTrain_[t]
			}

			var sum float64
			for p := 0; p < k; p++ {
				sum += bestY[p]
			}
			predictions.Set(i, 0, sum/float64(k))
		}
	})

	return predictions, nil
}
