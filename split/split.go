package split

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

// DataSplit holds the three partitions used in split conformal prediction:
// one to fit the estimator, one to conformalize it, one to evaluate it.
type DataSplit struct {
	XTrain        *mat.Dense
	YTrain        *mat.Dense
	XConformalize *mat.Dense
	YConformalize *mat.Dense
	XTest         *mat.Dense
	YTest         *mat.Dense
}

// TrainConformalizeTest shuffles the rows of X and y with the given seed and
// splits them into train, conformalize and test partitions.
//
// The fractions must each lie in (0, 1) and sum to 1. Partition sizes are
// floor(fraction * n) for train and conformalize; the test partition takes
// the remaining rows. Every partition must end up with at least one sample.
func TrainConformalizeTest(X, y mat.Matrix, trainSize, conformalizeSize, testSize float64, seed int64) (*DataSplit, error) {
	const op = "TrainConformalizeTest"

	n, _ := X.Dims()
	yRows, _ := y.Dims()
	if n == 0 {
		return nil, conferrors.NewInvalidInputError(op, "empty input", nil)
	}
	if yRows != n {
		return nil, conferrors.NewDimensionError(op, n, yRows, 0)
	}

	for _, f := range []float64{trainSize, conformalizeSize, testSize} {
		if !(f > 0 && f < 1) {
			return nil, conferrors.NewInvalidInputError(op, "split fractions must be in (0, 1)", f)
		}
	}
	if math.Abs(trainSize+conformalizeSize+testSize-1.0) > 1e-9 {
		return nil, conferrors.NewInvalidInputError(op, "split fractions must sum to 1",
			trainSize+conformalizeSize+testSize)
	}

	nTrain := int(trainSize * float64(n))
	nConf := int(conformalizeSize * float64(n))
	nTest := n - nTrain - nConf
	if nTrain < 1 || nConf < 1 || nTest < 1 {
		return nil, conferrors.NewInvalidInputError(op, "split produces an empty partition", n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	xTrain, yTrain := Take(X, y, indices[:nTrain])
	xConf, yConf := Take(X, y, indices[nTrain:nTrain+nConf])
	xTest, yTest := Take(X, y, indices[nTrain+nConf:])

	return &DataSplit{
		XTrain:        xTrain,
		YTrain:        yTrain,
		XConformalize: xConf,
		YConformalize: yConf,
		XTest:         xTest,
		YTest:         yTest,
	}, nil
}

// Take copies the selected rows of X and y into new dense matrices. Rows
// appear in the order of indices, so row j of the result corresponds to
// indices[j].
func Take(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)

	for i, idx := range indices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}

	return xSubset, ySubset
}
