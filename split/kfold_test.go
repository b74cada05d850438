package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

func TestKFold(t *testing.T) {
	t.Run("Basic split", func(t *testing.T) {
		n := 100
		X := mat.NewDense(n, 2, nil)
		y := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			X.Set(i, 0, float64(i))
			X.Set(i, 1, float64(i)*2)
			y.Set(i, 0, float64(i))
		}

		kf := NewKFold(5, false, 42)
		assert.Equal(t, 5, kf.GetNSplits())

		folds, err := kf.Split(X, y)
		require.NoError(t, err)
		require.Len(t, folds, 5)

		for i, fold := range folds {
			assert.Len(t, fold.TrainIndices, 80, "Fold %d train size", i)
			assert.Len(t, fold.TestIndices, 20, "Fold %d test size", i)

			testSet := make(map[int]bool)
			for _, idx := range fold.TestIndices {
				testSet[idx] = true
			}
			for _, idx := range fold.TrainIndices {
				assert.False(t, testSet[idx], "Train index %d in test set", idx)
			}
		}

		// Each sample is a test sample in exactly one fold.
		counts := make(map[int]int)
		for _, fold := range folds {
			for _, idx := range fold.TestIndices {
				counts[idx]++
			}
		}
		for i := 0; i < n; i++ {
			assert.Equal(t, 1, counts[i], "Index %d coverage", i)
		}
	})

	t.Run("Shuffle changes order deterministically", func(t *testing.T) {
		n := 50
		X := mat.NewDense(n, 1, nil)
		y := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			X.Set(i, 0, float64(i))
			y.Set(i, 0, float64(i))
		}

		plain, err := NewKFold(5, false, 42).Split(X, y)
		require.NoError(t, err)
		shuffled, err := NewKFold(5, true, 42).Split(X, y)
		require.NoError(t, err)
		again, err := NewKFold(5, true, 42).Split(X, y)
		require.NoError(t, err)

		assert.NotEqual(t, plain, shuffled, "shuffling should reorder the folds")
		assert.Equal(t, shuffled, again, "same seed should reproduce the folds")
	})

	t.Run("Uneven split", func(t *testing.T) {
		// 23 samples with 5 folds: 3 folds of 5 test samples, 2 folds of 4.
		n := 23
		X := mat.NewDense(n, 1, nil)
		y := mat.NewDense(n, 1, nil)

		folds, err := NewKFold(5, false, 42).Split(X, y)
		require.NoError(t, err)

		total := 0
		for i, fold := range folds {
			if i < 3 {
				assert.Len(t, fold.TestIndices, 5, "Fold %d test size", i)
			} else {
				assert.Len(t, fold.TestIndices, 4, "Fold %d test size", i)
			}
			total += len(fold.TestIndices)
		}
		assert.Equal(t, n, total)
	})

	t.Run("Too few samples", func(t *testing.T) {
		X := mat.NewDense(3, 1, nil)
		y := mat.NewDense(3, 1, nil)

		_, err := NewKFold(5, false, 42).Split(X, y)
		require.Error(t, err)
		assert.True(t, conferrors.Is(err, conferrors.ErrInvalidInput))
	})

	t.Run("Splits below two fall back to five", func(t *testing.T) {
		kf := NewKFold(1, false, 0)
		assert.Equal(t, 5, kf.NSplits)
	})
}
