package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

func TestMSE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(3, []float64{1, 3, 5})

	got, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE() unexpected error: %v", err)
	}
	// Squared errors: 0, 1, 4.
	want := 5.0 / 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("MSE() = %g, want %g", got, want)
	}
}

func TestMSEMismatchedLengths(t *testing.T) {
	a := mat.NewVecDense(3, []float64{1, 2, 3})
	b := mat.NewVecDense(2, []float64{1, 2})

	if _, err := MSE(a, b); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("MSE(mismatched) expected invalid input error, got %v", err)
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{0, 0})
	yPred := mat.NewVecDense(2, []float64{3, 4})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() unexpected error: %v", err)
	}
	// MSE = (9 + 16) / 2 = 12.5.
	want := math.Sqrt(12.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSE() = %g, want %g", got, want)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score() unexpected error: %v", err)
	}
	if perfect != 1.0 {
		t.Errorf("R2Score(perfect) = %g, want 1", perfect)
	}

	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})
	got, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score() unexpected error: %v", err)
	}
	// RSS = 4 * 0.25 = 1, TSS = 5.
	want := 1.0 - 1.0/5.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("R2Score() = %g, want %g", got, want)
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{2, 2, 2})
	yPred := mat.NewVecDense(3, []float64{1, 2, 3})

	if _, err := R2Score(yTrue, yPred); err == nil {
		t.Fatal("R2Score(constant target) expected error, got nil")
	}
}

func TestR2ScoreMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := R2ScoreMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2ScoreMatrix() unexpected error: %v", err)
	}

	want, err := R2Score(
		mat.NewVecDense(4, []float64{1, 2, 3, 4}),
		mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
	)
	if err != nil {
		t.Fatalf("R2Score() unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("R2ScoreMatrix() = %g, want %g", got, want)
	}

	wide := mat.NewDense(4, 2, nil)
	if _, err := R2ScoreMatrix(wide, wide); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("R2ScoreMatrix(wide) expected invalid input error, got %v", err)
	}
}
