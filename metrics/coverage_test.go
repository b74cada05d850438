package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
)

func TestRegressionCoverageScore(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yLow  []float64
		yUp   []float64
		want  float64
	}{
		{
			name:  "two of three covered",
			yTrue: []float64{1, 2, 3},
			yLow:  []float64{0, 0, 0},
			yUp:   []float64{2, 2, 2},
			want:  2.0 / 3.0,
		},
		{
			name:  "all covered",
			yTrue: []float64{1, 2, 3},
			yLow:  []float64{0, 1, 2},
			yUp:   []float64{2, 3, 4},
			want:  1.0,
		},
		{
			name:  "none covered",
			yTrue: []float64{10, 20, 30},
			yLow:  []float64{0, 0, 0},
			yUp:   []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:  "bounds are inclusive",
			yTrue: []float64{1, 2},
			yLow:  []float64{1, 0},
			yUp:   []float64{5, 2},
			want:  1.0,
		},
		{
			name:  "single sample",
			yTrue: []float64{5},
			yLow:  []float64{4},
			yUp:   []float64{6},
			want:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RegressionCoverageScore(tt.yTrue, tt.yLow, tt.yUp)
			if err != nil {
				t.Fatalf("RegressionCoverageScore() unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("RegressionCoverageScore() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRegressionCoverageScoreOrderInvariant(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4, 5}
	yLow := []float64{0, 3, 0, 5, 4}
	yUp := []float64{2, 4, 2, 6, 6}

	base, err := RegressionCoverageScore(yTrue, yLow, yUp)
	if err != nil {
		t.Fatalf("RegressionCoverageScore() unexpected error: %v", err)
	}

	// Reverse all three slices in lockstep.
	n := len(yTrue)
	rt := make([]float64, n)
	rl := make([]float64, n)
	ru := make([]float64, n)
	for i := 0; i < n; i++ {
		rt[i] = yTrue[n-1-i]
		rl[i] = yLow[n-1-i]
		ru[i] = yUp[n-1-i]
	}

	reversed, err := RegressionCoverageScore(rt, rl, ru)
	if err != nil {
		t.Fatalf("RegressionCoverageScore() unexpected error: %v", err)
	}
	if base != reversed {
		t.Errorf("coverage changed under permutation: %g vs %g", base, reversed)
	}
}

func TestRegressionCoverageScoreErrors(t *testing.T) {
	if _, err := RegressionCoverageScore(nil, nil, nil); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("empty input: expected invalid input error, got %v", err)
	}

	yTrue := []float64{1, 2, 3}
	short := []float64{0, 0}

	if _, err := RegressionCoverageScore(yTrue, short, yTrue); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("short lower: expected invalid input error, got %v", err)
	}
	if _, err := RegressionCoverageScore(yTrue, yTrue, short); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("short upper: expected invalid input error, got %v", err)
	}

	var dimErr *conferrors.DimensionError
	_, err := RegressionCoverageScore(yTrue, short, yTrue)
	if !conferrors.As(err, &dimErr) {
		t.Fatalf("expected *DimensionError, got %T", err)
	}
	if dimErr.Expected != 3 || dimErr.Got != 2 {
		t.Errorf("DimensionError = expected %d got %d, want 3 and 2", dimErr.Expected, dimErr.Got)
	}
}

func TestRegressionCoverageScoreVec(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yLow := mat.NewVecDense(3, []float64{0, 0, 0})
	yUp := mat.NewVecDense(3, []float64{2, 2, 2})

	got, err := RegressionCoverageScoreVec(yTrue, yLow, yUp)
	if err != nil {
		t.Fatalf("RegressionCoverageScoreVec() unexpected error: %v", err)
	}
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("RegressionCoverageScoreVec() = %g, want %g", got, want)
	}

	short := mat.NewVecDense(2, []float64{0, 0})
	if _, err := RegressionCoverageScoreVec(yTrue, short, yUp); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("short lower: expected invalid input error, got %v", err)
	}
}

func TestRegressionMeanWidthScore(t *testing.T) {
	yLow := []float64{1, 2}
	yUp := []float64{3, 7}

	got, err := RegressionMeanWidthScore(yLow, yUp)
	if err != nil {
		t.Fatalf("RegressionMeanWidthScore() unexpected error: %v", err)
	}
	// Widths 2 and 5.
	if got != 3.5 {
		t.Errorf("RegressionMeanWidthScore() = %g, want 3.5", got)
	}

	if _, err := RegressionMeanWidthScore(nil, nil); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("empty input: expected invalid input error, got %v", err)
	}
	if _, err := RegressionMeanWidthScore(yLow, []float64{1}); !conferrors.Is(err, conferrors.ErrInvalidInput) {
		t.Errorf("mismatched input: expected invalid input error, got %v", err)
	}
}

func TestIntervalWidthSummaryConstant(t *testing.T) {
	yLow := []float64{0, 1, 2, 3}
	yUp := []float64{3, 4, 5, 6}

	s, err := IntervalWidthSummary(yLow, yUp)
	if err != nil {
		t.Fatalf("IntervalWidthSummary() unexpected error: %v", err)
	}
	for name, got := range map[string]float64{
		"Mean": s.Mean, "Median": s.Median, "Min": s.Min, "Max": s.Max, "Q1": s.Q1, "Q3": s.Q3,
	} {
		if got != 3.0 {
			t.Errorf("%s = %g, want 3 for constant widths", name, got)
		}
	}
	if s.StdDev != 0 {
		t.Errorf("StdDev = %g, want 0 for constant widths", s.StdDev)
	}
}

func TestIntervalWidthSummary(t *testing.T) {
	// Widths: 2, 4, 4, 4, 5, 5, 5, 9.
	yLow := make([]float64, 8)
	yUp := []float64{2, 4, 4, 4, 5, 5, 5, 9}

	s, err := IntervalWidthSummary(yLow, yUp)
	if err != nil {
		t.Fatalf("IntervalWidthSummary() unexpected error: %v", err)
	}

	if math.Abs(s.Mean-4.75) > 1e-12 {
		t.Errorf("Mean = %g, want 4.75", s.Mean)
	}
	if math.Abs(s.Median-4.5) > 1e-12 {
		t.Errorf("Median = %g, want 4.5", s.Median)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("Min, Max = %g, %g, want 2, 9", s.Min, s.Max)
	}
	if s.Q1 != 4 {
		t.Errorf("Q1 = %g, want 4", s.Q1)
	}
	if s.Q3 != 5 {
		t.Errorf("Q3 = %g, want 5", s.Q3)
	}
	if math.Abs(s.StdDev-math.Sqrt(3.4375)) > 1e-9 {
		t.Errorf("StdDev = %g, want %g", s.StdDev, math.Sqrt(3.4375))
	}
}

func TestIntervalWidthSummarySingle(t *testing.T) {
	s, err := IntervalWidthSummary([]float64{1}, []float64{4})
	if err != nil {
		t.Fatalf("IntervalWidthSummary() unexpected error: %v", err)
	}
	if s.Mean != 3 || s.Median != 3 || s.Q1 != 3 || s.Q3 != 3 || s.Min != 3 || s.Max != 3 {
		t.Errorf("single sample summary = %+v, want all fields 3", s)
	}
	if s.StdDev != 0 {
		t.Errorf("StdDev = %g, want 0", s.StdDev)
	}
}

func BenchmarkRegressionCoverageScore(b *testing.B) {
	n := 10000
	yTrue := make([]float64, n)
	yLow := make([]float64, n)
	yUp := make([]float64, n)
	for i := 0; i < n; i++ {
		yTrue[i] = float64(i)
		yLow[i] = float64(i) - 1
		yUp[i] = float64(i) + 1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = RegressionCoverageScore(yTrue, yLow, yUp)
	}
}
