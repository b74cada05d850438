package regression

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	conferrors "github.com/YuminosukeSato/conformal/pkg/errors"
	"github.com/YuminosukeSato/conformal/scores"
)

// calibrateFixed builds a calibration whose sorted scores are exactly vals.
func calibrateFixed(t *testing.T, score scores.ConformityScore, vals ...float64) *Calibration {
	t.Helper()

	m := &fixedModel{preds: []float64{0}}
	y := column(vals...)
	if _, ok := score.(*scores.Gamma); ok {
		// Gamma needs positive predictions; predicting 1 turns the
		// score into |y - 1|, so shift the targets instead.
		shifted := make([]float64, len(vals))
		for i, v := range vals {
			shifted[i] = v + 1
		}
		m = &fixedModel{preds: []float64{1}}
		y = column(shifted...)
	}

	cal, err := Calibrate(m, zeroMatrix(len(vals), 1), y, score)
	if err != nil {
		t.Fatalf("Calibrate() unexpected error: %v", err)
	}
	return cal
}

func TestPredictIntervalAbsolute(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 1, 2, 3, 4, 5)
	m := &fixedModel{preds: []float64{10, 20}}

	result, err := PredictInterval(cal, m, zeroMatrix(2, 1), []float64{0.8})
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	// k = ceil(6 * 0.8) = 5 → q = 5.
	intervals, err := result.At(0.8)
	if err != nil {
		t.Fatalf("At() unexpected error: %v", err)
	}
	want := []Interval{{Lower: 5, Upper: 15}, {Lower: 15, Upper: 25}}
	if !reflect.DeepEqual(intervals, want) {
		t.Errorf("intervals = %v, want %v", intervals, want)
	}

	if result.Pred[0] != 10 || result.Pred[1] != 20 {
		t.Errorf("Pred = %v, want [10 20]", result.Pred)
	}
}

func TestPredictIntervalSymmetry(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 0.5, 1.5, 2.5, 3.5)
	preds := []float64{-7, 0, 3.25, 42}
	m := &fixedModel{preds: preds}

	result, err := PredictInterval(cal, m, zeroMatrix(len(preds), 1), []float64{0.6})
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	intervals, _ := result.At(0.6)
	for i, iv := range intervals {
		below := preds[i] - iv.Lower
		above := iv.Upper - preds[i]
		if below != above {
			t.Errorf("sample %d: interval [%g, %g] not symmetric around %g", i, iv.Lower, iv.Upper, preds[i])
		}
		if iv.Lower > iv.Upper {
			t.Errorf("sample %d: lower %g > upper %g", i, iv.Lower, iv.Upper)
		}
	}
}

func TestPredictIntervalGamma(t *testing.T) {
	cal := calibrateFixed(t, scores.NewGamma(), 0.1, 0.2, 0.3)
	preds := []float64{10, 50}
	m := &fixedModel{preds: preds}

	result, err := PredictInterval(cal, m, zeroMatrix(2, 1), []float64{0.7})
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	// k = ceil(4 * 0.7) = 3 → q = 0.3.
	intervals, _ := result.At(0.7)
	for i, iv := range intervals {
		wantLower := preds[i] * 0.7
		wantUpper := preds[i] * 1.3
		if math.Abs(iv.Lower-wantLower) > 1e-12 || math.Abs(iv.Upper-wantUpper) > 1e-12 {
			t.Errorf("sample %d: interval [%g, %g], want [%g, %g]", i, iv.Lower, iv.Upper, wantLower, wantUpper)
		}
	}

	// Gamma widths scale with the prediction.
	if intervals[1].Width() <= intervals[0].Width() {
		t.Errorf("width at pred 50 (%g) should exceed width at pred 10 (%g)",
			intervals[1].Width(), intervals[0].Width())
	}
}

func TestPredictIntervalGammaDomainAtPredict(t *testing.T) {
	cal := calibrateFixed(t, scores.NewGamma(), 0.1, 0.2)
	m := &fixedModel{preds: []float64{5, -2}}

	_, err := PredictInterval(cal, m, zeroMatrix(2, 1), []float64{0.5})
	if err == nil {
		t.Fatal("PredictInterval() expected error, got nil")
	}
	if !conferrors.Is(err, conferrors.ErrNumericDomain) {
		t.Fatalf("expected numeric-domain category, got %v", err)
	}

	var domainErr *conferrors.NumericDomainError
	if !conferrors.As(err, &domainErr) {
		t.Fatalf("expected *NumericDomainError, got %T", err)
	}
	if domainErr.Index != 1 {
		t.Errorf("Index = %d, want 1", domainErr.Index)
	}
}

func TestPredictIntervalIdempotent(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 1.25, 2.5, 3.75, 5, 6.25)
	m := &fixedModel{preds: []float64{3.5, -1.25, 8}}
	X := zeroMatrix(3, 1)
	levels := []float64{0.6, 0.9}

	before := cal.Scores()

	first, err := PredictInterval(cal, m, X, levels)
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}
	second, err := PredictInterval(cal, m, X, levels)
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated PredictInterval calls differ")
	}
	if !reflect.DeepEqual(before, cal.Scores()) {
		t.Error("PredictInterval mutated calibration state")
	}
}

func TestPredictIntervalMonotonic(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 1, 2, 3, 4, 5, 6, 7, 8, 9)
	m := &fixedModel{preds: []float64{0, 10, -10}}
	X := zeroMatrix(3, 1)
	levels := []float64{0.5, 0.7, 0.9}

	result, err := PredictInterval(cal, m, X, levels)
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	// Higher levels must contain the lower-level intervals.
	for li := 1; li < len(levels); li++ {
		narrow, _ := result.At(levels[li-1])
		wide, _ := result.At(levels[li])
		for i := range narrow {
			if wide[i].Lower > narrow[i].Lower || wide[i].Upper < narrow[i].Upper {
				t.Errorf("sample %d: level %g interval [%g, %g] does not contain level %g interval [%g, %g]",
					i, levels[li], wide[i].Lower, wide[i].Upper,
					levels[li-1], narrow[i].Lower, narrow[i].Upper)
			}
		}
	}
}

func TestPredictIntervalDuplicateLevels(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 1, 2, 3)
	m := &fixedModel{preds: []float64{5}}

	result, err := PredictInterval(cal, m, zeroMatrix(1, 1), []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("PredictInterval() unexpected error: %v", err)
	}

	if len(result.Levels) != 2 {
		t.Fatalf("len(Levels) = %d, want 2", len(result.Levels))
	}
	if !reflect.DeepEqual(result.Intervals[0], result.Intervals[1]) {
		t.Error("duplicate levels produced different intervals")
	}
}

func TestPredictIntervalErrors(t *testing.T) {
	cal := calibrateFixed(t, scores.NewAbsolute(), 1, 2, 3)
	m := &fixedModel{preds: []float64{5}}
	X := zeroMatrix(1, 1)

	tests := []struct {
		name   string
		cal    *Calibration
		model  *fixedModel
		X      mat.Matrix
		levels []float64
	}{
		{"nil calibration", nil, m, X, []float64{0.5}},
		{"no levels", cal, m, X, nil},
		{"level zero", cal, m, X, []float64{0}},
		{"level one", cal, m, X, []float64{1}},
		{"level above one", cal, m, X, []float64{0.5, 1.5}},
		{"empty test set", cal, m, emptyMatrix{cols: 1}, []float64{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PredictInterval(tt.cal, tt.model, tt.X, tt.levels)
			if err == nil {
				t.Fatal("PredictInterval() expected error, got nil")
			}
			if !conferrors.Is(err, conferrors.ErrInvalidInput) {
				t.Errorf("expected invalid-input category, got %v", err)
			}
		})
	}
}

func TestIntervalResultAccessors(t *testing.T) {
	result := &IntervalResult{
		Pred:   []float64{1, 2},
		Levels: []float64{0.9},
		Intervals: [][]Interval{
			{{Lower: 0, Upper: 2}, {Lower: 1, Upper: 3}},
		},
	}

	lower, upper, err := result.Bounds(0.9)
	if err != nil {
		t.Fatalf("Bounds() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lower, []float64{0, 1}) || !reflect.DeepEqual(upper, []float64{2, 3}) {
		t.Errorf("Bounds() = %v, %v, want [0 1], [2 3]", lower, upper)
	}

	if _, err := result.At(0.5); err == nil {
		t.Error("At() on unrequested level expected error, got nil")
	}
	if _, _, err := result.Bounds(0.5); err == nil {
		t.Error("Bounds() on unrequested level expected error, got nil")
	}
}

func BenchmarkPredictInterval(b *testing.B) {
	n := 5000
	calScores := make([]float64, n)
	preds := make([]float64, n)
	for i := 0; i < n; i++ {
		calScores[i] = float64(i) / float64(n)
		preds[i] = float64(i)
	}
	cal := &Calibration{scores: calScores, score: scores.NewAbsolute()}
	m := &fixedModel{preds: preds}
	X := zeroMatrix(n, 1)
	levels := []float64{0.68, 0.95}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PredictInterval(cal, m, X, levels); err != nil {
			b.Fatal(err)
		}
	}
}
