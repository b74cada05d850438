// Finite-value guards. Calibration must never absorb NaN or Inf, so score
// pipelines run their outputs through these checks before sorting.

package errors

import "math"

// CheckScalar returns an InvalidInputError when v is NaN or infinite.
// index is the sample position the value belongs to, or -1 when none
// applies.
func CheckScalar(op string, v float64, index int) error {
	if math.IsNaN(v) {
		return NewInvalidInputErrorAt(op, "non-finite value (NaN)", index, v)
	}
	if math.IsInf(v, 0) {
		return NewInvalidInputErrorAt(op, "non-finite value (Inf)", index, v)
	}
	return nil
}

// CheckValues applies CheckScalar to every element of vs and returns the
// first violation.
func CheckValues(op string, vs []float64) error {
	for i, v := range vs {
		if err := CheckScalar(op, v, i); err != nil {
			return err
		}
	}
	return nil
}
