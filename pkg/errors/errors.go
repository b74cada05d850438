// Package errors provides the error handling and warning system used across
// the module. Failures are structured values carrying stack traces
// (github.com/cockroachdb/errors) and fall into two categories callers can
// test with Is: invalid input (ErrInvalidInput) and numeric-domain
// violations (ErrNumericDomain).
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("conformal-warning: %v\n", w)
	}
	// zerolog hook, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the module-wide warning handler, controlling
// how warnings such as UndercoverageWarning are surfaced.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. pkg/log calls
// this on initialization; it exists as an injection point to avoid a
// circular import.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a warning. The zerolog sink takes precedence when installed;
// otherwise the plain handler runs.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// UndercoverageWarning is raised when a requested confidence level needs a
// calibration-score rank beyond the number of available scores. The rank is
// clamped to the largest score instead of failing, so realized coverage may
// fall slightly below the requested level.
type UndercoverageWarning struct {
	Confidence float64
	NScores    int
	Rank       int
}

func (w *UndercoverageWarning) Error() string {
	return fmt.Sprintf("confidence level %g requires rank %d but only %d calibration scores are available; clamping to the largest score, realized coverage may fall below target. Consider a larger conformalization set or a lower confidence level.",
		w.Confidence, w.Rank, w.NScores)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UndercoverageWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("confidence", w.Confidence).
		Int("n_scores", w.NScores).
		Int("rank", w.Rank).
		Str("type", "UndercoverageWarning")
}

// NewUndercoverageWarning creates a new UndercoverageWarning.
func NewUndercoverageWarning(confidence float64, nScores, rank int) *UndercoverageWarning {
	return &UndercoverageWarning{Confidence: confidence, NScores: nScores, Rank: rank}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// InvalidInputError reports malformed or inconsistent input: empty
// conformalization sets, mismatched lengths, out-of-range confidence levels,
// non-finite values. Index is the offending sample position, or -1 when no
// single sample applies.
type InvalidInputError struct {
	Op     string
	Reason string
	Index  int
	Value  interface{}
}

func (e *InvalidInputError) Error() string {
	msg := fmt.Sprintf("conformal: %s: invalid input: %s", e.Op, e.Reason)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at sample %d", e.Index)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (got: %v)", e.Value)
	}
	return msg
}

// Is classifies InvalidInputError under the ErrInvalidInput category.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Int("index", e.Index).
		Interface("value", e.Value).
		Str("type", "InvalidInputError")
}

// NewInvalidInputError creates an InvalidInputError with no sample position
// and attaches a stack trace.
func NewInvalidInputError(op, reason string, value interface{}) error {
	err := &InvalidInputError{Op: op, Reason: reason, Index: -1, Value: value}
	return errors.WithStack(err)
}

// NewInvalidInputErrorAt creates an InvalidInputError pointing at a specific
// sample and attaches a stack trace.
func NewInvalidInputErrorAt(op, reason string, index int, value interface{}) error {
	err := &InvalidInputError{Op: op, Reason: reason, Index: index, Value: value}
	return errors.WithStack(err)
}

// NumericDomainError reports input outside the mathematical domain of a
// conformity score, e.g. the gamma score observing a non-positive prediction.
// It is raised before any inf/NaN can propagate into calibration state.
type NumericDomainError struct {
	Op         string
	Score      string
	Index      int
	Value      float64
	Constraint string
}

func (e *NumericDomainError) Error() string {
	msg := fmt.Sprintf("conformal: %s: %s score domain violation: %s", e.Op, e.Score, e.Constraint)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at sample %d", e.Index)
	}
	return msg + fmt.Sprintf(" (got: %g)", e.Value)
}

// Is classifies NumericDomainError under the ErrNumericDomain category.
func (e *NumericDomainError) Is(target error) bool {
	return target == ErrNumericDomain
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NumericDomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("score", e.Score).
		Int("index", e.Index).
		Float64("value", e.Value).
		Str("constraint", e.Constraint).
		Str("type", "NumericDomainError")
}

// NewNumericDomainError creates a NumericDomainError and attaches a stack
// trace. Index may be -1 when the violation is not tied to one sample.
func NewNumericDomainError(op, score string, index int, value float64, constraint string) error {
	err := &NumericDomainError{Op: op, Score: score, Index: index, Value: value, Constraint: constraint}
	return errors.WithStack(err)
}

// NotFittedError reports use of an estimator before the lifecycle step it
// depends on. Want names the method that must run first (Fit or
// Conformalize).
type NotFittedError struct {
	ModelName string
	Method    string
	Want      string
}

func (e *NotFittedError) Error() string {
	state := "fitted"
	if e.Want == "Conformalize" {
		state = "conformalized"
	}
	return fmt.Sprintf("conformal: %s: this estimator is not %s yet. Call %s() before using %s()",
		e.ModelName, state, e.Want, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("want", e.Want).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError for a predict-before-fit call
// and attaches a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method, Want: "Fit"}
	return errors.WithStack(err)
}

// NewNotConformalizedError creates a NotFittedError for a call that needs a
// conformalized estimator and attaches a stack trace.
func NewNotConformalizedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method, Want: "Conformalize"}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between matrices. It belongs to
// the invalid-input category.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("conformal: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// Is classifies DimensionError under the ErrInvalidInput category.
func (e *DimensionError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError and attaches a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ModelError wraps a failure raised by an underlying model while the engine
// was driving it.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conformal: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("conformal: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError and attaches a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Category sentinels
//
// ===========================================================================

var (
	// ErrInvalidInput matches every invalid-input error (InvalidInputError,
	// DimensionError) via errors.Is, regardless of concrete type.
	ErrInvalidInput = New("invalid input")

	// ErrNumericDomain matches every NumericDomainError via errors.Is.
	ErrNumericDomain = New("numeric domain violation")

	// ErrSingularMatrix is returned when a linear system cannot be solved.
	ErrSingularMatrix = New("singular matrix")
)
