// Standard attribute keys for conformal prediction operations.
//
// Using these keys keeps log records consistent across the module and
// enables filtering on the hierarchical names (e.g. "conformal.score",
// "data.samples") in downstream log analysis.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "SplitConformalRegressor", "CrossConformalRegressor"
	ModelNameKey = "model.name"

	// EstimatorIDKey is a caller-assigned identifier for one estimator
	// instance, useful when several run in the same process.
	EstimatorIDKey = "estimator.id"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "conformalize", "predict",
	// "predict_interval", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "regression.split", "regression.cross", "metrics"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"
)

// Conformal-specific context.
const (
	// ScoreKey names the conformity score family in use ("absolute",
	// "gamma").
	ScoreKey = "conformal.score"

	// LevelsKey carries the requested confidence levels.
	LevelsKey = "conformal.confidence_levels"

	// CalibrationSizeKey is the number of calibration scores backing an
	// interval computation.
	CalibrationSizeKey = "conformal.calibration_size"

	// QuantileRankKey is the order-statistic rank selected for a
	// confidence level.
	QuantileRankKey = "conformal.quantile_rank"

	// FoldsKey is the number of cross-conformal folds.
	FoldsKey = "conformal.folds"
)

// Metrics and performance.
const (
	// CoverageKey records empirical interval coverage in [0, 1].
	CoverageKey = "metrics.coverage"

	// MeanWidthKey records the mean interval width.
	MeanWidthKey = "metrics.mean_width"

	// R2ScoreKey records the R² of an underlying point model.
	R2ScoreKey = "metrics.r2_score"

	// DurationMsKey records operation wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RandomSeedKey records the seed driving a shuffle or generator.
	RandomSeedKey = "config.random_seed"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code for programmatic
	// handling. Examples: "NOT_FITTED", "NUMERIC_DOMAIN"
	ErrorCodeKey = "error.code"

	// SuggestionKey carries a hint for resolving the logged problem.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit             = "fit"
	OperationConformalize    = "conformalize"
	OperationPredict         = "predict"
	OperationPredictInterval = "predict_interval"
	OperationScore           = "score"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorNumericDomain     = "NUMERIC_DOMAIN"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
