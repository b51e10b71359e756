// Standard attribute keys for pipeline logging.
//
// Using these keys consistently keeps records filterable across stages:
// the cleaning transformer, feature engineering, and model training all
// report shapes and metrics under the same names.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LinearRegression", "ForestRegressor"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "preprocessing", "pipeline", "modelselection"
	ComponentKey = "ml.component"
)

// Data shape and pipeline-stage characteristics.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// RowsInKey and RowsOutKey bracket a cleaning stage: rows entering
	// and rows surviving it.
	RowsInKey  = "rows.in"
	RowsOutKey = "rows.out"

	// RowsDroppedKey is the number of rows a stage discarded.
	RowsDroppedKey = "rows.dropped"
)

// Evaluation metrics.
const (
	MAEKey  = "metric.mae"
	MSEKey  = "metric.mse"
	RMSEKey = "metric.rmse"
	R2Key   = "metric.r2"

	// SplitKey names the partition a report refers to: "train" or "test".
	SplitKey = "eval.split"

	// DurationMsKey is the wall-clock duration of an operation.
	DurationMsKey = "duration_ms"
)
