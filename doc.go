// Package conformal provides distribution-free prediction intervals for
// regression models via conformal prediction.
//
// Any model that can fit and predict (see core/model.Regressor) can be
// wrapped; the library never inspects model internals. Two workflows are
// supported:
//
//   - Split conformal (regression.SplitConformalRegressor): fit on a
//     training split, conformalize on a disjoint held-out split, predict
//     intervals on new data.
//   - Cross conformal / CV+ (regression.CrossConformalRegressor): k-fold
//     models reuse all data for both fitting and conformalization, at the
//     cost of training k+1 models.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/conformal/datasets"
//	    "github.com/YuminosukeSato/conformal/linear"
//	    "github.com/YuminosukeSato/conformal/metrics"
//	    "github.com/YuminosukeSato/conformal/regression"
//	    "github.com/YuminosukeSato/conformal/split"
//	)
//
//	func main() {
//	    X, y, err := datasets.MakeRegression(500, 1, 20, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ds, err := split.TrainConformalizeTest(X, y, 0.6, 0.2, 0.2, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    reg := regression.NewSplitConformalRegressor(linear.NewLinearRegression()).
//	        WithConfidenceLevels(0.95)
//	    if err := reg.Fit(ds.XTrain, ds.YTrain); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := reg.Conformalize(ds.XConformalize, ds.YConformalize); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := reg.PredictInterval(ds.XTest)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    lower, upper, _ := result.Bounds(0.95)
//	    yTest := make([]float64, len(lower))
//	    for i := range yTest {
//	        yTest[i] = ds.YTest.At(i, 0)
//	    }
//	    coverage, _ := metrics.RegressionCoverageScore(yTest, lower, upper)
//	    fmt.Printf("coverage: %.3f\n", coverage)
//	}
//
// # Packages
//
//   - regression: the conformal engine (Calibrate, PredictInterval) and the
//     split/cross estimator wrappers
//   - scores: conformity score families (absolute residual, gamma)
//   - metrics: coverage, interval width and point-prediction metrics
//   - split: train/conformalize/test partitioning and k-fold splitting
//   - datasets: synthetic regression generators for examples and tests
//   - linear, neighbors: bundled baseline model families
//   - core/model: capability interfaces wrapped models must satisfy
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// The split-conformal coverage guarantee is marginal and holds in
// expectation over exchangeable calibration and test draws; it is not a
// per-call guarantee. Requesting a confidence level the calibration set is
// too small for clamps the score quantile to the largest observed score and
// raises an UndercoverageWarning through pkg/errors.
package conformal
