// Package vgsales implements a batch pipeline over historical video game
// sales data: CSV ingestion, cleaning and imputation, feature engineering,
// and two regression models predicting North American sales.
//
// # Pipeline
//
// The pipeline is a single-pass, feed-forward sequence:
//
//	raw CSV → dataset.ReadCSV → preprocessing.Cleaner → pipeline feature
//	builders → modelselection.TrainTestSplit → linear.LinearRegression and
//	tree.ForestRegressor (grid-searched) → metrics reports → persisted model
//
// Cleaning imputes missing Year and Publisher values by grouped lookup on
// the game title, excludes known-bad Year values, and appends log1p sales
// columns plus a Japan-hit indicator. The model with the higher test
// R-squared is persisted with encoding/gob for later reuse.
//
// # Quick Start
//
//	vgsales run --input vgsales.csv --model-out model.gob --seed 42
//
// or from Go:
//
//	cfg := config.Config{Input: "vgsales.csv", ModelOut: "model.gob",
//	    TestRatio: 0.2, Seed: 42, CVFolds: 5, LogLevel: "info"}
//	result, err := pipeline.Run(cfg)
package vgsales
