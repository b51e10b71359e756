// Package linear は最小二乗法による線形回帰を提供します。
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/core/model"
	"github.com/YuminosukeSato/vgsales/metrics"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// LinearRegression は通常最小二乗法（OLS）による線形回帰モデル
//
// 学習は決定的であり、同じデータで再学習すれば常に同じ係数が得られる。
type LinearRegression struct {
	model.BaseEstimator

	// Coef は特徴量ごとの回帰係数
	Coef []float64
	// Intercept は切片
	Intercept float64
	// NFeatures は特徴量の数
	NFeatures int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit はモデルを訓練データで学習させる
//
// 切片項を加えた拡張行列 [1, X] に対する最小二乗問題をQR分解で解く。
// 行列が特異な場合はErrSingularMatrixを返す。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	// 拡張行列 [1, X]
	aug := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		aug.Set(i, 0, 1.0)
		for j := 0; j < c; j++ {
			aug.Set(i, j+1, X.At(i, j))
		}
	}

	// 最小二乗解（過決定系はQR分解で解かれる）
	var w mat.Dense
	if err := w.Solve(aug, y); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	lr.NFeatures = c
	lr.Intercept = w.At(0, 0)
	lr.Coef = make([]float64, c)
	for j := 0; j < c; j++ {
		lr.Coef[j] = w.At(j+1, 0)
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を n×1 行列で返す
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Coef[j]
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	rep, err := metrics.EvaluateMatrix(y, yPred)
	if err != nil {
		return 0, err
	}
	return rep.R2, nil
}

// Coefficients は学習された回帰係数のコピーを返す
func (lr *LinearRegression) Coefficients() []float64 {
	if lr.Coef == nil {
		return nil
	}
	out := make([]float64, len(lr.Coef))
	copy(out, lr.Coef)
	return out
}
