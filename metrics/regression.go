// Package metrics は回帰モデルの評価指標を提供します。
package metrics

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// validate は2つのベクトルが非空かつ同じ長さであることを検証する
func validate(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
//
// MAE = (1/n) * Σ|yTrue - yPred|
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
//
// MSE = (1/n) * Σ(yTrue - yPred)²
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score は決定係数（R²）を計算する
//
// R² = 1 - RSS/TSS
// yTrueに分散がない場合（全要素が同一値）はエラーになる。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		yp := yPred.AtVec(i)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yp) * (yt - yp)
	}

	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// Report は4つの評価指標をまとめた評価レポート
type Report struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
}

// Evaluate は予測と真値から評価レポートを一括計算する
func Evaluate(yTrue, yPred *mat.VecDense) (Report, error) {
	var rep Report
	var err error

	if rep.MAE, err = MAE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	if rep.MSE, err = MSE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	rep.RMSE = math.Sqrt(rep.MSE)
	if rep.R2, err = R2Score(yTrue, yPred); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// EvaluateMatrix は n×1 行列形式の入力からレポートを計算する
// モデルのPredictが返す行列をそのまま渡せる。
func EvaluateMatrix(yTrue, yPred mat.Matrix) (Report, error) {
	tVec, err := asColumnVector("EvaluateMatrix", yTrue)
	if err != nil {
		return Report{}, err
	}
	pVec, err := asColumnVector("EvaluateMatrix", yPred)
	if err != nil {
		return Report{}, err
	}
	return Evaluate(tVec, pVec)
}

// MarshalZerologObject はzerologのイベントに評価指標を追加する
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("mae", r.MAE).
		Float64("mse", r.MSE).
		Float64("rmse", r.RMSE).
		Float64("r2", r.R2)
}

func asColumnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
