package model

import "gonum.org/v1/gonum/mat"

// Regressor は回帰モデルの共通インターフェース
//
// 線形回帰とランダムフォレストの両方がこのインターフェースを満たし、
// 同一の学習・予測・評価コントラクトを共有する
type Regressor interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error

	// Predict は入力データに対する予測を n×1 行列で返す
	Predict(X mat.Matrix) (mat.Matrix, error)

	// Score はモデルの決定係数（R²）を計算する
	Score(X, y mat.Matrix) (float64, error)

	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
}

// Transformer はデータ変換器の共通インターフェース
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	IsFitted() bool
}
