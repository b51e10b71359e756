// Package modelselection はデータ分割とハイパーパラメータ探索を提供します。
package modelselection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// TrainTestSplit はデータを訓練用とテスト用に分割する
//
// シード付きの置換で行をシャッフルするため、同じシードに対して
// 常に同じ分割が得られる。
//
// パラメータ:
//   - X: 特徴量行列 (n×d)
//   - y: 目的変数 (n×1)
//   - testRatio: テストに回す割合 (0 < testRatio < 1)
//   - seed: 乱数シード
func TrainTestSplit(X, y mat.Matrix, testRatio float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, d := X.Dims()
	ny, cy := y.Dims()

	if n == 0 || d == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if ny != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, ny, 0)
	}
	if cy != 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "y must be a column vector")
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testRatio must be in (0, 1)")
	}

	nTest := int(float64(n) * testRatio)
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "split leaves an empty partition")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testIdx := perm[:nTest]
	trainIdx := perm[nTest:]

	XTrain, yTrain = subset(X, y, trainIdx)
	XTest, yTest = subset(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}

// subset は指定行のコピーからなる部分行列を作る
func subset(X, y mat.Matrix, idx []int) (*mat.Dense, *mat.Dense) {
	_, d := X.Dims()
	subX := mat.NewDense(len(idx), d, nil)
	subY := mat.NewDense(len(idx), 1, nil)
	for i, src := range idx {
		for j := 0; j < d; j++ {
			subX.Set(i, j, X.At(src, j))
		}
		subY.Set(i, 0, y.At(src, 0))
	}
	return subX, subY
}
