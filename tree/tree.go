// Package tree はCART回帰木とランダムフォレスト回帰器を提供します。
package tree

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/core/model"
	"github.com/YuminosukeSato/vgsales/metrics"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// Node は回帰木のノード
// Leafがtrueの場合はValueが予測値、そうでなければFeatureとThresholdで
// 分岐する（x[Feature] <= Threshold なら左へ）。
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Value     float64
	Left      *Node
	Right     *Node
}

// RegressionTree は分散減少基準で分割するCART回帰木
//
// カテゴリ特徴量は序数エンコード済みの数値として扱う。
type RegressionTree struct {
	model.BaseEstimator

	// MaxDepth は木の最大深さ（0は無制限）
	MaxDepth int
	// MinSamplesSplit は分割を試みる最小サンプル数
	MinSamplesSplit int
	// MinSamplesLeaf は葉に必要な最小サンプル数
	MinSamplesLeaf int
	// MaxFeatures は分割候補とする特徴量数（0は全特徴量）
	MaxFeatures int
	// Seed は特徴量サブサンプリングの乱数シード
	Seed int64

	// Root は学習済みの木の根
	Root *Node
	// NFeatures は特徴量の数
	NFeatures int
}

// TreeOption はRegressionTreeの設定オプション
type TreeOption func(*RegressionTree)

// WithTreeMaxDepth は最大深さを設定する
func WithTreeMaxDepth(d int) TreeOption { return func(t *RegressionTree) { t.MaxDepth = d } }

// WithTreeMinSamplesSplit は分割に必要な最小サンプル数を設定する
func WithTreeMinSamplesSplit(n int) TreeOption {
	return func(t *RegressionTree) { t.MinSamplesSplit = n }
}

// WithTreeMinSamplesLeaf は葉の最小サンプル数を設定する
func WithTreeMinSamplesLeaf(n int) TreeOption {
	return func(t *RegressionTree) { t.MinSamplesLeaf = n }
}

// WithTreeMaxFeatures は分割候補の特徴量数を設定する
func WithTreeMaxFeatures(k int) TreeOption { return func(t *RegressionTree) { t.MaxFeatures = k } }

// WithTreeSeed は乱数シードを設定する
func WithTreeSeed(seed int64) TreeOption { return func(t *RegressionTree) { t.Seed = seed } }

// NewRegressionTree はデフォルト設定の回帰木を作成する
func NewRegressionTree(opts ...TreeOption) *RegressionTree {
	t := &RegressionTree{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Seed:            0,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit はモデルを訓練データで学習させる
func (t *RegressionTree) Fit(X, y mat.Matrix) error {
	xs, ys, err := toSlices("RegressionTree.Fit", X, y)
	if err != nil {
		return err
	}

	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(xs, ys, idx)
}

// FitIndices はidxで指定された行サブセットで木を学習させる
// フォレストのブートストラップ標本学習で使用する。
func (t *RegressionTree) FitIndices(xs [][]float64, ys []float64, idx []int) error {
	if len(xs) == 0 || len(idx) == 0 {
		return errors.NewModelError("RegressionTree.Fit", "empty data", errors.ErrEmptyData)
	}

	t.NFeatures = len(xs[0])
	rng := rand.New(rand.NewSource(t.Seed))
	t.Root = t.build(xs, ys, idx, 0, rng)
	t.SetFitted()
	return nil
}

// build は再帰的にノードを構築する
func (t *RegressionTree) build(xs [][]float64, ys []float64, idx []int, depth int, rng *rand.Rand) *Node {
	mean := meanAt(ys, idx)

	if len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return &Node{Leaf: true, Value: mean}
	}

	feature, threshold, ok := t.bestSplit(xs, ys, idx, rng)
	if !ok {
		return &Node{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if xs[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
		return &Node{Leaf: true, Value: mean}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.build(xs, ys, left, depth+1, rng),
		Right:     t.build(xs, ys, right, depth+1, rng),
	}
}

// bestSplit は二乗誤差和を最小化する特徴量と閾値を探す
// 改善が得られる分割が存在しない場合はok=falseを返す。
func (t *RegressionTree) bestSplit(xs [][]float64, ys []float64, idx []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	n := len(idx)
	nf := len(xs[0])

	features := candidateFeatures(nf, t.MaxFeatures, rng)

	// 分割前の二乗誤差和
	var sum, sumSq float64
	for _, i := range idx {
		sum += ys[i]
		sumSq += ys[i] * ys[i]
	}
	parentSSE := sumSq - sum*sum/float64(n)
	if parentSSE <= 1e-12 {
		return 0, 0, false // 目的変数に分散がない
	}

	bestSSE := parentSSE
	sorted := make([]int, n)

	for _, f := range features {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return xs[sorted[a]][f] < xs[sorted[b]][f] })

		// 左側の累積和を伸ばしながら各境界の重み付きSSEを評価する
		var leftSum, leftSumSq float64
		for k := 0; k < n-1; k++ {
			i := sorted[k]
			leftSum += ys[i]
			leftSumSq += ys[i] * ys[i]

			// 同値の間では分割できない
			if xs[i][f] == xs[sorted[k+1]][f] {
				continue
			}
			nl := float64(k + 1)
			nr := float64(n - k - 1)
			if int(nl) < t.MinSamplesLeaf || int(nr) < t.MinSamplesLeaf {
				continue
			}

			rightSum := sum - leftSum
			rightSumSq := sumSq - leftSumSq
			sse := (leftSumSq - leftSum*leftSum/nl) + (rightSumSq - rightSum*rightSum/nr)

			if sse < bestSSE-1e-12 {
				bestSSE = sse
				feature = f
				threshold = (xs[i][f] + xs[sorted[k+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// candidateFeatures は分割候補の特徴量インデックスを返す
// maxFeatures > 0 の場合は重複なしでランダムに選ぶ。
func candidateFeatures(nf, maxFeatures int, rng *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= nf {
		features := make([]int, nf)
		for i := range features {
			features[i] = i
		}
		return features
	}
	perm := rng.Perm(nf)
	features := perm[:maxFeatures]
	sort.Ints(features)
	return features
}

// Predict は入力データに対する予測を n×1 行列で返す
func (t *RegressionTree) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("RegressionTree", "Predict")
	}

	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("RegressionTree.Predict", t.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		out.Set(i, 0, t.predictRow(row))
	}
	return out, nil
}

func (t *RegressionTree) predictRow(row []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// Score はモデルの決定係数（R²）を計算する
func (t *RegressionTree) Score(X, y mat.Matrix) (float64, error) {
	if !t.IsFitted() {
		return 0, errors.NewNotFittedError("RegressionTree", "Score")
	}
	yPred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	rep, err := metrics.EvaluateMatrix(y, yPred)
	if err != nil {
		return 0, err
	}
	return rep.R2, nil
}

func meanAt(ys []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += ys[i]
	}
	return sum / float64(len(idx))
}

// toSlices はmat入力を検証してスライス表現に変換する
func toSlices(op string, X, y mat.Matrix) ([][]float64, []float64, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return nil, nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, errors.NewValueError(op, "y must be a column vector")
	}

	xs := make([][]float64, r)
	ys := make([]float64, r)
	for i := 0; i < r; i++ {
		xs[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			xs[i][j] = X.At(i, j)
		}
		ys[i] = y.At(i, 0)
	}
	return xs, ys, nil
}
