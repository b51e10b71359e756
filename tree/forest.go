package tree

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/core/model"
	"github.com/YuminosukeSato/vgsales/core/parallel"
	"github.com/YuminosukeSato/vgsales/metrics"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// ForestRegressor はブートストラップ標本で学習した回帰木の
// アンサンブル（バギング）。予測は全木の平均。
//
// シードが固定されていれば学習・予測は完全に決定的になる。
// 各木はSeed+木インデックスから導出された独自のシードを持つため、
// 並列学習でも結果は実行順序に依存しない。
type ForestRegressor struct {
	model.BaseEstimator

	// NEstimators は木の本数
	NEstimators int
	// MaxDepth は各木の最大深さ（0は無制限）
	MaxDepth int
	// MinSamplesSplit は分割を試みる最小サンプル数
	MinSamplesSplit int
	// MinSamplesLeaf は葉の最小サンプル数
	MinSamplesLeaf int
	// MaxFeatures は各分割で候補とする特徴量数（0は全特徴量）
	MaxFeatures int
	// Bootstrap は復元抽出によるブートストラップ標本を使うかどうか
	Bootstrap bool
	// Seed は乱数シード
	Seed int64

	// Trees は学習済みの木
	Trees []*RegressionTree
	// NFeatures は特徴量の数
	NFeatures int
}

// ForestOption はForestRegressorの設定オプション
type ForestOption func(*ForestRegressor)

// WithNEstimators は木の本数を設定する
func WithNEstimators(n int) ForestOption { return func(f *ForestRegressor) { f.NEstimators = n } }

// WithMaxDepth は各木の最大深さを設定する
func WithMaxDepth(d int) ForestOption { return func(f *ForestRegressor) { f.MaxDepth = d } }

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定する
func WithMinSamplesSplit(n int) ForestOption {
	return func(f *ForestRegressor) { f.MinSamplesSplit = n }
}

// WithMinSamplesLeaf は葉の最小サンプル数を設定する
func WithMinSamplesLeaf(n int) ForestOption {
	return func(f *ForestRegressor) { f.MinSamplesLeaf = n }
}

// WithMaxFeatures は各分割の特徴量候補数を設定する
func WithMaxFeatures(k int) ForestOption { return func(f *ForestRegressor) { f.MaxFeatures = k } }

// WithBootstrap はブートストラップ標本の使用有無を設定する
func WithBootstrap(b bool) ForestOption { return func(f *ForestRegressor) { f.Bootstrap = b } }

// WithSeed は乱数シードを設定する
func WithSeed(seed int64) ForestOption { return func(f *ForestRegressor) { f.Seed = seed } }

// NewForestRegressor はデフォルト設定のフォレストを作成する
func NewForestRegressor(opts ...ForestOption) *ForestRegressor {
	f := &ForestRegressor{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Bootstrap:       true,
		Seed:            0,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit はモデルを訓練データで学習させる
// 木の学習はCPUコア数に応じて並列化される。
func (f *ForestRegressor) Fit(X, y mat.Matrix) error {
	if f.NEstimators <= 0 {
		return errors.NewValueError("ForestRegressor.Fit", "NEstimators must be positive")
	}

	xs, ys, err := toSlices("ForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	n := len(xs)
	f.NFeatures = len(xs[0])
	f.Trees = make([]*RegressionTree, f.NEstimators)

	var mu sync.Mutex
	var firstErr error

	parallel.For(f.NEstimators, func(k int) {
		// 木ごとに導出シード。ブートストラップ抽出と特徴量
		// サブサンプリングの両方がこのシードから決まる。
		seed := f.Seed + int64(k)
		rng := rand.New(rand.NewSource(seed))

		idx := make([]int, n)
		for j := range idx {
			if f.Bootstrap {
				idx[j] = rng.Intn(n)
			} else {
				idx[j] = j
			}
		}

		t := NewRegressionTree(
			WithTreeMaxDepth(f.MaxDepth),
			WithTreeMinSamplesSplit(f.MinSamplesSplit),
			WithTreeMinSamplesLeaf(f.MinSamplesLeaf),
			WithTreeMaxFeatures(f.MaxFeatures),
			WithTreeSeed(seed),
		)
		if err := t.FitIndices(xs, ys, idx); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		f.Trees[k] = t
	})

	if firstErr != nil {
		return firstErr
	}

	f.SetFitted()
	return nil
}

// Predict は全木の予測平均を n×1 行列で返す
func (f *ForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("ForestRegressor.Predict", f.NFeatures, c, 1)
	}

	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			rows[i][j] = X.At(i, j)
		}
	}

	out := mat.NewDense(r, 1, nil)
	const parallelThreshold = 256
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			var sum float64
			for _, t := range f.Trees {
				sum += t.predictRow(rows[i])
			}
			out.Set(i, 0, sum/float64(len(f.Trees)))
		}
	})
	return out, nil
}

// Score はモデルの決定係数（R²）を計算する
func (f *ForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("ForestRegressor", "Score")
	}
	yPred, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	rep, err := metrics.EvaluateMatrix(y, yPred)
	if err != nil {
		return 0, err
	}
	return rep.R2, nil
}
