package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
	"github.com/YuminosukeSato/vgsales/pkg/log"
	"github.com/YuminosukeSato/vgsales/tree"
)

// ForestParams はフォレストのハイパーパラメータ1組
type ForestParams struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
}

// ForestGrid はグリッドサーチの探索空間
// 空のリストはデフォルト値1つだけを探索することを意味する。
type ForestGrid struct {
	NEstimators     []int
	MaxDepth        []int
	MinSamplesSplit []int
	MaxFeatures     []int
}

// normalized は空のリストをデフォルト値で埋めた探索空間を返す
func (g ForestGrid) normalized() ForestGrid {
	out := g
	if len(out.NEstimators) == 0 {
		out.NEstimators = []int{100}
	}
	if len(out.MaxDepth) == 0 {
		out.MaxDepth = []int{0}
	}
	if len(out.MinSamplesSplit) == 0 {
		out.MinSamplesSplit = []int{2}
	}
	if len(out.MaxFeatures) == 0 {
		out.MaxFeatures = []int{0}
	}
	return out
}

// combinations は直積を決定的な順序で列挙する
func (g ForestGrid) combinations() []ForestParams {
	n := g.normalized()
	var out []ForestParams
	for _, ne := range n.NEstimators {
		for _, md := range n.MaxDepth {
			for _, ms := range n.MinSamplesSplit {
				for _, mf := range n.MaxFeatures {
					out = append(out, ForestParams{
						NEstimators:     ne,
						MaxDepth:        md,
						MinSamplesSplit: ms,
						MaxFeatures:     mf,
					})
				}
			}
		}
	}
	return out
}

// CVResult はパラメータ1組の交差検証結果
type CVResult struct {
	Params    ForestParams
	MeanScore float64
	Scores    []float64
}

// GridSearchCV はフォレストのハイパーパラメータを
// K分割交差検証付きの全数探索で選択する
//
// 選択スコアは検証フォールドの平均R²。探索は訓練データのみで行い、
// テストデータには一切触れない。同点の場合は列挙順で先のパラメータが
// 選ばれる（列挙順は決定的）。
type GridSearchCV struct {
	Grid  ForestGrid
	Folds int
	Seed  int64

	// BestParams は探索で選ばれたパラメータ
	BestParams ForestParams
	// BestScore はBestParamsの平均検証R²
	BestScore float64
	// Results は全パラメータ組の結果（列挙順）
	Results []CVResult

	logger log.Logger
}

// NewGridSearchCV は新しいグリッドサーチを作成する
func NewGridSearchCV(grid ForestGrid, folds int, seed int64) *GridSearchCV {
	if folds < 2 {
		folds = 5
	}
	return &GridSearchCV{
		Grid:   grid,
		Folds:  folds,
		Seed:   seed,
		logger: log.GetLoggerWithName("modelselection"),
	}
}

// Fit は探索を実行し、最良パラメータで全訓練データに再学習した
// フォレストを返す
func (gs *GridSearchCV) Fit(X, y mat.Matrix) (*tree.ForestRegressor, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, errors.NewModelError("GridSearchCV.Fit", "empty data", errors.ErrEmptyData)
	}
	if n < gs.Folds {
		return nil, errors.NewValueError("GridSearchCV.Fit", "fewer samples than folds")
	}

	combos := gs.Grid.combinations()
	folds := NewKFold(gs.Folds, true, gs.Seed).Split(n)

	gs.Results = gs.Results[:0]
	best := -1

	for _, params := range combos {
		scores := make([]float64, 0, len(folds))
		for _, fold := range folds {
			XTrain, yTrain := subset(X, y, fold.TrainIndices)
			XVal, yVal := subset(X, y, fold.TestIndices)

			forest := newForest(params, gs.Seed)
			if err := forest.Fit(XTrain, yTrain); err != nil {
				return nil, errors.Wrapf(err, "grid search fold fit (params %+v)", params)
			}
			score, err := forest.Score(XVal, yVal)
			if err != nil {
				return nil, errors.Wrapf(err, "grid search fold score (params %+v)", params)
			}
			scores = append(scores, score)
		}

		var sum float64
		for _, s := range scores {
			sum += s
		}
		result := CVResult{Params: params, MeanScore: sum / float64(len(scores)), Scores: scores}
		gs.Results = append(gs.Results, result)

		if best < 0 || result.MeanScore > gs.Results[best].MeanScore {
			best = len(gs.Results) - 1
		}

		gs.logger.Debug("grid search candidate evaluated",
			"n_estimators", params.NEstimators,
			"max_depth", params.MaxDepth,
			"min_samples_split", params.MinSamplesSplit,
			"max_features", params.MaxFeatures,
			"mean_cv_r2", result.MeanScore,
		)
	}

	gs.BestParams = gs.Results[best].Params
	gs.BestScore = gs.Results[best].MeanScore

	gs.logger.Info("grid search complete",
		"candidates", len(combos),
		"folds", gs.Folds,
		"best_n_estimators", gs.BestParams.NEstimators,
		"best_max_depth", gs.BestParams.MaxDepth,
		"best_min_samples_split", gs.BestParams.MinSamplesSplit,
		"best_max_features", gs.BestParams.MaxFeatures,
		"best_cv_r2", gs.BestScore,
	)

	// 最良パラメータで全訓練データに再学習
	forest := newForest(gs.BestParams, gs.Seed)
	if err := forest.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "refit best params")
	}
	return forest, nil
}

func newForest(p ForestParams, seed int64) *tree.ForestRegressor {
	return tree.NewForestRegressor(
		tree.WithNEstimators(p.NEstimators),
		tree.WithMaxDepth(p.MaxDepth),
		tree.WithMinSamplesSplit(p.MinSamplesSplit),
		tree.WithMaxFeatures(p.MaxFeatures),
		tree.WithSeed(seed),
	)
}
