package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/dataset"
	"github.com/YuminosukeSato/vgsales/internal/config"
	"github.com/YuminosukeSato/vgsales/linear"
	"github.com/YuminosukeSato/vgsales/metrics"
	"github.com/YuminosukeSato/vgsales/modelselection"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
	"github.com/YuminosukeSato/vgsales/pkg/log"
	"github.com/YuminosukeSato/vgsales/preprocessing"
)

// Evaluation は1モデル分の訓練/テスト評価
type Evaluation struct {
	Name  string
	Train metrics.Report
	Test  metrics.Report
}

// Result はパイプライン1回分の実行結果
type Result struct {
	RowsRaw     int
	RowsCleaned int
	Linear      Evaluation
	Forest      Evaluation
	BestParams  modelselection.ForestParams
	Selected    string
}

// Run はパイプラインをエンドツーエンドで実行する
//
// 読み込み → クリーニング → 特徴量構築 → 分割 → 線形回帰の学習と
// グリッドサーチ付きフォレストの学習 → 両モデルの評価 → テストR²が
// 高い方を選択して永続化、の一本道。失敗はその場で呼び出し元に返り、
// リトライは行わない。
func Run(cfg config.Config) (*Result, error) {
	logger := log.GetLoggerWithName("pipeline")
	start := time.Now()

	raw, err := dataset.ReadCSV(cfg.Input)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "path", cfg.Input, log.SamplesKey, raw.Len())

	cleaned, err := preprocessing.NewCleaner().Transform(raw)
	if err != nil {
		return nil, err
	}

	result := &Result{RowsRaw: raw.Len(), RowsCleaned: cleaned.Len()}

	// 線形回帰: one-hotカテゴリ + log売上特徴量、目的変数はNA_Sales_log
	linFeatures := NewLinearFeatureBuilder()
	lf, err := linFeatures.FitBuild(cleaned)
	if err != nil {
		return nil, err
	}
	lr := linear.NewLinearRegression()
	result.Linear, err = trainAndEvaluate(ModelLinear, lr.Fit, lr.Predict, lf, cfg)
	if err != nil {
		return nil, err
	}
	logEvaluation(logger, result.Linear, lf)

	// フォレスト: ラベルエンコードカテゴリ + 生売上特徴量、目的変数はNA_Sales
	// ハイパーパラメータは訓練側のみのK分割交差検証で選択する。
	forFeatures := NewForestFeatureBuilder()
	ff, err := forFeatures.FitBuild(cleaned)
	if err != nil {
		return nil, err
	}
	fXTrain, fXTest, fyTrain, fyTest, err := modelselection.TrainTestSplit(ff.X, ff.Y, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}

	grid := modelselection.ForestGrid{
		NEstimators:     cfg.Grid.NEstimators,
		MaxDepth:        cfg.Grid.MaxDepth,
		MinSamplesSplit: cfg.Grid.MinSamplesSplit,
		MaxFeatures:     cfg.Grid.MaxFeatures,
	}
	gs := modelselection.NewGridSearchCV(grid, cfg.CVFolds, cfg.Seed)
	forest, err := gs.Fit(fXTrain, fyTrain)
	if err != nil {
		return nil, err
	}
	result.BestParams = gs.BestParams

	result.Forest, err = evaluateFitted(ModelForest, forest.Predict, fXTrain, fyTrain, fXTest, fyTest)
	if err != nil {
		return nil, err
	}
	logEvaluation(logger, result.Forest, ff)

	// テストR²が高い方を採用。同点はテストRMSEが低い方。
	result.Selected = selectModel(result.Linear, result.Forest)

	saved := &SavedModel{Name: result.Selected}
	if result.Selected == ModelLinear {
		saved.Linear = lr
		saved.LinearFeatures = linFeatures
	} else {
		saved.Forest = forest
		saved.ForestFeatures = forFeatures
	}
	if err := saved.Save(cfg.ModelOut); err != nil {
		return nil, errors.Wrap(err, "persist selected model")
	}

	logger.Info("pipeline complete",
		"selected", result.Selected,
		"model_out", cfg.ModelOut,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// trainAndEvaluate はモデルを分割・学習し、両パーティションを評価する
func trainAndEvaluate(
	name string,
	fit func(X, y mat.Matrix) error,
	predict func(X mat.Matrix) (mat.Matrix, error),
	fs *FeatureSet,
	cfg config.Config,
) (Evaluation, error) {
	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplit(fs.X, fs.Y, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return Evaluation{}, err
	}
	if err := fit(XTrain, yTrain); err != nil {
		return Evaluation{}, err
	}
	return evaluateFitted(name, predict, XTrain, yTrain, XTest, yTest)
}

// evaluateFitted は学習済みモデルを訓練側・テスト側の両方で評価する
func evaluateFitted(
	name string,
	predict func(X mat.Matrix) (mat.Matrix, error),
	XTrain, yTrain, XTest, yTest mat.Matrix,
) (Evaluation, error) {
	eval := Evaluation{Name: name}

	trainPred, err := predict(XTrain)
	if err != nil {
		return Evaluation{}, err
	}
	if eval.Train, err = metrics.EvaluateMatrix(yTrain, trainPred); err != nil {
		return Evaluation{}, err
	}

	testPred, err := predict(XTest)
	if err != nil {
		return Evaluation{}, err
	}
	if eval.Test, err = metrics.EvaluateMatrix(yTest, testPred); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

// selectModel はテストR²の高い方を返す（同点はテストRMSEの低い方）
func selectModel(a, b Evaluation) string {
	if a.Test.R2 > b.Test.R2 {
		return a.Name
	}
	if a.Test.R2 == b.Test.R2 && a.Test.RMSE < b.Test.RMSE {
		return a.Name
	}
	return b.Name
}

func logEvaluation(logger log.Logger, eval Evaluation, fs *FeatureSet) {
	_, nFeatures := fs.X.Dims()
	logger.Info("model evaluated",
		log.ModelNameKey, eval.Name,
		log.FeaturesKey, nFeatures,
		"train", eval.Train,
		"test", eval.Test,
	)
}
