// Package pipeline は特徴量エンジニアリングとエンドツーエンドの実行を提供します。
package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/dataset"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
	"github.com/YuminosukeSato/vgsales/preprocessing"
)

// FeatureSet は設計行列と目的変数の組
type FeatureSet struct {
	X     *mat.Dense
	Y     *mat.Dense
	Names []string
}

// categoricalOrder はカテゴリ予測列の固定順序
var categoricalOrder = []string{dataset.ColPlatform, dataset.ColGenre, dataset.ColPublisher}

// LinearFeatureBuilder は線形回帰用の特徴量を構築する
//
// カテゴリ列（Platform, Genre, Publisher）はone-hot展開し、
// Yearと他地域売上のlog1p変換列を連結する。目的変数は
// NA_Sales_log（右に歪んだ分布を線形モデル向けに圧縮する）。
//
// one-hot展開は各グループの先頭クラスを基準として除外する
// （ダミーコーディング）。全指示列を残すと列和が切片と一致して
// 設計行列が特異になるため。
type LinearFeatureBuilder struct {
	Platform  *preprocessing.OneHotEncoder
	Genre     *preprocessing.OneHotEncoder
	Publisher *preprocessing.OneHotEncoder
}

// NewLinearFeatureBuilder は新しいビルダを作成する
func NewLinearFeatureBuilder() *LinearFeatureBuilder {
	return &LinearFeatureBuilder{
		Platform:  preprocessing.NewOneHotEncoder(),
		Genre:     preprocessing.NewOneHotEncoder(),
		Publisher: preprocessing.NewOneHotEncoder(),
	}
}

func (b *LinearFeatureBuilder) encoder(col string) *preprocessing.OneHotEncoder {
	switch col {
	case dataset.ColPlatform:
		return b.Platform
	case dataset.ColGenre:
		return b.Genre
	default:
		return b.Publisher
	}
}

// numericPredictors は線形モデルが使う数値予測列
func (b *LinearFeatureBuilder) numericPredictors() []string {
	return []string{
		dataset.ColYear,
		dataset.ColEUSalesLog,
		dataset.ColJPSalesLog,
		dataset.ColOtherSalesLog,
		dataset.ColGlobalSalesLog,
	}
}

// FitBuild はクリーニング済みテーブルからエンコーダを学習し、
// 設計行列と目的変数を構築する
func (b *LinearFeatureBuilder) FitBuild(t *dataset.Table) (*FeatureSet, error) {
	if !t.HasDerived() {
		return nil, errors.NewValueError("LinearFeatureBuilder.FitBuild", "table must be cleaned first")
	}

	var blocks []block
	var names []string

	for _, col := range categoricalOrder {
		vals, err := t.Strings(col)
		if err != nil {
			return nil, err
		}
		enc := b.encoder(col)
		m, err := enc.FitTransform(vals)
		if err != nil {
			return nil, err
		}
		// 先頭クラスの指示列を落とす。クラスが1つしかない列は
		// 定数列にしかならないので丸ごとスキップする。
		if k := enc.NFeatures(); k > 1 {
			blocks = append(blocks, block{
				cols: k - 1,
				at:   func(row, j int) float64 { return m.At(row, j+1) },
			})
			for _, class := range enc.Classes[1:] {
				names = append(names, col+"="+class)
			}
		}
	}

	numeric, numericNames, err := numericColumns(t, b.numericPredictors())
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, numeric...)
	names = append(names, numericNames...)

	y, err := targetColumn(t, dataset.ColNASalesLog)
	if err != nil {
		return nil, err
	}
	return &FeatureSet{X: hstack(t.Len(), blocks), Y: y, Names: names}, nil
}

// ForestFeatureBuilder はランダムフォレスト用の特徴量を構築する
//
// ツリー系モデルはカテゴリの序数インデックスを直接消費できるため、
// カテゴリ列はラベルエンコードする。売上は生の値のまま使い、
// 目的変数はNA_Sales。
type ForestFeatureBuilder struct {
	Platform  *preprocessing.LabelEncoder
	Genre     *preprocessing.LabelEncoder
	Publisher *preprocessing.LabelEncoder
}

// NewForestFeatureBuilder は新しいビルダを作成する
func NewForestFeatureBuilder() *ForestFeatureBuilder {
	return &ForestFeatureBuilder{
		Platform:  preprocessing.NewLabelEncoder(),
		Genre:     preprocessing.NewLabelEncoder(),
		Publisher: preprocessing.NewLabelEncoder(),
	}
}

func (b *ForestFeatureBuilder) encoder(col string) *preprocessing.LabelEncoder {
	switch col {
	case dataset.ColPlatform:
		return b.Platform
	case dataset.ColGenre:
		return b.Genre
	default:
		return b.Publisher
	}
}

// numericPredictors はフォレストが使う数値予測列
func (b *ForestFeatureBuilder) numericPredictors() []string {
	return []string{
		dataset.ColYear,
		dataset.ColEUSales,
		dataset.ColJPSales,
		dataset.ColOtherSales,
		dataset.ColGlobalSales,
	}
}

// FitBuild はクリーニング済みテーブルからエンコーダを学習し、
// 設計行列と目的変数を構築する
func (b *ForestFeatureBuilder) FitBuild(t *dataset.Table) (*FeatureSet, error) {
	if !t.HasDerived() {
		return nil, errors.NewValueError("ForestFeatureBuilder.FitBuild", "table must be cleaned first")
	}

	var blocks []block
	var names []string

	for _, col := range categoricalOrder {
		vals, err := t.Strings(col)
		if err != nil {
			return nil, err
		}
		encoded, err := b.encoder(col).FitTransform(vals)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, singleColumn(encoded))
		names = append(names, col)
	}

	numeric, numericNames, err := numericColumns(t, b.numericPredictors())
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, numeric...)
	names = append(names, numericNames...)

	y, err := targetColumn(t, dataset.ColNASales)
	if err != nil {
		return nil, err
	}
	return &FeatureSet{X: hstack(t.Len(), blocks), Y: y, Names: names}, nil
}

// ---------------------------------------------------------------------------
// 共通ヘルパ
// ---------------------------------------------------------------------------

// block は水平連結用の列ブロック（1列または複数列）
type block struct {
	cols int
	at   func(row, col int) float64
}

func singleColumn(vals []float64) block {
	return block{cols: 1, at: func(row, _ int) float64 { return vals[row] }}
}

// numericColumns は数値列をブロック化して返す
func numericColumns(t *dataset.Table, cols []string) ([]block, []string, error) {
	var blocks []block
	for _, col := range cols {
		vals, err := t.Column(col)
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, singleColumn(vals))
	}
	return blocks, cols, nil
}

// hstack はブロック列を1つの設計行列に水平連結する
func hstack(rows int, blocks []block) *mat.Dense {
	total := 0
	for _, b := range blocks {
		total += b.cols
	}
	out := mat.NewDense(rows, total, nil)
	offset := 0
	for _, b := range blocks {
		for j := 0; j < b.cols; j++ {
			for i := 0; i < rows; i++ {
				out.Set(i, offset+j, b.at(i, j))
			}
		}
		offset += b.cols
	}
	return out
}

// targetColumn は目的変数列を n×1 行列として返す
func targetColumn(t *dataset.Table, name string) (*mat.Dense, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(vals), 1, nil)
	for i, v := range vals {
		y.Set(i, 0, v)
	}
	return y, nil
}
