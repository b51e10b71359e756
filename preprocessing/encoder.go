package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vgsales/core/model"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// LabelEncoder はカテゴリ値を序数インデックスに変換するエンコーダ
//
// 語彙は辞書順にソートされるため、同じカテゴリ集合に対して常に同じ
// インデックス割り当てになる（決定的）。ツリー系モデルはこの序数を
// そのまま特徴量として消費できる。
type LabelEncoder struct {
	model.BaseEstimator

	// Classes は辞書順に並んだ既知カテゴリ
	Classes []string

	index map[string]int
}

// NewLabelEncoder は新しいLabelEncoderを作成する
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit は入力からカテゴリ語彙を学習する
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty input", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	e.Classes = e.Classes[:0]
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			e.Classes = append(e.Classes, v)
		}
	}
	sort.Strings(e.Classes)

	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}

	e.SetFitted()
	return nil
}

// Transform はカテゴリ値をインデックス列に変換する
// 未知カテゴリはValueErrorになる。
func (e *LabelEncoder) Transform(values []string) ([]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]float64, len(values))
	for i, v := range values {
		idx, ok := e.lookup(v)
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unseen category "+v)
		}
		out[i] = float64(idx)
	}
	return out, nil
}

// FitTransform はFitとTransformを連続して実行する
func (e *LabelEncoder) FitTransform(values []string) ([]float64, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// lookup はgobデコード後などindexが未構築の場合に再構築する
func (e *LabelEncoder) lookup(v string) (int, bool) {
	if e.index == nil {
		e.index = make(map[string]int, len(e.Classes))
		for i, c := range e.Classes {
			e.index[c] = i
		}
	}
	idx, ok := e.index[v]
	return idx, ok
}

// OneHotEncoder はカテゴリ値を指示変数列に展開するエンコーダ
//
// 語彙は辞書順にソートされる。未知カテゴリは全ゼロ行になる
// （線形回帰の入力として安全に消費できる）。
type OneHotEncoder struct {
	model.BaseEstimator

	// Classes は辞書順に並んだ既知カテゴリ
	Classes []string

	index map[string]int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit は入力からカテゴリ語彙を学習する
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty input", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	e.Classes = e.Classes[:0]
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			e.Classes = append(e.Classes, v)
		}
	}
	sort.Strings(e.Classes)

	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}

	e.SetFitted()
	return nil
}

// NFeatures は展開後の列数（語彙サイズ）を返す
func (e *OneHotEncoder) NFeatures() int {
	return len(e.Classes)
}

// Transform はカテゴリ値を n×len(Classes) の指示変数行列に変換する
func (e *OneHotEncoder) Transform(values []string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(values) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty input", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(values), len(e.Classes), nil)
	for i, v := range values {
		if idx, ok := e.lookup(v); ok {
			out.Set(i, idx, 1)
		}
	}
	return out, nil
}

// FitTransform はFitとTransformを連続して実行する
func (e *OneHotEncoder) FitTransform(values []string) (*mat.Dense, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

func (e *OneHotEncoder) lookup(v string) (int, bool) {
	if e.index == nil {
		e.index = make(map[string]int, len(e.Classes))
		for i, c := range e.Classes {
			e.index[c] = i
		}
	}
	idx, ok := e.index[v]
	return idx, ok
}
