package pipeline

import (
	"github.com/YuminosukeSato/vgsales/core/model"
	"github.com/YuminosukeSato/vgsales/linear"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
	"github.com/YuminosukeSato/vgsales/tree"
)

// モデル選択結果の名前
const (
	ModelLinear = "LinearRegression"
	ModelForest = "ForestRegressor"
)

// SavedModel は選択されたモデルとそのエンコーダ状態の永続化単位
//
// 選択されなかった側のモデルフィールドはnilのまま保存される。
// エンコーダ状態を一緒に保存することで、読み込み側は同じ語彙で
// 新しいレコードを特徴量化できる。
type SavedModel struct {
	Name string

	Linear         *linear.LinearRegression
	LinearFeatures *LinearFeatureBuilder

	Forest         *tree.ForestRegressor
	ForestFeatures *ForestFeatureBuilder
}

// Save はモデルをgob形式でファイルに書き出す
func (sm *SavedModel) Save(path string) error {
	if sm.Name == "" {
		return errors.NewValueError("SavedModel.Save", "no model selected")
	}
	return model.SaveModel(sm, path)
}

// LoadSavedModel はgobファイルから選択済みモデルを読み込む
func LoadSavedModel(path string) (*SavedModel, error) {
	var sm SavedModel
	if err := model.LoadModel(&sm, path); err != nil {
		return nil, err
	}
	if sm.Name != ModelLinear && sm.Name != ModelForest {
		return nil, errors.NewValueError("LoadSavedModel", "unknown model name "+sm.Name)
	}
	return &sm, nil
}
