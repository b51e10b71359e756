// Package config はパイプラインの実行設定を提供します。
// 値はviper経由で設定ファイル・フラグ・環境変数から解決される。
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// ForestGrid はグリッドサーチの探索リスト
type ForestGrid struct {
	NEstimators     []int `mapstructure:"n_estimators"`
	MaxDepth        []int `mapstructure:"max_depth"`
	MinSamplesSplit []int `mapstructure:"min_samples_split"`
	MaxFeatures     []int `mapstructure:"max_features"`
}

// Config はパイプライン1回分の実行設定
type Config struct {
	// Input は入力CSVのパス
	Input string `mapstructure:"input" validate:"required"`
	// ModelOut は選択されたモデルの保存先パス
	ModelOut string `mapstructure:"model_out" validate:"required"`
	// TestRatio はテストに回す行の割合
	TestRatio float64 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	// Seed は分割・フォレスト・交差検証で共有する乱数シード
	Seed int64 `mapstructure:"seed"`
	// CVFolds はグリッドサーチの交差検証分割数
	CVFolds int `mapstructure:"cv_folds" validate:"gte=2"`
	// LogLevel はログ出力レベル
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// Grid はフォレストのハイパーパラメータ探索空間
	Grid ForestGrid `mapstructure:"grid"`
}

// SetDefaults はviperにデフォルト値を設定する
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "vgsales.csv")
	v.SetDefault("model_out", "model.gob")
	v.SetDefault("test_ratio", 0.2)
	v.SetDefault("seed", 42)
	v.SetDefault("cv_folds", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("grid.n_estimators", []int{100, 200})
	v.SetDefault("grid.max_depth", []int{0, 10, 20})
	v.SetDefault("grid.min_samples_split", []int{2, 5})
	v.SetDefault("grid.max_features", []int{0})
}

// Load はviperから設定を読み出して検証する
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}
