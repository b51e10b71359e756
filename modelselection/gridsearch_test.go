package modelselection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func gridData() (*mat.Dense, *mat.Dense) {
	n := 24
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%3))
		// 第1特徴量に対する単調な信号。どの検証フォールドにも分散が残る。
		y.Set(i, 0, float64(i)*0.5)
	}
	return X, y
}

func TestForestGridCombinations(t *testing.T) {
	t.Run("enumerates the full product in order", func(t *testing.T) {
		grid := ForestGrid{
			NEstimators: []int{10, 20},
			MaxDepth:    []int{0, 5},
		}
		combos := grid.combinations()
		require.Len(t, combos, 4)

		assert.Equal(t, ForestParams{NEstimators: 10, MaxDepth: 0, MinSamplesSplit: 2, MaxFeatures: 0}, combos[0])
		assert.Equal(t, ForestParams{NEstimators: 10, MaxDepth: 5, MinSamplesSplit: 2, MaxFeatures: 0}, combos[1])
		assert.Equal(t, ForestParams{NEstimators: 20, MaxDepth: 0, MinSamplesSplit: 2, MaxFeatures: 0}, combos[2])
		assert.Equal(t, ForestParams{NEstimators: 20, MaxDepth: 5, MinSamplesSplit: 2, MaxFeatures: 0}, combos[3])
	})

	t.Run("empty grid searches a single default candidate", func(t *testing.T) {
		combos := ForestGrid{}.combinations()
		require.Len(t, combos, 1)
		assert.Equal(t, ForestParams{NEstimators: 100, MaxDepth: 0, MinSamplesSplit: 2, MaxFeatures: 0}, combos[0])
	})
}

func TestGridSearchCVFit(t *testing.T) {
	t.Run("evaluates every candidate and returns a fitted forest", func(t *testing.T) {
		X, y := gridData()
		grid := ForestGrid{
			NEstimators: []int{5, 10},
			MaxDepth:    []int{0, 3},
		}

		gs := NewGridSearchCV(grid, 3, 42)
		forest, err := gs.Fit(X, y)
		require.NoError(t, err)
		require.NotNil(t, forest)
		assert.True(t, forest.IsFitted())

		assert.Len(t, gs.Results, 4)

		// 最良スコアは全候補の最大値と一致する
		for _, res := range gs.Results {
			assert.LessOrEqual(t, res.MeanScore, gs.BestScore)
			assert.Len(t, res.Scores, 3)
		}
	})

	t.Run("best params come from the grid", func(t *testing.T) {
		X, y := gridData()
		grid := ForestGrid{NEstimators: []int{5}, MaxDepth: []int{2, 4}}

		gs := NewGridSearchCV(grid, 2, 42)
		_, err := gs.Fit(X, y)
		require.NoError(t, err)

		assert.Equal(t, 5, gs.BestParams.NEstimators)
		assert.Contains(t, []int{2, 4}, gs.BestParams.MaxDepth)
	})

	t.Run("search is seed deterministic", func(t *testing.T) {
		X, y := gridData()
		grid := ForestGrid{NEstimators: []int{5, 8}, MaxDepth: []int{0, 3}}

		a := NewGridSearchCV(grid, 3, 42)
		_, err := a.Fit(X, y)
		require.NoError(t, err)

		b := NewGridSearchCV(grid, 3, 42)
		_, err = b.Fit(X, y)
		require.NoError(t, err)

		assert.Equal(t, a.BestParams, b.BestParams)
		assert.Equal(t, a.BestScore, b.BestScore)
		assert.Equal(t, a.Results, b.Results)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		gs := NewGridSearchCV(ForestGrid{}, 2, 42)
		_, err := gs.Fit(&mat.Dense{}, &mat.Dense{})
		require.Error(t, err)
	})

	t.Run("rejects fewer samples than folds", func(t *testing.T) {
		X := mat.NewDense(2, 1, []float64{1, 2})
		y := mat.NewDense(2, 1, []float64{1, 2})
		gs := NewGridSearchCV(ForestGrid{NEstimators: []int{2}}, 3, 42)
		_, err := gs.Fit(X, y)
		require.Error(t, err)
	})
}
