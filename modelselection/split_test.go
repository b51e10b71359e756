package modelselection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func splitData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*10)
		y.Set(i, 0, float64(i)*100)
	}
	return X, y
}

func TestTrainTestSplit(t *testing.T) {
	t.Run("partition sizes match the ratio", func(t *testing.T) {
		X, y := splitData(10)
		XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.2, 42)
		require.NoError(t, err)

		rTrain, _ := XTrain.Dims()
		rTest, _ := XTest.Dims()
		assert.Equal(t, 8, rTrain)
		assert.Equal(t, 2, rTest)

		ryTrain, _ := yTrain.Dims()
		ryTest, _ := yTest.Dims()
		assert.Equal(t, 8, ryTrain)
		assert.Equal(t, 2, ryTest)
	})

	t.Run("rows stay paired with their targets", func(t *testing.T) {
		X, y := splitData(10)
		XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.3, 7)
		require.NoError(t, err)

		check := func(Xp, yp *mat.Dense) {
			r, _ := Xp.Dims()
			for i := 0; i < r; i++ {
				assert.Equal(t, Xp.At(i, 0)*100, yp.At(i, 0))
			}
		}
		check(XTrain, yTrain)
		check(XTest, yTest)
	})

	t.Run("partitions do not overlap and cover all rows", func(t *testing.T) {
		X, y := splitData(10)
		XTrain, XTest, _, _, err := TrainTestSplit(X, y, 0.2, 1)
		require.NoError(t, err)

		seen := map[float64]int{}
		for _, m := range []*mat.Dense{XTrain, XTest} {
			r, _ := m.Dims()
			for i := 0; i < r; i++ {
				seen[m.At(i, 0)]++
			}
		}
		require.Len(t, seen, 10)
		for _, count := range seen {
			assert.Equal(t, 1, count)
		}
	})

	t.Run("same seed gives identical split", func(t *testing.T) {
		X, y := splitData(20)
		_, XTest1, _, _, err := TrainTestSplit(X, y, 0.25, 42)
		require.NoError(t, err)
		_, XTest2, _, _, err := TrainTestSplit(X, y, 0.25, 42)
		require.NoError(t, err)
		assert.True(t, mat.Equal(XTest1, XTest2))
	})

	t.Run("different seed gives a different split", func(t *testing.T) {
		X, y := splitData(20)
		_, XTest1, _, _, err := TrainTestSplit(X, y, 0.25, 1)
		require.NoError(t, err)
		_, XTest2, _, _, err := TrainTestSplit(X, y, 0.25, 2)
		require.NoError(t, err)
		assert.False(t, mat.Equal(XTest1, XTest2))
	})

	t.Run("rejects out-of-range ratio", func(t *testing.T) {
		X, y := splitData(10)
		for _, ratio := range []float64{0, 1, -0.5, 1.5} {
			_, _, _, _, err := TrainTestSplit(X, y, ratio, 42)
			require.Error(t, err)
		}
	})

	t.Run("rejects a split that empties a partition", func(t *testing.T) {
		X, y := splitData(2)
		_, _, _, _, err := TrainTestSplit(X, y, 0.1, 42)
		require.Error(t, err)
	})

	t.Run("rejects row mismatch", func(t *testing.T) {
		X, _ := splitData(10)
		_, y := splitData(5)
		_, _, _, _, err := TrainTestSplit(X, y, 0.2, 42)
		require.Error(t, err)
	})
}
