package modelselection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldSplit(t *testing.T) {
	t.Run("even division", func(t *testing.T) {
		folds := NewKFold(5, false, 0).Split(10)
		require.Len(t, folds, 5)
		for _, fold := range folds {
			assert.Len(t, fold.TestIndices, 2)
			assert.Len(t, fold.TrainIndices, 8)
		}
	})

	t.Run("remainder goes to the leading folds", func(t *testing.T) {
		folds := NewKFold(3, false, 0).Split(10)
		require.Len(t, folds, 3)
		assert.Len(t, folds[0].TestIndices, 4)
		assert.Len(t, folds[1].TestIndices, 3)
		assert.Len(t, folds[2].TestIndices, 3)
	})

	t.Run("test folds cover every row exactly once", func(t *testing.T) {
		folds := NewKFold(4, true, 42).Split(11)

		var all []int
		for _, fold := range folds {
			all = append(all, fold.TestIndices...)
		}
		sort.Ints(all)
		require.Len(t, all, 11)
		for i, v := range all {
			assert.Equal(t, i, v)
		}
	})

	t.Run("train and test never overlap", func(t *testing.T) {
		folds := NewKFold(3, true, 7).Split(9)
		for _, fold := range folds {
			inTest := map[int]bool{}
			for _, i := range fold.TestIndices {
				inTest[i] = true
			}
			for _, i := range fold.TrainIndices {
				assert.False(t, inTest[i])
			}
			assert.Len(t, fold.TrainIndices, 9-len(fold.TestIndices))
		}
	})

	t.Run("shuffle is seed deterministic", func(t *testing.T) {
		a := NewKFold(3, true, 42).Split(12)
		b := NewKFold(3, true, 42).Split(12)
		assert.Equal(t, a, b)
	})

	t.Run("fewer than two folds falls back to five", func(t *testing.T) {
		kf := NewKFold(1, false, 0)
		assert.Equal(t, 5, kf.NSplits)
	})
}
