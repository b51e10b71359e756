package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	t.Run("vocabulary is sorted and deterministic", func(t *testing.T) {
		enc := NewLabelEncoder()
		out, err := enc.FitTransform([]string{"Wii", "DS", "Wii", "PS2"})
		require.NoError(t, err)

		assert.Equal(t, []string{"DS", "PS2", "Wii"}, enc.Classes)
		assert.Equal(t, []float64{2, 0, 2, 1}, out)
	})

	t.Run("same categories in different order give same mapping", func(t *testing.T) {
		a := NewLabelEncoder()
		require.NoError(t, a.Fit([]string{"Wii", "DS", "PS2"}))
		b := NewLabelEncoder()
		require.NoError(t, b.Fit([]string{"PS2", "Wii", "DS"}))
		assert.Equal(t, a.Classes, b.Classes)
	})

	t.Run("unseen category is an error", func(t *testing.T) {
		enc := NewLabelEncoder()
		require.NoError(t, enc.Fit([]string{"Wii", "DS"}))
		_, err := enc.Transform([]string{"PS5"})
		require.Error(t, err)
	})

	t.Run("transform before fit is an error", func(t *testing.T) {
		_, err := NewLabelEncoder().Transform([]string{"Wii"})
		require.Error(t, err)
	})

	t.Run("empty input is an error", func(t *testing.T) {
		require.Error(t, NewLabelEncoder().Fit(nil))
	})
}

func TestOneHotEncoder(t *testing.T) {
	t.Run("expands to indicator columns", func(t *testing.T) {
		enc := NewOneHotEncoder()
		m, err := enc.FitTransform([]string{"Sports", "Action", "Sports"})
		require.NoError(t, err)

		require.Equal(t, []string{"Action", "Sports"}, enc.Classes)
		assert.Equal(t, 2, enc.NFeatures())

		r, c := m.Dims()
		require.Equal(t, 3, r)
		require.Equal(t, 2, c)
		assert.Equal(t, []float64{0, 1}, []float64{m.At(0, 0), m.At(0, 1)})
		assert.Equal(t, []float64{1, 0}, []float64{m.At(1, 0), m.At(1, 1)})
		assert.Equal(t, []float64{0, 1}, []float64{m.At(2, 0), m.At(2, 1)})
	})

	t.Run("unseen category becomes all-zero row", func(t *testing.T) {
		enc := NewOneHotEncoder()
		require.NoError(t, enc.Fit([]string{"Sports", "Action"}))

		m, err := enc.Transform([]string{"Puzzle"})
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.At(0, 0))
		assert.Equal(t, 0.0, m.At(0, 1))
	})

	t.Run("transform before fit is an error", func(t *testing.T) {
		_, err := NewOneHotEncoder().Transform([]string{"Sports"})
		require.Error(t, err)
	})
}
