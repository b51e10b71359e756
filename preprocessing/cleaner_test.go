package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vgsales/dataset"
)

func year(y int) dataset.NullInt {
	return dataset.NullInt{Int: y, Valid: true}
}

func publisher(p string) dataset.NullString {
	return dataset.NullString{String: p, Valid: true}
}

func record(rank int, name, platform string, y dataset.NullInt, p dataset.NullString, jp float64) dataset.Record {
	return dataset.Record{
		Rank: rank, Name: name, Platform: platform, Year: y,
		Genre: "Action", Publisher: p,
		NASales: 1.0, EUSales: 0.5, JPSales: jp, OtherSales: 0.1,
		GlobalSales: 1.6 + jp,
	}
}

func TestCleanerImputation(t *testing.T) {
	t.Run("null year filled from title average", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			record(1, "Title A", "Wii", year(2005), publisher("X"), 0),
			record(2, "Title A", "PS2", dataset.NullInt{}, publisher("X"), 0),
		})

		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)
		require.Equal(t, 2, cleaned.Len())

		for _, rec := range cleaned.Records() {
			require.True(t, rec.Year.Valid)
			assert.Equal(t, 2005, rec.Year.Int)
		}
	})

	t.Run("year average is rounded across platforms", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			record(1, "Title A", "Wii", year(2004), publisher("X"), 0),
			record(2, "Title A", "PS2", year(2007), publisher("X"), 0),
			record(3, "Title A", "DS", dataset.NullInt{}, publisher("X"), 0),
		})

		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)

		// mean(2004, 2007) = 2005.5 → 2006
		for _, rec := range cleaned.Records() {
			if rec.Platform == "DS" {
				assert.Equal(t, 2006, rec.Year.Int)
			}
		}
	})

	t.Run("null publisher filled with modal value", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			record(1, "Title A", "Wii", year(2005), publisher("Big Corp"), 0),
			record(2, "Title A", "PS2", year(2005), publisher("Big Corp"), 0),
			record(3, "Title A", "DS", year(2005), publisher("Small Corp"), 0),
			record(4, "Title A", "PC", year(2005), dataset.NullString{}, 0),
		})

		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)

		for _, rec := range cleaned.Records() {
			if rec.Platform == "PC" {
				assert.Equal(t, "Big Corp", rec.Publisher.String)
			}
		}
	})

	t.Run("publisher tie broken lexicographically", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			record(1, "Title A", "Wii", year(2005), publisher("Zeta"), 0),
			record(2, "Title A", "PS2", year(2005), publisher("Alpha"), 0),
			record(3, "Title A", "DS", year(2005), dataset.NullString{}, 0),
		})

		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)

		for _, rec := range cleaned.Records() {
			if rec.Platform == "DS" {
				assert.Equal(t, "Alpha", rec.Publisher.String)
			}
		}
	})

	t.Run("irrecoverable rows silently dropped", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			record(1, "Known", "Wii", year(2005), publisher("X"), 0),
			// タイトル全体でYearが一度も観測されない
			record(2, "Unknown", "PS2", dataset.NullInt{}, publisher("X"), 0),
		})

		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)
		require.Equal(t, 1, cleaned.Len())
		assert.Equal(t, "Known", cleaned.Record(0).Name)
	})
}

func TestCleanerInvariants(t *testing.T) {
	raw := dataset.NewTable([]dataset.Record{
		record(1, "Title A", "Wii", year(2005), publisher("X"), 1.5),
		record(1, "Title A", "Wii", year(2005), publisher("X"), 1.5), // 完全重複
		record(2, "Title B", "PS2", year(2017), publisher("Y"), 0),   // 既知の不良Year
		record(3, "Title C", "DS", year(2020), publisher("Z"), 0),    // 既知の不良Year
		record(4, "Title D", "PC", year(2010), publisher("W"), 1.0),
		record(5, "Title E", "PS4", dataset.NullInt{}, dataset.NullString{}, 0.2), // 補完不能
	})

	cleaned, err := NewCleaner().Transform(raw)
	require.NoError(t, err)

	t.Run("no nulls and no excluded years", func(t *testing.T) {
		for _, rec := range cleaned.Records() {
			assert.True(t, rec.Year.Valid)
			assert.True(t, rec.Publisher.Valid)
			assert.NotEqual(t, 2017, rec.Year.Int)
			assert.NotEqual(t, 2020, rec.Year.Int)
		}
	})

	t.Run("exact duplicates removed", func(t *testing.T) {
		assert.Equal(t, 2, cleaned.Len())
	})

	t.Run("log columns equal log1p of sales", func(t *testing.T) {
		for _, rec := range cleaned.Records() {
			assert.InDelta(t, math.Log1p(rec.NASales), rec.NASalesLog, 1e-12)
			assert.InDelta(t, math.Log1p(rec.EUSales), rec.EUSalesLog, 1e-12)
			assert.InDelta(t, math.Log1p(rec.JPSales), rec.JPSalesLog, 1e-12)
			assert.InDelta(t, math.Log1p(rec.OtherSales), rec.OtherSalesLog, 1e-12)
			assert.InDelta(t, math.Log1p(rec.GlobalSales), rec.GlobalSalesLog, 1e-12)
		}
	})

	t.Run("japan hit flag is strict greater-than", func(t *testing.T) {
		for _, rec := range cleaned.Records() {
			if rec.JPSales > 1.0 {
				assert.Equal(t, 1, rec.IsJapanHit)
			} else {
				assert.Equal(t, 0, rec.IsJapanHit)
			}
		}
		// JP=1.5 → 1, JP=1.0 → 0 を明示的に確認
		byName := map[string]dataset.Record{}
		for _, rec := range cleaned.Records() {
			byName[rec.Name] = rec
		}
		assert.Equal(t, 1, byName["Title A"].IsJapanHit)
		assert.Equal(t, 0, byName["Title D"].IsJapanHit)
	})

	t.Run("zero sales log is zero", func(t *testing.T) {
		raw := dataset.NewTable([]dataset.Record{
			{Rank: 1, Name: "Zero", Platform: "PC", Year: year(2010), Genre: "Puzzle",
				Publisher: publisher("X")},
		})
		cleaned, err := NewCleaner().Transform(raw)
		require.NoError(t, err)
		assert.Equal(t, 0.0, cleaned.Record(0).NASalesLog)
	})
}

func TestCleanerIdempotence(t *testing.T) {
	raw := dataset.NewTable([]dataset.Record{
		record(1, "Title A", "Wii", year(2005), publisher("X"), 1.5),
		record(2, "Title A", "PS2", dataset.NullInt{}, publisher("X"), 0.3),
		record(3, "Title B", "DS", year(2011), publisher("Y"), 0),
	})

	cleaner := NewCleaner()
	once, err := cleaner.Transform(raw)
	require.NoError(t, err)

	twice, err := cleaner.Transform(once)
	require.NoError(t, err)

	require.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Records(), twice.Records())
}

func TestCleanerPurity(t *testing.T) {
	records := []dataset.Record{
		record(1, "Title A", "Wii", year(2005), publisher("X"), 0),
		record(2, "Title A", "PS2", dataset.NullInt{}, publisher("X"), 0),
	}
	raw := dataset.NewTable(records)

	_, err := NewCleaner().Transform(raw)
	require.NoError(t, err)

	// 入力テーブルのnullは埋められていない
	assert.False(t, raw.Record(1).Year.Valid)
}

func TestCleanerEmptyInput(t *testing.T) {
	_, err := NewCleaner().Transform(dataset.NewTable(nil))
	require.Error(t, err)
}
