package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales\n"

func TestReadCSVFrom(t *testing.T) {
	t.Run("parses well-formed rows", func(t *testing.T) {
		in := header +
			"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n" +
			"2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24\n"

		table, err := ReadCSVFrom(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())

		rec := table.Record(0)
		assert.Equal(t, 1, rec.Rank)
		assert.Equal(t, "Wii Sports", rec.Name)
		assert.Equal(t, "Wii", rec.Platform)
		assert.True(t, rec.Year.Valid)
		assert.Equal(t, 2006, rec.Year.Int)
		assert.Equal(t, "Sports", rec.Genre)
		assert.True(t, rec.Publisher.Valid)
		assert.Equal(t, "Nintendo", rec.Publisher.String)
		assert.InDelta(t, 41.49, rec.NASales, 1e-12)
		assert.InDelta(t, 82.74, rec.GlobalSales, 1e-12)
	})

	t.Run("normalizes N/A sentinels to null", func(t *testing.T) {
		in := header +
			"100,Some Game,PS2,N/A,Action,N/A,1.0,0.5,0.2,0.1,1.8\n"

		table, err := ReadCSVFrom(strings.NewReader(in))
		require.NoError(t, err)

		rec := table.Record(0)
		assert.False(t, rec.Year.Valid)
		assert.False(t, rec.Publisher.Valid)
	})

	t.Run("coerces unparseable year to null", func(t *testing.T) {
		in := header +
			"100,Some Game,PS2,not-a-year,Action,Sony,1.0,0.5,0.2,0.1,1.8\n"

		table, err := ReadCSVFrom(strings.NewReader(in))
		require.NoError(t, err)
		assert.False(t, table.Record(0).Year.Valid)
	})

	t.Run("accepts float-formatted year", func(t *testing.T) {
		in := header +
			"100,Some Game,PS2,2006.0,Action,Sony,1.0,0.5,0.2,0.1,1.8\n"

		table, err := ReadCSVFrom(strings.NewReader(in))
		require.NoError(t, err)
		rec := table.Record(0)
		require.True(t, rec.Year.Valid)
		assert.Equal(t, 2006, rec.Year.Int)
	})

	t.Run("rejects negative sales", func(t *testing.T) {
		in := header +
			"100,Some Game,PS2,2006,Action,Sony,-1.0,0.5,0.2,0.1,1.8\n"

		_, err := ReadCSVFrom(strings.NewReader(in))
		require.Error(t, err)
	})

	t.Run("rejects wrong header", func(t *testing.T) {
		in := "Rank,Title,Platform,Year,Genre,Publisher,NA,EU,JP,Other,Global\n" +
			"1,Game,Wii,2006,Sports,Nintendo,1,1,1,1,4\n"

		_, err := ReadCSVFrom(strings.NewReader(in))
		require.Error(t, err)
	})

	t.Run("rejects empty dataset", func(t *testing.T) {
		_, err := ReadCSVFrom(strings.NewReader(header))
		require.Error(t, err)
	})
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV("does/not/exist.csv")
	require.Error(t, err)
}

func TestTableColumns(t *testing.T) {
	in := header +
		"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n" +
		"2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24\n"
	table, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)

	t.Run("raw sales columns", func(t *testing.T) {
		na, err := table.Column(ColNASales)
		require.NoError(t, err)
		assert.Equal(t, []float64{41.49, 29.08}, na)
	})

	t.Run("categorical columns", func(t *testing.T) {
		platforms, err := table.Strings(ColPlatform)
		require.NoError(t, err)
		assert.Equal(t, []string{"Wii", "NES"}, platforms)
	})

	t.Run("derived columns require a cleaned table", func(t *testing.T) {
		_, err := table.Column(ColNASalesLog)
		require.Error(t, err)
		_, err = table.Column(ColYear)
		require.Error(t, err)
	})

	t.Run("distinct values are sorted", func(t *testing.T) {
		distinct, err := table.DistinctStrings(ColPlatform)
		require.NoError(t, err)
		assert.Equal(t, []string{"NES", "Wii"}, distinct)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := table.Column("Bogus")
		require.Error(t, err)
		_, err = table.Strings("Bogus")
		require.Error(t, err)
	})
}

func TestRecordsReturnsCopy(t *testing.T) {
	in := header +
		"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n"
	table, err := ReadCSVFrom(strings.NewReader(in))
	require.NoError(t, err)

	recs := table.Records()
	recs[0].Name = "mutated"
	assert.Equal(t, "Wii Sports", table.Record(0).Name)
}

func TestDedupKey(t *testing.T) {
	a := Record{Rank: 1, Name: "A", Platform: "Wii", Year: NullInt{Int: 2006, Valid: true}, NASales: 1}
	b := a
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	b.Year = NullInt{}
	assert.NotEqual(t, a.DedupKey(), b.DedupKey())

	// null Year and Year 0 must not collide
	c := a
	c.Year = NullInt{Int: 0, Valid: true}
	assert.NotEqual(t, b.DedupKey(), c.DedupKey())
}
