package analysis

import (
	"math"
	"testing"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameColumns(t *testing.T) {
	ds, _ := Clean([]models.RawResult{
		raw("2000", "GER", "male", "30", "2:00:00"),
		raw("2000", "KEN", "female", "M", "3:00:00"),
	})
	p := DefaultParams()
	p.Threshold = 0

	want := map[string][]string{
		ViewYearly:     {"year", "Average Times", "Finishing times"},
		ViewPopulation: {"country", "gender", "count"},
		ViewAge:        {"age", "time_hours"},
		ViewGender:     {"gender", "year", "time_hours"},
		ViewTop:        {"country", "gender", "count"},
		ViewGap:        {"male_hours", "female_hours", "difference_hours"},
		ViewResults:    {"year", "country", "gender", "age", "time"},
	}
	require.Len(t, want, len(Views))
	for _, name := range Views {
		t.Run(name, func(t *testing.T) {
			df, err := ds.Frame(name, p)
			require.NoError(t, err)
			require.NoError(t, df.Err)
			assert.Equal(t, want[name], df.Names())
		})
	}
}

func TestFrameValues(t *testing.T) {
	ds, _ := Clean([]models.RawResult{
		raw("2000", "GER", "male", "30", "2:00:00"),
		raw("2000", "GER", "male", "M", "3:00:00"),
	})

	df, err := ds.Frame(ViewYearly, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())
	year, err := df.Col("year").Elem(0).Int()
	require.NoError(t, err)
	assert.Equal(t, 2000, year)
	assert.InDelta(t, 2.5, df.Col("Average Times").Elem(0).Float(), 1e-9)
	assert.InDelta(t, 2.0, df.Col("Finishing times").Elem(0).Float(), 1e-9)

	df, err = ds.Frame(ViewResults, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, "2:00:00", df.Col("time").Elem(0).String())
	assert.True(t, df.Col("age").Elem(1).IsNA())
	assert.True(t, math.IsNaN(df.Col("age").Float()[1]))
}

func TestGapFrameWithoutBothGenders(t *testing.T) {
	ds, _ := Clean([]models.RawResult{
		raw("2000", "GER", "male", "30", "2:00:00"),
	})
	df, err := ds.Frame(ViewGap, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 0, df.Nrow())
	assert.Equal(t, []string{"male_hours", "female_hours", "difference_hours"}, df.Names())
}

func TestFrameUnknownView(t *testing.T) {
	_, err := NewDataset(nil).Frame("histogram", DefaultParams())
	assert.ErrorIs(t, err, ErrUnknownView)
}
