package analysis

import (
	"testing"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSummary(t *testing.T) {
	var results []models.Result
	for _, h := range []float64{2, 3, 3, 4, 4, 4, 5, 5, 6, 12} {
		results = append(results, timed(2000, "GER", "male", 30, h))
	}
	results = append(results, models.Result{Year: 2000, Country: "GER", Gender: "male"})
	ds := NewDataset(results)

	got, ok := ds.TimeSummary()
	require.True(t, ok)
	assert.Equal(t, 10, got.Count)
	assert.InDelta(t, 4.8, got.Mean, 1e-9)
	assert.InDelta(t, 4.0, got.Median, 1e-9)
	assert.Equal(t, 2.0, got.Min)
	assert.Equal(t, 12.0, got.Max)
	assert.InDelta(t, 3.25, got.Quantiles[0.25], 1e-9)
	assert.InDelta(t, 5.0, got.Quantiles[0.75], 1e-9)
	assert.InDelta(t, 1.75, got.IQR, 1e-9)
	assert.Equal(t, 1, got.Outliers, "only 12h lies above Q3+1.5*IQR")
}

func TestTimeSummaryEmpty(t *testing.T) {
	_, ok := NewDataset(nil).TimeSummary()
	assert.False(t, ok)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{1, 4},
		{0.5, 2.5},
		{0.25, 1.75},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(sorted, tt.p), 1e-9)
		})
	}
}

func TestSummaryFrame(t *testing.T) {
	ds := NewDataset([]models.Result{timed(2000, "GER", "male", 30, 2), timed(2000, "GER", "male", 30, 4)})
	s, ok := ds.TimeSummary()
	require.True(t, ok)

	df := SummaryFrame(s)
	assert.Equal(t, []string{"statistic", "hours"}, df.Names())
	assert.Equal(t, 7+len(SummaryLevels), df.Nrow())
	assert.Equal(t, "count", df.Col("statistic").Elem(0).String())
	assert.Equal(t, 2.0, df.Col("hours").Elem(0).Float())
	assert.Equal(t, "p2.5", df.Col("statistic").Elem(6).String())
}
