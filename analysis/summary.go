package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"gonum.org/v1/gonum/stat"
)

// SummaryLevels are the quantiles reported by TimeSummary.
var SummaryLevels = []float64{0.01, 0.025, 0.1, 0.25, 0.75, 0.9, 0.975, 0.99}

// TimeSummary describes the distribution of finishing times in hours.
// Outliers lie outside [Q1-1.5*IQR, Q3+1.5*IQR].
func (d *Dataset) TimeSummary() (models.TimeSummary, bool) {
	hours := make([]float64, 0, len(d.results))
	for _, r := range d.results {
		if r.HasTime {
			hours = append(hours, r.TimeHours)
		}
	}
	if len(hours) == 0 {
		return models.TimeSummary{}, false
	}
	sort.Float64s(hours)

	quantiles := make(map[float64]float64, len(SummaryLevels))
	for _, p := range SummaryLevels {
		quantiles[p] = quantile(hours, p)
	}
	q1, q3 := quantiles[0.25], quantiles[0.75]
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	outliers := 0
	for _, h := range hours {
		if h < lower || h > upper {
			outliers++
		}
	}

	return models.TimeSummary{
		Count:     len(hours),
		Mean:      stat.Mean(hours, nil),
		Median:    quantile(hours, 0.5),
		Min:       hours[0],
		Max:       hours[len(hours)-1],
		Quantiles: quantiles,
		IQR:       iqr,
		Outliers:  outliers,
	}, true
}

// LevelName formats a quantile level as a percentile label, 0.975 -> "p97.5".
func LevelName(p float64) string {
	return fmt.Sprintf("p%g", math.Round(p*1000)/10)
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	floor, ceil := math.Floor(pos), math.Ceil(pos)
	if floor == ceil {
		return sorted[int(pos)]
	}
	lower, upper := sorted[int(floor)], sorted[int(ceil)]
	return lower + (pos-floor)*(upper-lower)
}

// SummaryFrame lays the summary out as (statistic, hours) rows.
func SummaryFrame(s models.TimeSummary) dataframe.DataFrame {
	names := []string{"count", "mean", "median", "min", "max"}
	values := []float64{float64(s.Count), s.Mean, s.Median, s.Min, s.Max}
	for _, p := range SummaryLevels {
		names = append(names, LevelName(p))
		values = append(values, s.Quantiles[p])
	}
	names = append(names, "iqr", "outliers")
	values = append(values, s.IQR, float64(s.Outliers))

	return dataframe.New(
		series.New(names, series.String, "statistic"),
		series.New(values, series.Float, "hours"),
	)
}
