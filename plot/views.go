package plot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoChart = errors.New("view has no chart")

// Charted lists the views Render can draw.
var Charted = []string{
	analysis.ViewYearly,
	analysis.ViewPopulation,
	analysis.ViewAge,
	analysis.ViewGender,
	analysis.ViewTop,
	analysis.ViewGap,
}

// Render draws the named view of ds as PNG.
func Render(ds *analysis.Dataset, view string, p analysis.Params) ([]byte, error) {
	switch view {
	case analysis.ViewYearly:
		return YearlyChart(ds.YearlyTimes())
	case analysis.ViewPopulation:
		return CountsChart(fmt.Sprintf("Participants per country and gender (> %d)", p.Threshold), ds.Population(p.Threshold))
	case analysis.ViewAge:
		return AgeChart(ds.AgeTimes())
	case analysis.ViewGender:
		return GenderChart(ds.GenderYearTimes())
	case analysis.ViewTop:
		return CountsChart(fmt.Sprintf("Top %d finishers by country (%s)", p.TopN, p.Gender), ds.TopFinishers(p.Gender, p.TopN))
	case analysis.ViewGap:
		gap, ok := ds.GenderGap()
		if !ok {
			return nil, ErrNoData
		}
		return GapChart(gap)
	case analysis.ViewResults:
		return nil, fmt.Errorf("%w: %s", ErrNoChart, view)
	}
	return nil, fmt.Errorf("%w: %q", analysis.ErrUnknownView, view)
}

func YearlyChart(rows []models.YearlyTime) ([]byte, error) {
	data := lineData{
		nameGraph: "Average and best finishing time per year",
		nameXAxis: "year",
		nameYAxis: "hours",
		lines:     []line{{name: "Average Times"}, {name: "Finishing times"}},
	}
	for _, r := range rows {
		data.xValues = append(data.xValues, float64(r.Year))
		data.lines[0].yValues = append(data.lines[0].yValues, r.Average)
		data.lines[1].yValues = append(data.lines[1].yValues, r.Finishing)
	}
	return DrawLines(data)
}

func AgeChart(rows []models.AgeTime) ([]byte, error) {
	data := lineData{
		nameGraph: "Average finishing time by age",
		nameXAxis: "age",
		nameYAxis: "hours",
		lines:     []line{{name: "time_hours"}},
		dots:      true,
	}
	for _, r := range rows {
		data.xValues = append(data.xValues, float64(r.Age))
		data.lines[0].yValues = append(data.lines[0].yValues, r.TimeHours)
	}
	return DrawLines(data)
}

// GenderChart draws one series per gender over the union of years.
func GenderChart(rows []models.GenderYearTime) ([]byte, error) {
	yearSet := map[int]struct{}{}
	byGender := map[string]map[int]float64{}
	var genders []string
	for _, r := range rows {
		yearSet[r.Year] = struct{}{}
		if _, ok := byGender[r.Gender]; !ok {
			byGender[r.Gender] = map[int]float64{}
			genders = append(genders, r.Gender)
		}
		byGender[r.Gender][r.Year] = r.TimeHours
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	data := lineData{
		nameGraph: "Average finishing time per gender",
		nameXAxis: "year",
		nameYAxis: "hours",
		dots:      true,
	}
	for _, y := range years {
		data.xValues = append(data.xValues, float64(y))
	}
	for _, g := range genders {
		l := line{name: g}
		for _, y := range years {
			v, ok := byGender[g][y]
			if !ok {
				v = math.NaN()
			}
			l.yValues = append(l.yValues, v)
		}
		data.lines = append(data.lines, l)
	}
	return DrawLines(data)
}

// CountsChart draws country and gender groups as bars, colored by gender.
func CountsChart(title string, rows []models.CountryGenderCount) ([]byte, error) {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	colors := make([]drawing.Color, len(rows))
	for i, r := range rows {
		labels[i] = r.Country + " " + r.Gender
		values[i] = float64(r.Count)
		colors[i] = genderColor(r.Gender)
	}
	data := newDataLabelsForGraph(labels, values, "count", title)
	data.colors = colors
	return DrawPlotBar(data)
}

func GapChart(gap models.GenderGap) ([]byte, error) {
	data := newDataLabelsForGraph(
		[]string{analysis.GenderMale, analysis.GenderFemale},
		[]float64{gap.Male, gap.Female},
		"hours",
		fmt.Sprintf("Mean time by gender, gap %.2f h", gap.Difference),
	)
	data.colors = []drawing.Color{genderColor(analysis.GenderMale), genderColor(analysis.GenderFemale)}
	return DrawPlotBar(data)
}

func genderColor(g string) drawing.Color {
	switch g {
	case analysis.GenderMale:
		return drawing.ColorBlue.WithAlpha(160)
	case analysis.GenderFemale:
		return drawing.ColorRed.WithAlpha(160)
	}
	return drawing.ColorPurple.WithAlpha(100)
}
