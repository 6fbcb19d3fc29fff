package dashboard

import (
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/go_utils"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/pivolan/marathon_analyzer/logger"
)

func (s *Server) charts(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderCharts(w, s.dataset(q), q.params()); err != nil {
		s.log.Error(r.Context(), "render charts", logger.Error(err))
	}
}

// RenderCharts writes an interactive HTML page with every charted view.
func RenderCharts(w io.Writer, ds *analysis.Dataset, p analysis.Params) error {
	page := components.NewPage()
	page.AddCharts(
		yearlyLine(ds.YearlyTimes()),
		ageScatter(ds.AgeTimes()),
		genderScatter(ds.GenderYearTimes()),
		countsBar("Where are most runners from?", ds.Population(p.Threshold)),
		countsBar("Where are the top "+strconv.Itoa(p.TopN)+" runners from?", ds.TopFinishers(p.Gender, p.TopN)),
	)
	return page.Render(w)
}

func initOpts(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "30px"}),
	}
}

func yearlyLine(rows []models.YearlyTime) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(initOpts("Average and Finishing times")...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)

	years := make([]string, len(rows))
	avg := make([]opts.LineData, len(rows))
	best := make([]opts.LineData, len(rows))
	for i, r := range rows {
		years[i] = strconv.Itoa(r.Year)
		avg[i] = opts.LineData{Value: round3(r.Average)}
		best[i] = opts.LineData{Value: round3(r.Finishing)}
	}
	line.SetXAxis(years).
		AddSeries("Average Times", avg).
		AddSeries("Finishing times", best)
	return line
}

func ageScatter(rows []models.AgeTime) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(initOpts("Average time by age")...)
	sc.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "age"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)

	ages := make([]string, len(rows))
	data := make([]opts.ScatterData, len(rows))
	for i, r := range rows {
		ages[i] = strconv.Itoa(r.Age)
		data[i] = opts.ScatterData{Value: round3(r.TimeHours), SymbolSize: 8}
	}
	sc.SetXAxis(ages).AddSeries("time_hours", data)
	return sc
}

// genderScatter puts one series per gender on a shared year axis; "-" marks
// a year without results for that gender.
func genderScatter(rows []models.GenderYearTime) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(initOpts("Finisher times over the years by gender")...)
	sc.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)

	yearSet := map[int]struct{}{}
	byGender := map[string]map[int]float64{}
	var genders []string
	for _, r := range rows {
		yearSet[r.Year] = struct{}{}
		if byGender[r.Gender] == nil {
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

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	sc.SetXAxis(labels)
	for _, g := range genders {
		data := make([]opts.ScatterData, len(years))
		for i, y := range years {
			if v, ok := byGender[g][y]; ok {
				data[i] = opts.ScatterData{Value: round3(v), SymbolSize: 8}
			} else {
				data[i] = opts.ScatterData{Value: "-"}
			}
		}
		sc.AddSeries(g, data)
	}
	return sc
}

// countsBar stacks the genders of each country.
func countsBar(title string, rows []models.CountryGenderCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(initOpts(title)...)
	bar.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "country", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)

	var countries, genders []string
	counts := map[string]map[string]int{}
	for _, r := range rows {
		if counts[r.Country] == nil {
			counts[r.Country] = map[string]int{}
			countries = append(countries, r.Country)
		}
		if !go_utils.InArray(r.Gender, genders) {
			genders = append(genders, r.Gender)
		}
		counts[r.Country][r.Gender] += r.Count
	}

	bar.SetXAxis(countries)
	for _, g := range genders {
		data := make([]opts.BarData, len(countries))
		for i, c := range countries {
			data[i] = opts.BarData{Value: counts[c][g]}
		}
		bar.AddSeries(g, data, charts.WithBarChartOpts(opts.BarChart{Stack: "count"}))
	}
	return bar
}

func round3(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 3, 64), 64)
	return f
}
