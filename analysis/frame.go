package analysis

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pivolan/marathon_analyzer/domain/models"
)

var ErrUnknownView = errors.New("unknown view")

// View names.
const (
	ViewYearly     = "yearly"
	ViewPopulation = "population"
	ViewAge        = "age"
	ViewGender     = "gender"
	ViewTop        = "top"
	ViewGap        = "gap"
	ViewResults    = "results"
)

// Views lists the named views in presentation order.
var Views = []string{ViewYearly, ViewPopulation, ViewAge, ViewGender, ViewTop, ViewGap, ViewResults}

// MaxPage bounds the page number accepted from users.
const MaxPage = 1_000_000

// Params are the knobs of the parameterised views.
type Params struct {
	Gender    string // top
	TopN      int    // top
	Threshold int    // population
	Page      int    // results
	PageSize  int    // results
}

func DefaultParams() Params {
	return Params{Gender: GenderAll, TopN: 50, Threshold: 1000, Page: 1, PageSize: 10}
}

// Frame computes the named view as a table with stable column names.
func (d *Dataset) Frame(view string, p Params) (dataframe.DataFrame, error) {
	switch view {
	case ViewYearly:
		return YearlyFrame(d.YearlyTimes()), nil
	case ViewPopulation:
		return CountsFrame(d.Population(p.Threshold)), nil
	case ViewAge:
		return AgeFrame(d.AgeTimes()), nil
	case ViewGender:
		return GenderYearFrame(d.GenderYearTimes()), nil
	case ViewTop:
		return CountsFrame(d.TopFinishers(p.Gender, p.TopN)), nil
	case ViewGap:
		gap, ok := d.GenderGap()
		if !ok {
			return GapFrame(), nil
		}
		return GapFrame(gap), nil
	case ViewResults:
		rows, _ := d.Leaderboard(p.Page, p.PageSize)
		return ResultsFrame(rows), nil
	}
	return dataframe.DataFrame{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
}

func YearlyFrame(rows []models.YearlyTime) dataframe.DataFrame {
	years := make([]int, len(rows))
	avg := make([]float64, len(rows))
	best := make([]float64, len(rows))
	for i, r := range rows {
		years[i], avg[i], best[i] = r.Year, r.Average, r.Finishing
	}
	return dataframe.New(
		series.New(years, series.Int, "year"),
		series.New(avg, series.Float, "Average Times"),
		series.New(best, series.Float, "Finishing times"),
	)
}

func CountsFrame(rows []models.CountryGenderCount) dataframe.DataFrame {
	countries := make([]string, len(rows))
	genders := make([]string, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		countries[i], genders[i], counts[i] = r.Country, r.Gender, r.Count
	}
	return dataframe.New(
		series.New(countries, series.String, "country"),
		series.New(genders, series.String, "gender"),
		series.New(counts, series.Int, "count"),
	)
}

func AgeFrame(rows []models.AgeTime) dataframe.DataFrame {
	ages := make([]int, len(rows))
	hours := make([]float64, len(rows))
	for i, r := range rows {
		ages[i], hours[i] = r.Age, r.TimeHours
	}
	return dataframe.New(
		series.New(ages, series.Int, "age"),
		series.New(hours, series.Float, "time_hours"),
	)
}

func GenderYearFrame(rows []models.GenderYearTime) dataframe.DataFrame {
	genders := make([]string, len(rows))
	years := make([]int, len(rows))
	hours := make([]float64, len(rows))
	for i, r := range rows {
		genders[i], years[i], hours[i] = r.Gender, r.Year, r.TimeHours
	}
	return dataframe.New(
		series.New(genders, series.String, "gender"),
		series.New(years, series.Int, "year"),
		series.New(hours, series.Float, "time_hours"),
	)
}

// GapFrame has one row per gap given; none means the gap is unknown.
func GapFrame(gaps ...models.GenderGap) dataframe.DataFrame {
	male := make([]float64, len(gaps))
	female := make([]float64, len(gaps))
	diff := make([]float64, len(gaps))
	for i, g := range gaps {
		male[i], female[i], diff[i] = g.Male, g.Female, g.Difference
	}
	return dataframe.New(
		series.New(male, series.Float, "male_hours"),
		series.New(female, series.Float, "female_hours"),
		series.New(diff, series.Float, "difference_hours"),
	)
}

// ResultsFrame keeps the age column numeric; a missing age is NaN.
func ResultsFrame(rows []models.Result) dataframe.DataFrame {
	years := make([]int, len(rows))
	countries := make([]string, len(rows))
	genders := make([]string, len(rows))
	ages := make([]string, len(rows))
	times := make([]string, len(rows))
	for i, r := range rows {
		years[i], countries[i], genders[i], times[i] = r.Year, r.Country, r.Gender, r.Time
		ages[i] = "NaN"
		if r.HasAge {
			ages[i] = strconv.Itoa(r.Age)
		}
	}
	return dataframe.New(
		series.New(years, series.Int, "year"),
		series.New(countries, series.String, "country"),
		series.New(genders, series.String, "gender"),
		series.New(ages, series.Int, "age"),
		series.New(times, series.String, "time"),
	)
}
