package analysis

import (
	"sort"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"gonum.org/v1/gonum/stat"
)

// Dataset is the cleaned result set. It is never modified after Clean,
// so views can be computed from several goroutines at once.
type Dataset struct {
	results []models.Result
}

// NewDataset wraps already cleaned results. The slice is copied.
func NewDataset(results []models.Result) *Dataset {
	return &Dataset{results: append([]models.Result(nil), results...)}
}

func (d *Dataset) Len() int {
	return len(d.results)
}

// Results returns a copy of the cleaned records in source order.
func (d *Dataset) Results() []models.Result {
	return append([]models.Result(nil), d.results...)
}

// Between keeps records with from <= year <= to. Zero bounds are open.
func (d *Dataset) Between(from, to int) *Dataset {
	out := make([]models.Result, 0, len(d.results))
	for _, r := range d.results {
		if from != 0 && r.Year < from {
			continue
		}
		if to != 0 && r.Year > to {
			continue
		}
		out = append(out, r)
	}
	return &Dataset{results: out}
}

// YearRange returns the first and last year present, or zeros when empty.
func (d *Dataset) YearRange() (int, int) {
	if len(d.results) == 0 {
		return 0, 0
	}
	lo, hi := d.results[0].Year, d.results[0].Year
	for _, r := range d.results[1:] {
		if r.Year < lo {
			lo = r.Year
		}
		if r.Year > hi {
			hi = r.Year
		}
	}
	return lo, hi
}

// YearlyTimes is the mean and best finishing time per year.
func (d *Dataset) YearlyTimes() []models.YearlyTime {
	byYear := make(map[int][]float64)
	for _, r := range d.results {
		if !r.HasTime {
			continue
		}
		byYear[r.Year] = append(byYear[r.Year], r.TimeHours)
	}

	rows := make([]models.YearlyTime, 0, len(byYear))
	for year, hours := range byYear {
		best := hours[0]
		for _, h := range hours[1:] {
			if h < best {
				best = h
			}
		}
		rows = append(rows, models.YearlyTime{
			Year:      year,
			Average:   stat.Mean(hours, nil),
			Finishing: best,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// Population counts participants per country and gender and keeps groups
// larger than threshold.
func (d *Dataset) Population(threshold int) []models.CountryGenderCount {
	type key struct{ country, gender string }
	counts := make(map[key]int)
	for _, r := range d.results {
		if r.Country == "" || r.Gender == "" {
			continue
		}
		counts[key{r.Country, r.Gender}]++
	}

	rows := make([]models.CountryGenderCount, 0)
	for k, n := range counts {
		if n <= threshold {
			continue
		}
		rows = append(rows, models.CountryGenderCount{Country: k.country, Gender: k.gender, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return rows[i].Gender < rows[j].Gender
	})
	return rows
}

// AgeTimes is the mean finishing time per age in years.
func (d *Dataset) AgeTimes() []models.AgeTime {
	byAge := make(map[int][]float64)
	for _, r := range d.results {
		if !r.HasTime || !r.HasAge {
			continue
		}
		byAge[r.Age] = append(byAge[r.Age], r.TimeHours)
	}

	rows := make([]models.AgeTime, 0, len(byAge))
	for age, hours := range byAge {
		rows = append(rows, models.AgeTime{Age: age, TimeHours: stat.Mean(hours, nil)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Age < rows[j].Age })
	return rows
}

// GenderYearTimes is the mean finishing time per gender and year.
// Unknown and missing genders are left out.
func (d *Dataset) GenderYearTimes() []models.GenderYearTime {
	type key struct {
		gender string
		year   int
	}
	groups := make(map[key][]float64)
	for _, r := range d.results {
		if !r.HasTime || r.Gender == "" || r.Gender == GenderUnknown {
			continue
		}
		k := key{r.Gender, r.Year}
		groups[k] = append(groups[k], r.TimeHours)
	}

	rows := make([]models.GenderYearTime, 0, len(groups))
	for k, hours := range groups {
		rows = append(rows, models.GenderYearTime{Gender: k.gender, Year: k.year, TimeHours: stat.Mean(hours, nil)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gender != rows[j].Gender {
			return rows[i].Gender < rows[j].Gender
		}
		return rows[i].Year < rows[j].Year
	})
	return rows
}

// TopFinishers takes the n fastest results, optionally of one gender, and
// counts them per country and gender. gender "" or "all" disables the filter.
func (d *Dataset) TopFinishers(gender string, n int) []models.CountryGenderCount {
	want := NormalizeGender(gender)
	if want == GenderAll {
		want = ""
	}

	fastest := d.ranked(func(r models.Result) bool {
		if r.Country == "" || r.Gender == "" {
			return false
		}
		return want == "" || r.Gender == want
	})
	if n >= 0 && len(fastest) > n {
		fastest = fastest[:n]
	}

	type key struct{ country, gender string }
	index := make(map[key]int)
	rows := make([]models.CountryGenderCount, 0)
	for _, r := range fastest {
		k := key{r.Country, r.Gender}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, models.CountryGenderCount{Country: r.Country, Gender: r.Gender})
		}
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// GenderGap compares mean male and female times. ok is false when either
// gender has no timed result.
func (d *Dataset) GenderGap() (gap models.GenderGap, ok bool) {
	var male, female []float64
	for _, r := range d.results {
		if !r.HasTime {
			continue
		}
		switch r.Gender {
		case GenderMale:
			male = append(male, r.TimeHours)
		case GenderFemale:
			female = append(female, r.TimeHours)
		}
	}
	if len(male) == 0 || len(female) == 0 {
		return models.GenderGap{}, false
	}
	gap.Male = stat.Mean(male, nil)
	gap.Female = stat.Mean(female, nil)
	gap.Difference = gap.Female - gap.Male
	return gap, true
}

// Leaderboard returns one page of timed results with a country, fastest
// first, and the total number of such results. Pages start at 1.
func (d *Dataset) Leaderboard(page, size int) ([]models.Result, int) {
	ranked := d.ranked(func(r models.Result) bool { return r.Country != "" })
	total := len(ranked)
	if size <= 0 || page <= 0 {
		return []models.Result{}, total
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	// compare page numbers before multiplying so huge pages cannot overflow
	if page > pages {
		return []models.Result{}, total
	}
	start := (page - 1) * size
	end := min(start+size, total)
	return append([]models.Result(nil), ranked[start:end]...), total
}

// ranked returns timed results accepted by keep, stable-sorted by time.
func (d *Dataset) ranked(keep func(models.Result) bool) []models.Result {
	out := make([]models.Result, 0, len(d.results))
	for _, r := range d.results {
		if r.HasTime && keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeHours < out[j].TimeHours })
	return out
}
