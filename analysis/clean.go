// Package analysis cleans raw marathon results and computes the aggregate views.
package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pivolan/marathon_analyzer/domain/models"
)

// Report counts what cleaning dropped or marked unusable, per reason.
type Report struct {
	Loaded   int                            `json:"loaded"`
	Kept     int                            `json:"kept"`
	Excluded map[models.ExclusionReason]int `json:"excluded"`
}

func newReport(loaded int) Report {
	return Report{Loaded: loaded, Excluded: make(map[models.ExclusionReason]int)}
}

func (r Report) add(reason models.ExclusionReason, n int) {
	if n > 0 {
		r.Excluded[reason] += n
	}
}

// Counts returns the exclusions ordered by reason.
func (r Report) Counts() []models.ExclusionCount {
	counts := make([]models.ExclusionCount, 0, len(r.Excluded))
	for reason, n := range r.Excluded {
		counts = append(counts, models.ExclusionCount{Reason: reason, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Reason < counts[j].Reason })
	return counts
}

// Dropped is the number of loaded records that did not make it into the dataset.
func (r Report) Dropped() int {
	return r.Loaded - r.Kept
}

// Clean runs the cleaning stages over raw and returns the read-only dataset.
// Records with a sentinel time or an unparsable year are dropped; bad ages and
// times only mark the record as unusable for the views that need them.
func Clean(raw []models.RawResult) (*Dataset, Report) {
	report := newReport(len(raw))

	kept, n := dropTimeSentinels(raw)
	report.add(models.ReasonTimeSentinel, n)

	staged, n := deriveYear(kept)
	report.add(models.ReasonYearInvalid, n)

	staged, n = deriveHours(staged)
	report.add(models.ReasonTimeUnparsed, n)

	staged, ageCounts := deriveAge(staged)
	for reason, c := range ageCounts {
		report.add(reason, c)
	}

	results := make([]models.Result, len(staged))
	for i, s := range staged {
		results[i] = s.Result
		if s.Country == "" {
			report.add(models.ReasonCountryMissing, 1)
		}
		if s.Gender == "" {
			report.add(models.ReasonGenderMissing, 1)
		}
	}

	report.Kept = len(results)
	return &Dataset{results: results}, report
}

// record is a result between cleaning stages; rawAge is parsed last.
type record struct {
	models.Result
	rawAge string
}

func dropTimeSentinels(raw []models.RawResult) ([]models.RawResult, int) {
	kept := make([]models.RawResult, 0, len(raw))
	for _, r := range raw {
		if IsTimeSentinel(r.Time) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(raw) - len(kept)
}

func deriveYear(raw []models.RawResult) ([]record, int) {
	out := make([]record, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		year, err := strconv.Atoi(strings.TrimSpace(r.Year))
		if err != nil {
			dropped++
			continue
		}
		out = append(out, record{
			Result: models.Result{
				Year:    year,
				Country: NormalizeCountry(r.Country),
				Gender:  NormalizeGender(r.Gender),
				Time:    strings.TrimSpace(r.Time),
			},
			rawAge: strings.TrimSpace(r.Age),
		})
	}
	return out, dropped
}

func deriveHours(in []record) ([]record, int) {
	out := make([]record, len(in))
	failed := 0
	for i, r := range in {
		hours, err := ParseHours(r.Time)
		if err == nil {
			r.TimeHours, r.HasTime = hours, true
		} else {
			r.TimeHours, r.HasTime = 0, false
			failed++
		}
		out[i] = r
	}
	return out, failed
}

func deriveAge(in []record) ([]record, map[models.ExclusionReason]int) {
	counts := make(map[models.ExclusionReason]int)
	out := make([]record, len(in))
	for i, r := range in {
		switch {
		case r.rawAge == "":
			counts[models.ReasonAgeMissing]++
		case IsAgeSentinel(r.rawAge):
			counts[models.ReasonAgeCategory]++
		default:
			age, err := ParseAge(r.rawAge)
			if err != nil {
				counts[models.ReasonAgeUnparsed]++
				break
			}
			r.Age, r.HasAge = age, true
		}
		out[i] = r
	}
	return out, counts
}
