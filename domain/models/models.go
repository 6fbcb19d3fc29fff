package models

// RawResult одна строка входного файла до очистки
type RawResult struct {
	Year    string
	Country string
	Gender  string
	Age     string
	Time    string
	Line    int // номер строки в источнике, 0 для SQL
}

// Result очищенная запись участника
type Result struct {
	Year      int     `json:"year"`
	Country   string  `json:"country"`
	Gender    string  `json:"gender"`
	Age       int     `json:"age,omitempty"`
	HasAge    bool    `json:"has_age"`
	Time      string  `json:"time"`
	TimeHours float64 `json:"time_hours"`
	HasTime   bool    `json:"has_time"`
}

type ExclusionReason string

const (
	ReasonTimeSentinel   ExclusionReason = "time_sentinel"
	ReasonTimeUnparsed   ExclusionReason = "time_unparsed"
	ReasonAgeCategory    ExclusionReason = "age_category"
	ReasonAgeUnparsed    ExclusionReason = "age_unparsed"
	ReasonAgeMissing     ExclusionReason = "age_missing"
	ReasonYearInvalid    ExclusionReason = "year_invalid"
	ReasonCountryMissing ExclusionReason = "country_missing"
	ReasonGenderMissing  ExclusionReason = "gender_missing"
)

type ExclusionCount struct {
	Reason ExclusionReason `json:"reason"`
	Count  int             `json:"count"`
}

type YearlyTime struct {
	Year      int     `json:"year"`
	Average   float64 `json:"average_hours"`
	Finishing float64 `json:"finishing_hours"`
}

type CountryGenderCount struct {
	Country string `json:"country"`
	Gender  string `json:"gender"`
	Count   int    `json:"count"`
}

type AgeTime struct {
	Age       int     `json:"age"`
	TimeHours float64 `json:"time_hours"`
}

type GenderYearTime struct {
	Gender    string  `json:"gender"`
	Year      int     `json:"year"`
	TimeHours float64 `json:"time_hours"`
}

type GenderGap struct {
	Male       float64 `json:"male_hours"`
	Female     float64 `json:"female_hours"`
	Difference float64 `json:"difference_hours"`
}

// TimeSummary распределение времени финиша в часах
type TimeSummary struct {
	Count     int                 `json:"count"`
	Mean      float64             `json:"mean_hours"`
	Median    float64             `json:"median_hours"`
	Min       float64             `json:"min_hours"`
	Max       float64             `json:"max_hours"`
	Quantiles map[float64]float64 `json:"-"`
	IQR       float64             `json:"iqr_hours"`
	Outliers  int                 `json:"outliers"`
}
