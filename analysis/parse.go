package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pivolan/go_utils"
)

var (
	ErrTimeFormat = errors.New("time is not H:MM:SS")
	ErrAgeFormat  = errors.New("age is not a number")
)

// TimeSentinels mark results without a finishing time: did not finish,
// disqualified, no recorded time.
var TimeSentinels = []string{"–", "DSQ", "no time"}

// AgeSentinels are category codes found in the age column instead of years.
var AgeSentinels = []string{
	"H", "JU20", "L1", "L2", "L", "L3", "D1", "L4", "D3", "D2",
	"BM", "A", "B", "C", "DH", "DA", "DB", "DJ", "M0", "Ber", "M",
	"M<", "Jug",
}

var ageSentinelSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AgeSentinels))
	for _, s := range AgeSentinels {
		m[s] = struct{}{}
	}
	return m
}()

var absentMarkers = []string{"", "–", "-"}

const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "X"
	// GenderAll disables the gender filter of TopFinishers.
	GenderAll = "all"
)

func IsTimeSentinel(s string) bool {
	return go_utils.InArray(strings.TrimSpace(s), TimeSentinels)
}

func IsAgeSentinel(s string) bool {
	_, ok := ageSentinelSet[strings.TrimSpace(s)]
	return ok
}

// ParseHours converts "H:MM:SS" or "HH:MM:SS" into hours.
func ParseHours(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	if len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	var fields [3]int
	for i, p := range parts {
		if !isDigits(p) {
			return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
		}
		fields[i], _ = strconv.Atoi(p)
	}
	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	total := h*3600 + m*60 + sec
	if total == 0 {
		return 0, fmt.Errorf("%w: zero duration", ErrTimeFormat)
	}
	return float64(total) / 3600, nil
}

// ParseAge parses an age in whole years; "35.0" is accepted as 35.
func ParseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	age, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%w: %q", ErrAgeFormat, s)
		}
		age = int(f)
	}
	if age <= 0 || age >= 120 {
		return 0, fmt.Errorf("%w: %q out of range", ErrAgeFormat, s)
	}
	return age, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// NormalizeCountry returns "" for absent values.
func NormalizeCountry(s string) string {
	s = strings.TrimSpace(s)
	if go_utils.InArray(s, absentMarkers) {
		return ""
	}
	return s
}

// NormalizeGender maps the raw column onto male, female, X or "" (absent).
// Other values are kept lower-cased.
func NormalizeGender(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if go_utils.InArray(s, absentMarkers) {
		return ""
	}
	switch s {
	case "m", "male", "man", "men":
		return GenderMale
	case "f", "w", "female", "woman", "women":
		return GenderFemale
	case "x":
		return GenderUnknown
	}
	return s
}
