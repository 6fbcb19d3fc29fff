package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// Columns порядок колонок файла, если заголовка нет
var Columns = []string{"year", "country", "gender", "age", "time"}

type HeaderAnalysis struct {
	Headers        []string // Итоговые заголовки
	FirstRowIsData bool     // Является ли первая строка данными
	FirstDataRow   []string // Первая строка файла как есть
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
		regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}$`),
	}
	durationPattern = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}$`)
	specialSymbols  = regexp.MustCompile("[^a-zA-Z0-9]+")
)

// AnalyzeHeaders анализирует первую строку CSV и определяет структуру заголовков
func AnalyzeHeaders(firstRow []string) *HeaderAnalysis {
	if len(firstRow) == 0 {
		return nil
	}

	result := &HeaderAnalysis{
		Headers:      make([]string, len(firstRow)),
		FirstDataRow: firstRow,
	}

	known, headerLikeCount, numeric := 0, 0, false
	for i, field := range firstRow {
		if isKnownColumn(cleanHeaderName(field, i)) {
			known++
		}
		if isLikelyHeader(field) {
			headerLikeCount++
		}
		if isNumericOrDuration(field) {
			numeric = true
		}
	}

	// Известные имена колонок или большинство полей похожи на заголовки
	isHeader := known >= 3 ||
		(!numeric && float64(headerLikeCount)/float64(len(firstRow)) >= 0.5)
	if isHeader {
		for i, header := range firstRow {
			result.Headers[i] = cleanHeaderName(header, i)
		}
	} else {
		result.FirstRowIsData = true
		for i := range firstRow {
			if i < len(Columns) {
				result.Headers[i] = Columns[i]
			} else {
				result.Headers[i] = generateColumnName(i)
			}
		}
	}

	result.Headers = ValidateHeaders(result.Headers)
	return result
}

// isLikelyHeader определяет, похож ли текст на заголовок
func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return false
	}
	if durationPattern.MatchString(text) {
		return false
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(text) {
			return false
		}
	}

	letters, total := 0, 0
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			continue
		case unicode.IsLetter(r):
			letters++
		}
		total++
	}
	if total == 0 {
		return false
	}
	// Если букв больше 30% от всех символов - вероятно это заголовок
	return letters > 0 && float64(letters)/float64(total) >= 0.3
}

func isKnownColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

func isNumericOrDuration(text string) bool {
	text = strings.TrimSpace(text)
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return true
	}
	return durationPattern.MatchString(text)
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders проверяет и исправляет дубликаты в заголовках
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	result := make([]string, len(headers))

	for i, header := range headers {
		candidate := header
		for counter := 1; seen[candidate]; counter++ {
			candidate = fmt.Sprintf("%s_%d", header, counter)
		}
		seen[candidate] = true
		result[i] = candidate
	}
	return result
}

func replaceSpecialSymbols(input string) string {
	processed := specialSymbols.ReplaceAllString(input, "_")
	return strings.Trim(processed, "_")
}

// cleanHeaderName транслитерирует и нормализует имя заголовка
func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return generateColumnName(index)
	}
	cleaned := replaceSpecialSymbols(unidecode.Unidecode(header))
	if cleaned == "" {
		return generateColumnName(index)
	}
	return strings.ToLower(cleaned)
}

// columnIndex maps the required columns onto header positions.
func columnIndex(headers []string) (map[string]int, error) {
	idx := make(map[string]int, len(Columns))
	for i, h := range headers {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (have %s)", ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(headers, ", "))
	}
	return idx, nil
}
