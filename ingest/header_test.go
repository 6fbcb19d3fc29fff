package ingest

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeHeaders(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		wantHeaders []string
		wantIsData  bool
	}{
		{
			name:        "Canonical headers",
			input:       []string{"year", "country", "gender", "age", "time"},
			wantHeaders: []string{"year", "country", "gender", "age", "time"},
			wantIsData:  false,
		},
		{
			name:        "Headers with case, spaces and BOM",
			input:       []string{"\ufeffYear", " Country ", "GENDER", "Age", "Time"},
			wantHeaders: []string{"year", "country", "gender", "age", "time"},
			wantIsData:  false,
		},
		{
			name:        "Data row",
			input:       []string{"2023", "KEN", "male", "38", "2:01:09"},
			wantHeaders: []string{"year", "country", "gender", "age", "time"},
			wantIsData:  true,
		},
		{
			name:        "Data row with category age",
			input:       []string{"2000", "GER", "male", "M", "3:00:00"},
			wantHeaders: []string{"year", "country", "gender", "age", "time"},
			wantIsData:  true,
		},
		{
			name:        "Duplicate headers",
			input:       []string{"Name", "Name", "Name", "Age"},
			wantHeaders: []string{"name", "name_1", "name_2", "age"},
			wantIsData:  false,
		},
		{
			name:        "Transliterated headers",
			input:       []string{"Jahr", "Land", "Geschlecht", "Alter", "Zeit (Netto)", "Läufer"},
			wantHeaders: []string{"jahr", "land", "geschlecht", "alter", "zeit_netto", "laufer"},
			wantIsData:  false,
		},
		{
			name:        "Extra data columns",
			input:       []string{"1999", "–", "female", "30", "3:10:00", "42"},
			wantHeaders: []string{"year", "country", "gender", "age", "time", "column_6"},
			wantIsData:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeHeaders(tt.input)
			if got == nil {
				t.Fatal("AnalyzeHeaders returned nil")
			}
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %v, want %v", got.Headers, tt.wantHeaders)
			}
			if got.FirstRowIsData != tt.wantIsData {
				t.Errorf("FirstRowIsData = %v, want %v", got.FirstRowIsData, tt.wantIsData)
			}
			assert.Equal(t, tt.input, got.FirstDataRow)
		})
	}
}

func TestAnalyzeHeadersEmpty(t *testing.T) {
	assert.Nil(t, AnalyzeHeaders(nil))
}

func TestColumnIndex(t *testing.T) {
	idx, err := columnIndex([]string{"time", "age", "gender", "country", "year", "bib"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"time": 0, "age": 1, "gender": 2, "country": 3, "year": 4, "bib": 5}, idx)

	_, err = columnIndex([]string{"year", "country", "gender"})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "age, time")
}
