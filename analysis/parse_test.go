package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHours(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "2:03:59", want: 7439.0 / 3600},
		{input: "02:03:59", want: 7439.0 / 3600},
		{input: " 3:00:00 ", want: 3},
		{input: "0:00:01", want: 1.0 / 3600},
		{input: "0:00:00", wantErr: true},
		{input: "2:3:59", wantErr: true},
		{input: "2:60:00", wantErr: true},
		{input: "2:00:60", wantErr: true},
		{input: "123:00:00", wantErr: true},
		{input: "2:03", wantErr: true},
		{input: "-1:00:00", wantErr: true},
		{input: "DSQ", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHours(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTimeFormat)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	h, _ := ParseHours("2:03:59")
	assert.InDelta(t, 2.0664, h, 1e-4)
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "35", want: 35},
		{input: " 42 ", want: 42},
		{input: "35.0", want: 35},
		{input: "35.5", wantErr: true},
		{input: "0", wantErr: true},
		{input: "150", wantErr: true},
		{input: "M", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAge(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAgeFormat)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentinels(t *testing.T) {
	for _, s := range []string{"–", "DSQ", "no time", " DSQ "} {
		assert.True(t, IsTimeSentinel(s), s)
	}
	assert.False(t, IsTimeSentinel("-"))
	assert.False(t, IsTimeSentinel("2:00:00"))

	assert.Len(t, AgeSentinels, 23)
	for _, s := range AgeSentinels {
		assert.True(t, IsAgeSentinel(s), s)
	}
	assert.False(t, IsAgeSentinel("35"))
	assert.False(t, IsAgeSentinel("m"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", NormalizeCountry("–"))
	assert.Equal(t, "", NormalizeCountry(" - "))
	assert.Equal(t, "GER", NormalizeCountry(" GER"))

	tests := map[string]string{
		"male":   GenderMale,
		"Male":   GenderMale,
		"M":      GenderMale,
		"FEMALE": GenderFemale,
		"w":      GenderFemale,
		"x":      GenderUnknown,
		"X":      GenderUnknown,
		"–":      "",
		"":       "",
		"divers": "divers",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeGender(in), in)
	}
}
