package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/config"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveOldFiles(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "a", "old.csv")
	newFile := filepath.Join(dir, "b", "new.csv")
	for _, f := range []string{oldFile, newFile} {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), os.ModePerm))
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	}
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	require.NoError(t, removeOldFiles(dir, time.Now().Add(-2*time.Hour)))

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, newFile)
}

func TestIngestOptions(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		want      rune
	}{
		{name: "autodetect", delimiter: "", want: 0},
		{name: "semicolon", delimiter: ";", want: ';'},
		{name: "tab", delimiter: "\t", want: '\t'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Delimiter = tt.delimiter
			opts := ingestOptions(cfg)
			assert.Equal(t, tt.want, opts.Delimiter)
			assert.Equal(t, "utf-8", opts.Encoding)
		})
	}
}

func TestPrintViewsExportsWholeRanking(t *testing.T) {
	var raw []models.RawResult
	for i := 0; i < 25; i++ {
		raw = append(raw, models.RawResult{Year: "2010", Country: "GER", Gender: "male", Age: "30", Time: "3:00:00"})
	}
	ds := analysis.NewSnapshot(raw, "test").Dataset
	p := analysis.DefaultParams()

	frames, err := printViews(ds, p)
	require.NoError(t, err)
	require.Len(t, frames, len(analysis.Views))

	last := frames[len(frames)-1]
	assert.Equal(t, analysis.ViewResults, last.Name)
	assert.Equal(t, 25, last.Frame.Nrow())
}
