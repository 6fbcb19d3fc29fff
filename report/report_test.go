package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTable(t *testing.T) {
	df := analysis.YearlyFrame([]models.YearlyTime{
		{Year: 2000, Average: 2.5, Finishing: 2},
	})
	assert.Equal(t, `+------+---------------+-----------------+
| YEAR | AVERAGE TIMES | FINISHING TIMES |
+------+---------------+-----------------+
| 2000 | 2.500         | 2.000           |
+------+---------------+-----------------+`, Table(df))
}

func TestMarkdown(t *testing.T) {
	df := analysis.CountsFrame([]models.CountryGenderCount{
		{Country: "KEN", Gender: "male", Count: 12},
	})
	out := strings.ToLower(Markdown(df))
	assert.Contains(t, out, "| country | gender | count |")
	assert.Contains(t, out, "| ken | male | 12 |")
}

func TestTableMissingAge(t *testing.T) {
	df := analysis.ResultsFrame([]models.Result{
		{Year: 2000, Country: "GER", Gender: "male", Time: "2:00:00", TimeHours: 2, HasTime: true},
	})
	out := Table(df)
	assert.Contains(t, out, "| 2000 | GER     | male   |     | 2:00:00 |")
}

func TestExclusionTable(t *testing.T) {
	out := ExclusionTable(10, 7, []models.ExclusionCount{
		{Reason: models.ReasonTimeSentinel, Count: 3},
	})
	assert.Contains(t, out, "time_sentinel")
	assert.Contains(t, out, "KEPT 7 OF")
}

func TestWriteCSV(t *testing.T) {
	df := analysis.CountsFrame([]models.CountryGenderCount{
		{Country: "KEN", Gender: "male", Count: 12},
		{Country: "ETH", Gender: "female", Count: 3},
	})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, df))
	assert.Equal(t, "country,gender,count\nKEN,male,12\nETH,female,3\n", buf.String())
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	frames := []NamedFrame{
		{Name: analysis.ViewYearly, Frame: analysis.YearlyFrame([]models.YearlyTime{{Year: 2000, Average: 2.5, Finishing: 2}})},
		{Name: analysis.ViewTop, Frame: analysis.CountsFrame([]models.CountryGenderCount{{Country: "KEN", Gender: "male", Count: 12}})},
	}

	paths, err := WriteCSVFiles(dir, frames)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "yearly.csv"), filepath.Join(dir, "top.csv")}, paths)

	xlsx := filepath.Join(dir, "views.xlsx")
	require.NoError(t, WriteXLSX(xlsx, frames))

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"yearly", "top"}, f.GetSheetList())

	header, err := f.GetCellValue("yearly", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Average Times", header)

	count, err := f.GetCellValue("top", "C2")
	require.NoError(t, err)
	assert.Equal(t, "12", count)

	assert.Error(t, WriteXLSX(xlsx, nil))
	assert.True(t, strings.HasSuffix(paths[0], ".csv"))
}
