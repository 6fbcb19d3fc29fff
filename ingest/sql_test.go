package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadTableRejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		table string
		valid bool
	}{
		{name: "plain", table: "results", valid: true},
		{name: "schema", table: "default.berlin_marathon", valid: true},
		{name: "injection", table: "results; DROP TABLE x", valid: false},
		{name: "quoted", table: "`results`", valid: false},
		{name: "leading digit", table: "1results", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tableNamePattern.MatchString(tt.table))
			if !tt.valid {
				_, err := ReadTable(context.Background(), nil, tt.table)
				assert.ErrorContains(t, err, "invalid table name")
			}
		})
	}
}

func TestSelectColumnsCoalesceNulls(t *testing.T) {
	for _, col := range []string{"year", "country", "gender", "age", "time"} {
		t.Run(col, func(t *testing.T) {
			assert.Contains(t, selectColumns, fmt.Sprintf("COALESCE(CAST(`%s` AS CHAR), '') AS `%s`", col, col))
		})
	}
}
