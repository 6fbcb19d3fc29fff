package ingest

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// selectColumns reads every column as text; NULL becomes "" so the row is
// counted by the cleaning report instead of failing the scan.
const selectColumns = "COALESCE(CAST(`year` AS CHAR), '') AS `year`, " +
	"COALESCE(CAST(`country` AS CHAR), '') AS `country`, " +
	"COALESCE(CAST(`gender` AS CHAR), '') AS `gender`, " +
	"COALESCE(CAST(`age` AS CHAR), '') AS `age`, " +
	"COALESCE(CAST(`time` AS CHAR), '') AS `time`"

type resultRow struct {
	Year    string `gorm:"column:year"`
	Country string `gorm:"column:country"`
	Gender  string `gorm:"column:gender"`
	Age     string `gorm:"column:age"`
	Time    string `gorm:"column:time"`
}

// OpenDB connects to a MySQL-protocol server (MySQL, ClickHouse mysql port).
func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	return db, nil
}

// ReadTable reads the result columns of table. Every value is read as text
// so the cleaning rules are the same as for CSV input.
func ReadTable(ctx context.Context, db *gorm.DB, table string) ([]models.RawResult, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var rows []resultRow
	tx := db.WithContext(ctx).
		Table(table).
		Select(selectColumns).
		Scan(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("select from %s: %w", table, tx.Error)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table %s has no rows", ErrEmptyInput, table)
	}

	result := make([]models.RawResult, len(rows))
	for i, r := range rows {
		result[i] = models.RawResult{
			Year:    r.Year,
			Country: r.Country,
			Gender:  r.Gender,
			Age:     r.Age,
			Time:    r.Time,
		}
	}
	return result, nil
}
