// Package ingest reads raw marathon results from delimited files or SQL tables.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyInput    = errors.New("empty input")
	ErrEncoding      = errors.New("unsupported encoding")
)

const sniffSize = 4096

type Options struct {
	// Delimiter 0 means autodetect from the first line.
	Delimiter rune
	// Encoding is a WHATWG label, e.g. "utf-8", "windows-1252".
	Encoding string
}

// Load opens path (plain or archived) and reads all result rows.
func Load(ctx context.Context, path string, opts Options) ([]models.RawResult, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	rows, err := Read(ctx, rc, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read decodes r and maps its columns onto year, country, gender, age, time.
func Read(ctx context.Context, r io.Reader, opts Options) ([]models.RawResult, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	head, decoded, err := sniff(decoded, sniffSize)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, ErrEmptyInput
	}

	reader := csv.NewReader(decoded)
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = detectDelimiter(head)
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	analysis := AnalyzeHeaders(first)
	idx, err := columnIndex(analysis.Headers)
	if err != nil {
		return nil, err
	}

	var rows []models.RawResult
	if analysis.FirstRowIsData {
		rows = append(rows, toRaw(first, idx, 1))
	}
	for {
		if len(rows)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, toRaw(record, idx, line))
	}
	return rows, nil
}

func toRaw(record []string, idx map[string]int, line int) models.RawResult {
	field := func(name string) string {
		i := idx[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return models.RawResult{
		Year:    field("year"),
		Country: field("country"),
		Gender:  field("gender"),
		Age:     field("age"),
		Time:    field("time"),
		Line:    line,
	}
}

func decode(r io.Reader, label string) (io.Reader, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEncoding, label)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// detectDelimiter picks the most frequent of , ; and tab on the first line.
func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
