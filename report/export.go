package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// NamedFrame is one view ready for export.
type NamedFrame struct {
	Name  string
	Frame dataframe.DataFrame
}

// WriteCSV writes df with a header row.
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteCSVFiles writes every frame to dir/<name>.csv and returns the paths.
func WriteCSVFiles(dir string, frames []NamedFrame) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := filepath.Join(dir, f.Name+".csv")
		if err := writeFile(path, func(w io.Writer) error { return WriteCSV(w, f.Frame) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteXLSX writes one sheet per frame into a single workbook.
func WriteXLSX(path string, frames []NamedFrame) error {
	if len(frames) == 0 {
		return fmt.Errorf("write xlsx: no frames")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, nf := range frames {
		sheet := nf.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := fillSheet(f, sheet, nf.Frame); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	names := df.Names()
	for i, name := range names {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	for colIdx, name := range names {
		col := df.Col(name)
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			e := col.Elem(rowIdx)
			if e.IsNA() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, e.Val()); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
