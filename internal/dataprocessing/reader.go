package dataprocessing

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads the first sheet of an .xlsx file. The first row is the header.
func ReadWorkbook(ctx context.Context, path string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows), nil
}

// ReadDelimited reads a delimited export using the encoding fallback chain.
func ReadDelimited(ctx context.Context, path string) (Table, string, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, "", fmt.Errorf("failed to read file: %w", err)
	}
	return DecodeCSV(data)
}
