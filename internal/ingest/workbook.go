package ingest

import (
	"bytes"
	"fmt"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// oleSignature opens every compound document, the container legacy BIFF
// (.xls) workbooks are stored in.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0}

// decodeWorkbook reads the first sheet of a workbook with unformatted cell
// values. The container is chosen by content, not extension: BIFF files
// renamed to .xlsx and OOXML files saved as .xls both decode.
func decodeWorkbook(data []byte) (Upload, error) {
	var (
		records [][]string
		err     error
	)
	if bytes.HasPrefix(data, oleSignature) {
		records, err = biffRecords(data)
	} else {
		records, err = ooxmlRecords(data)
	}
	if err != nil {
		return Upload{}, err
	}

	rows, err := rowsFromRecords(usedRange(records))
	if err != nil {
		return Upload{}, err
	}
	return Upload{Kind: KindRows, Rows: rows}, nil
}

func ooxmlRecords(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %w", ErrUnreadableWorkbook, sheets[0], err)
	}
	return records, nil
}

// biffRecords reads the first sheet of a BIFF5/BIFF8 workbook. The reader
// slices its input without bounds checks, so a truncated or corrupt file
// panics inside it; that is reported as an unreadable workbook.
func biffRecords(data []byte) (records [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%w: malformed xls: %v", ErrUnreadableWorkbook, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
	}
	if wb.GetNumberSheets() == 0 {
		return nil, ErrEmptySheet
	}
	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
	}

	for _, row := range sheet.GetRows() {
		cols := row.GetCols()
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = c.GetString()
		}
		records = append(records, rec)
	}
	return records, nil
}

// usedRange drops the blank rows above and the blank columns left of the
// populated block, so a table that starts at B3 reads the same as one
// starting at A1. Both readers report cells from A1.
func usedRange(records [][]string) [][]string {
	first := 0
	for first < len(records) && isBlankRecord(records[first]) {
		first++
	}
	records = records[first:]

	left := -1
	for _, rec := range records {
		for i, cell := range rec {
			if cell == "" {
				continue
			}
			if left < 0 || i < left {
				left = i
			}
			break
		}
	}
	if left <= 0 {
		return records
	}

	trimmed := make([][]string, len(records))
	for i, rec := range records {
		if len(rec) > left {
			trimmed[i] = rec[left:]
		}
	}
	return trimmed
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if cell != "" {
			return false
		}
	}
	return true
}
