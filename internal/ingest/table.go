package ingest

import (
	"strconv"

	"github.com/esglens/esglens/internal/esg"
)

const emptyHeader = "__EMPTY"

// headerNames turns a header row into unique keys the way spreadsheet
// libraries conventionally do: blank cells become "__EMPTY" and repeats get
// "_1", "_2"... suffixes. width pads the header for data wider than it.
func headerNames(header []string, width int) []string {
	if width < len(header) {
		width = len(header)
	}

	seen := make(map[string]int, width)
	names := make([]string, width)
	for i := range width {
		base := emptyHeader
		if i < len(header) && header[i] != "" {
			base = header[i]
		}

		name := base
		if counter := seen[base]; counter == 0 {
			seen[base] = 1
		} else {
			for {
				name = base + "_" + strconv.Itoa(counter)
				counter++
				if seen[name] == 0 {
					break
				}
			}
			seen[base] = counter
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// rowsFromRecords maps records after the header onto header keys. Empty
// cells and cells past the end of a short record become nil; records with
// no non-empty cell are skipped.
func rowsFromRecords(records [][]string) ([]esg.RawRow, error) {
	if len(records) < 2 {
		return nil, ErrEmptySheet
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	names := headerNames(records[0], width)

	rows := make([]esg.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(esg.RawRow, len(names))
		blank := true
		for i, name := range names {
			if i < len(rec) && rec[i] != "" {
				row[name] = rec[i]
				blank = false
			} else {
				row[name] = nil
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}
