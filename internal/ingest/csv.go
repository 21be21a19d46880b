package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(data []byte) (Upload, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return Upload{}, fmt.Errorf("parsing CSV: %w", err)
	}

	rows, err := rowsFromRecords(records)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Kind: KindRows, Rows: rows}, nil
}
