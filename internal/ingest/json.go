package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/esglens/esglens/internal/esg"
)

// decodeJSON accepts a report object or an array of row objects.
func decodeJSON(data []byte) (Upload, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeJSONRows(trimmed)
	}

	report, err := esg.DecodeReport(trimmed)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Kind: KindReport, Report: report}, nil
}

func decodeJSONRows(data []byte) (Upload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []esg.RawRow
	if err := dec.Decode(&rows); err != nil {
		return Upload{}, fmt.Errorf("%w: %w", esg.ErrInvalidReportJSON, err)
	}

	out := rows[:0]
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return Upload{}, ErrEmptySheet
	}
	return Upload{Kind: KindRows, Rows: out}, nil
}
