// Package ingest turns uploaded files into report rows or prebuilt reports.
//
// Spreadsheets (.xlsx, .xls, .csv) yield header-keyed rows for
// esg.BuildFromRows. JSON yields either a finished report (an object with
// summary and metrics) or an array of row objects.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/logging"
)

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors.
const (
	ErrUnsupportedFileType constError = "unsupported file type"
	ErrEmptySheet          constError = "sheet is empty or could not be parsed"
	ErrUnreadableWorkbook  constError = "workbook could not be read"
)

// Kind says what an upload contained.
type Kind string

// Upload kinds.
const (
	KindRows   Kind = "rows"
	KindReport Kind = "report"
)

// Upload is a decoded file. Exactly one of Rows and Report is meaningful,
// selected by Kind.
type Upload struct {
	Kind   Kind
	Format string
	Rows   []esg.RawRow
	Report esg.Report
}

// Build returns the report the upload describes, aggregating rows when
// needed.
func (u Upload) Build(p esg.Placeholders) esg.Report {
	if u.Kind == KindReport {
		return u.Report
	}
	return esg.BuildWithPlaceholders(u.Rows, p)
}

// SupportedExtensions lists accepted file extensions.
func SupportedExtensions() []string {
	return []string{".json", ".csv", ".xlsx", ".xls"}
}

// Decode parses data according to the extension of filename.
func Decode(ctx context.Context, filename string, data []byte) (Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "ingest").
		Str("operation", "decode").
		Str("file_name", filename).
		Str("format", ext).
		Int("data_size_bytes", len(data)).
		Msg("decoding upload")

	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}

	var (
		up  Upload
		err error
	)
	switch ext {
	case ".json":
		up, err = decodeJSON(data)
	case ".csv":
		up, err = decodeCSV(data)
	case ".xlsx", ".xls":
		up, err = decodeWorkbook(data)
	default:
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		log.Warn().
			Str("component", "ingest").
			Str("operation", "decode").
			Str("file_name", filename).
			Err(err).
			Msg("upload could not be decoded")
		return Upload{}, err
	}

	up.Format = strings.TrimPrefix(ext, ".")
	log.Debug().
		Str("component", "ingest").
		Str("operation", "decode").
		Str("kind", string(up.Kind)).
		Int("row_count", len(up.Rows)).
		Msg("upload decoded")
	return up, nil
}

// LoadFile reads and decodes a file from disk.
func LoadFile(ctx context.Context, path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(ctx, filepath.Base(path), data)
}

// IsClientError reports whether err was caused by the uploaded content
// rather than by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, esg.ErrMissingReportFields)
}
