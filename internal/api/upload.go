package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/ingest"
	"github.com/esglens/esglens/internal/insights"
	"github.com/esglens/esglens/internal/logging"
	"github.com/esglens/esglens/internal/metrics"
)

// Upload error messages shown to clients.
const (
	msgNoFile          = "No file uploaded"
	msgMissingFields   = "JSON must contain summary and metrics fields."
	msgEmptySheet      = "Excel sheet is empty or could not be parsed."
	msgUnsupportedType = "Unsupported file type. Please upload .json, .csv, .xlsx or .xls files."
	msgUploadFailed    = "Failed to process ESG upload."
	msgTooLarge        = "Uploaded file is too large."
)

const multipartMemory = 8 << 20

// handleUpload replaces the current dataset with an uploaded spreadsheet
// or report and generates fresh combined insights for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := insights.ContextWithUser(r.Context(), userParam(r))
	logger := logging.FromContext(ctx).With().Str("operation", "upload").Logger()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.metrics.ObserveUpload("", metrics.UploadRejected, 0)
			writeError(ctx, w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		s.metrics.ObserveUpload("", metrics.UploadRejected, 0)
		writeError(ctx, w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.metrics.ObserveUpload("", metrics.UploadRejected, 0)
		writeError(ctx, w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read uploaded file")
		s.metrics.ObserveUpload("", metrics.UploadFailed, 0)
		writeError(ctx, w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	up, err := ingest.Decode(ctx, header.Filename, data)
	if err != nil {
		status, msg := uploadError(err)
		result := metrics.UploadRejected
		if status >= http.StatusInternalServerError {
			result = metrics.UploadFailed
			logger.Error().Err(err).Str("file_name", header.Filename).Msg("upload processing error")
		}
		s.metrics.ObserveUpload(up.Format, result, 0)
		writeError(ctx, w, status, msg)
		return
	}

	report := up.Build(s.placeholders)
	items := s.insights.Generate(ctx, insights.CategoryAll, report).Items
	snap := s.data.Replace(report, items, "upload:"+header.Filename)

	s.metrics.ObserveUpload(up.Format, metrics.UploadAccepted, len(up.Rows))
	s.metrics.DatasetReplaced(snap.UpdatedAt)
	logger.Info().
		Str("file_name", header.Filename).
		Str("kind", string(up.Kind)).
		Int("row_count", len(up.Rows)).
		Int("insight_count", len(items)).
		Msg("dataset replaced from upload")

	writeJSON(ctx, w, http.StatusOK, dataResponse{MockData: report, Insights: items})
}

func uploadError(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		return http.StatusBadRequest, msgUnsupportedType
	case errors.Is(err, esg.ErrMissingReportFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, ingest.ErrEmptySheet):
		return http.StatusBadRequest, msgEmptySheet
	default:
		return http.StatusInternalServerError, msgUploadFailed
	}
}
