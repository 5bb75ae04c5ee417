package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/source"
	"go.uber.org/zap"
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleHistoricalData handles POST /api/historical-data: import an
// uploaded file and retrain.
func (s *Server) handleHistoricalData(w http.ResponseWriter, r *http.Request) {
	records, name, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	imp, tr, err := s.svc.ImportAndTrain(records, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.emit(Event{Type: EventTrained, Accuracy: tr.Accuracy})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "historical data loaded",
		"processed": imp.Processed,
		"saved":     imp.Saved,
		"trained":   true,
		"accuracy":  tr.Accuracy,
	})
}

// handleMonthlyUpdate handles POST /api/monthly-update: import, retrain and
// forecast from the latest period in the upload.
func (s *Server) handleMonthlyUpdate(w http.ResponseWriter, r *http.Request) {
	records, name, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	imp, tr, f, err := s.svc.MonthlyUpdate(records, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.emit(Event{Type: EventTrained, Accuracy: tr.Accuracy})
	s.publishForecast(f)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "monthly update applied",
		"processed":   imp.Processed,
		"saved":       imp.Saved,
		"accuracy":    tr.Accuracy,
		"predictions": f,
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, _ *http.Request) {
	f, err := s.svc.LatestForecast()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.publishForecast(f)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Health())
}

func (s *Server) handleModelStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.svc.Stats()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	hist, err := s.svc.History(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// readUpload parses the multipart "file" field as CSV or OFX.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]model.Record, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("%w: reading upload: %v", source.ErrInvalidFile, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file field", source.ErrInvalidFile)
	}
	defer func() { _ = file.Close() }()

	format, ok := source.FormatOf(header.Filename)
	if !ok {
		return nil, "", fmt.Errorf("%w: file must be .csv, .ofx or .qfx", source.ErrInvalidFile)
	}

	var records []model.Record
	switch format {
	case source.FormatCSV:
		records, _, err = source.ParseCSV(file)
	case source.FormatOFX:
		records, err = source.ParseOFX(file)
	}
	if err != nil {
		return nil, "", err
	}
	return records, header.Filename, nil
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, forecast.ErrNotTrained):
		return http.StatusConflict
	case errors.Is(err, forecast.ErrValidation),
		errors.Is(err, model.ErrInvalidRecord),
		errors.Is(err, source.ErrInvalidFile),
		errors.Is(err, service.ErrNoData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSONError(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
