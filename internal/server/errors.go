package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MalithGihan/mindmap-service/internal/fusion"
	"github.com/MalithGihan/mindmap-service/internal/ingest"
	"github.com/MalithGihan/mindmap-service/internal/store"
)

var (
	errNoDocuments  = errors.New("No documents uploaded")
	errViewNotFound = errors.New("View not found")
)

// AppError carries the HTTP status and client-facing message for a failure.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func badRequest(msg string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg, Err: err}
}

func uploadTooLarge(limit int64, err error) *AppError {
	size := fmt.Sprintf("%d bytes", limit)
	if limit >= 1<<20 && limit%(1<<20) == 0 {
		size = fmt.Sprintf("%d MB", limit>>20)
	}
	return &AppError{Code: http.StatusRequestEntityTooLarge, Message: "Upload exceeds the size limit of " + size, Err: err}
}

// MapError translates package errors to an AppError. Ingest and input errors
// surface their own message; synthesis failures are prefixed.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrExtractionFailed),
		errors.Is(err, ingest.ErrNoContentExtracted),
		errors.Is(err, ingest.ErrEmptyCorpus),
		errors.Is(err, fusion.ErrInvalidInput):
		return &AppError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, errNoDocuments):
		return &AppError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return &AppError{Code: http.StatusNotFound, Message: errViewNotFound.Error()}
	case errors.Is(err, fusion.ErrGenerationTimeout):
		return &AppError{Code: http.StatusGatewayTimeout, Message: "Failed to generate mind map: " + err.Error()}
	case errors.Is(err, fusion.ErrGenerationFailed),
		errors.Is(err, fusion.ErrMalformedResponse),
		errors.Is(err, fusion.ErrSchemaViolation),
		errors.Is(err, fusion.ErrDanglingEdge):
		return &AppError{Code: http.StatusBadGateway, Message: "Failed to generate mind map: " + err.Error()}
	}
	return &AppError{Code: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := MapError(err)
	if appErr.Code >= http.StatusInternalServerError {
		s.logger.Error("request failed", requestFields(r, appErr.Code, err)...)
	} else {
		s.logger.Info("request rejected", requestFields(r, appErr.Code, err)...)
	}
	writeJSON(w, appErr.Code, map[string]string{"detail": appErr.Message})
}
