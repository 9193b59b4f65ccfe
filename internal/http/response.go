package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/apperr"
	"github.com/tuanvumaihuynh/crm/internal/http/apierr"
)

// maxBodyBytes bounds request bodies, bulk imports included.
const maxBodyBytes = 4 << 20 // 4 MB

type responder struct {
	logger *slog.Logger
}

func (res *responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		res.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

// handleRequestError answers requests that could not be decoded or bound.
func (res *responder) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	err = apperr.ValidationErr.WithMsg(err.Error()).WrapParent(err)
	body := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	res.logger.WarnContext(r.Context(), "http request error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(body); err != nil {
		res.logger.WarnContext(r.Context(), "error encoding error request",
			slog.Any("error", err))
	}
}

func (res *responder) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	body := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)

	logLevel := slog.LevelInfo
	if body.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if body.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	res.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(body); err != nil {
		res.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
