package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/postforge/postforge/pkg/ai"
	"github.com/postforge/postforge/pkg/social"
	"github.com/postforge/postforge/pkg/workflow/executors"
)

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Bad input and missing
// configuration are the caller's fault; upstream provider failures surface
// as a bad gateway.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *executors.NotFoundError
		validation  *executors.ValidationError
		config      *executors.ConfigError
		unsupported *executors.UnsupportedOperationError
		unsupOp     *ai.UnsupportedError
		unsupPlat   *social.UnsupportedPlatformError
		missingCred *social.MissingCredentialsError
		authErr     *ai.AuthError
		rateErr     *ai.RateLimitError
		filterErr   *ai.ContentFilterError
		serverErr   *ai.ServerError
		provErr     *ai.ProviderError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadJSON):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &config),
		errors.As(err, &unsupported),
		errors.As(err, &unsupOp),
		errors.As(err, &unsupPlat),
		errors.As(err, &missingCred):
		status = http.StatusBadRequest
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &rateErr):
		status = http.StatusTooManyRequests
	case errors.As(err, &filterErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &serverErr), errors.As(err, &provErr):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
