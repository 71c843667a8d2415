package utils

import (
	"context"
	"errors"
	"net/http"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteSuccess wraps data in the standard envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, domain.Response{Success: true, Data: data})
}

func WritePaginated(w http.ResponseWriter, data any, pagination domain.Pagination) {
	WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: data, Meta: pagination})
}

type apiError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

// WriteError maps a typed error to its HTTP status. Untyped errors are logged and reported as internal.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal && typed.Message() != "" {
		msg = typed.Message()
	}

	payload := errorEnvelope{Error: apiError{
		Code:    string(typed.Code()),
		Reason:  typed.Reason(),
		Message: msg,
	}}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	l := logger.FromContext(ctx)
	event := l.Warn()
	if meta.HTTPStatus >= http.StatusInternalServerError {
		event = l.Error()
	}
	event.Err(err).Str("error_code", string(typed.Code())).Str("reason", typed.Reason()).Msg("request failed")

	if meta.HTTPStatus == http.StatusConflict && meta.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, meta.HTTPStatus, payload)
}
