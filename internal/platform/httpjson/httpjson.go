// Package httpjson holds the JSON response helpers shared by the HTTP
// handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"dental-dashboard/internal/platform/apperr"
)

// DefaultMaxBody caps request bodies read by Decode.
const DefaultMaxBody = 1 << 20

// ErrorBody is the payload written for every failed request.
type ErrorBody struct {
	Error    string            `json:"error"`
	Code     apperr.Code       `json:"code"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status via its domain code. Internal errors are
// logged and their message hidden from the client.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := apperr.CodeOf(err)
	body := ErrorBody{Error: err.Error(), Code: code}

	var e *apperr.Error
	if apperr.As(err, &e) {
		body.Metadata = e.Metadata
	}
	switch {
	case code == apperr.CodeInternal:
		logger.Error("request failed", LogFields(err)...)
		body.Error = "internal error"
	case e != nil && e.Cause != nil:
		logger.Warn("request failed", LogFields(err)...)
	}
	Write(w, code.HTTPStatus(), body)
}

// LogFields describes err for the logs, including the cause of a domain
// error that Error() leaves out.
func LogFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var e *apperr.Error
	if apperr.As(err, &e) && e.Cause != nil {
		fields = append(fields, zap.NamedError("cause", e.Cause))
	}
	return fields
}

// Decode reads a JSON body of at most DefaultMaxBody bytes into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return DecodeLimit(w, r, v, DefaultMaxBody)
}

// DecodeLimit reads a JSON body of at most limit bytes into v. Oversized
// bodies are REQUEST_TOO_LARGE, malformed ones INVALID_FIELD.
func DecodeLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.WithMetadata(apperr.CodeRequestTooLarge, "request body too large",
				map[string]string{"limit": strconv.FormatInt(limit, 10)})
		}
		return apperr.Wrap(apperr.CodeInvalidField, "invalid request body", err)
	}
	return nil
}
