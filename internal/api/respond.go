package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/huangsam/pagepulse/schema"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string           `json:"error"`
	Kind   schema.ErrorKind `json:"kind,omitempty"`
	Detail string           `json:"detail,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind schema.ErrorKind) int {
	switch kind {
	case schema.KindInvalidInput:
		return http.StatusBadRequest
	case schema.KindUnauthorized:
		return http.StatusUnauthorized
	case schema.KindNotFound:
		return http.StatusNotFound
	case schema.KindRateLimited:
		return http.StatusTooManyRequests
	case schema.KindProviderTimeout:
		return http.StatusGatewayTimeout
	case schema.KindProviderError, schema.KindProviderBadResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status.
// retryAfterSeconds is sent with rate limited responses when positive.
func writeError(w http.ResponseWriter, err error, retryAfterSeconds int) {
	kind := schema.KindOf(err)
	status := StatusFor(kind)
	body := errorBody{Error: err.Error(), Kind: kind}

	var ae *schema.AuditError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			body.Error = ae.Message
		}
		body.Detail = ae.Detail
	}
	if status == http.StatusInternalServerError {
		// Storage causes may carry connection details
		body.Error = "internal error"
		body.Detail = ""
	}
	if kind == schema.KindRateLimited && retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func unauthorized(msg string) error {
	return schema.NewError(schema.KindUnauthorized, msg)
}

func invalidInput(msg string) error {
	return schema.NewError(schema.KindInvalidInput, msg)
}
