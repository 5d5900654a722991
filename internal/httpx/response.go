// Package httpx holds the JSON response helpers shared by handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"kind":"InfrastructureError","message":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, kind apperr.Kind, msg string, details any) {
	JSON(w, status, ErrorResponse{Kind: string(kind), Message: msg, Details: details})
}

// Error writes err with the status of its kind. Infrastructure causes are logged, not returned.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = &apperr.Error{Kind: apperr.KindInfrastructure, Message: "internal_error", Err: err}
	}
	status := apperr.HTTPStatus(ae.Kind)
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", err, zap.String("path", r.URL.Path))
		if ae.Kind == apperr.KindInfrastructure {
			msg = "internal_error"
		}
	}
	JSONError(w, status, ae.Kind, msg, ae.Details)
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid_json", map[string]string{"body": err.Error()})
	}
	return nil
}
