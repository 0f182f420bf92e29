// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Field   string      `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Response{Success: false, Error: message, Kind: apperror.KindInvalidInput})
}

// Error maps err onto the API status codes. Unexpected errors are logged and
// answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	resp := Response{Success: false, Error: err.Error()}

	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		resp.Kind = ve.Kind
		resp.Field = ve.Field
	}

	if status == http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Error = "internal server error"
	}
	JSON(w, status, resp)
}

// PathID parses the named mux variable as an id.
func PathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.NewValidation(apperror.KindInvalidInput, name, "must be a positive integer")
	}
	return uint(id), nil
}

// Decode reads a JSON body into dst.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidation(apperror.KindInvalidInput, "body", "invalid request body")
	}
	return nil
}
