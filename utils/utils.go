package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fooddelivery/apperr"
)

const maxBodyBytes = 1 << 20

// SendJSONResponse sends a JSON response with the given status code and data
func SendJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleError sends a JSON error body with a single message
func HandleError(w http.ResponseWriter, status int, message string) {
	SendJSONResponse(w, status, map[string]string{
		"message": message,
	})
}

type errorBody struct {
	Message string             `json:"message"`
	Errors  apperr.FieldErrors `json:"errors,omitempty"`
}

// HandleAppError renders err by kind. Internal errors are logged with their
// cause and reach the client as a generic message.
func HandleAppError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("Internal server error", err)
	}

	if appErr.Kind == apperr.KindInternal {
		if log != nil {
			log.Error().Err(err).Msg("request failed")
		}
		HandleError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if appErr.Kind == apperr.KindConflict && log != nil && appErr.Err != nil {
		log.Warn().Err(err).Msg("request conflicted")
	}

	SendJSONResponse(w, appErr.Kind.Status(), errorBody{
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Field("body", "The request body must be valid JSON: "+err.Error())
	}
	if dec.More() {
		return apperr.Field("body", "The request body must contain a single JSON object.")
	}
	return nil
}

// HashPassword hashes a plaintext password using bcrypt
func HashPassword(password string) (string, error) {
	hashPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashPassword), nil
}

func CheckPassword(hashedPassword, plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
}

// ErrorWithTrace prefixes err with the caller's file and line.
func ErrorWithTrace(err error, errMessage string) error {
	if err == nil {
		return nil
	}
	// Skip 1 level to get the caller of this function
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d: %s: %w", file, line, errMessage, err)
}
