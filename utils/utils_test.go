package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddelivery/apperr"
)

func TestHandleAppError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, nil, apperr.Field("items.0.menu_item_id", "The selected menu item is invalid."))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"The selected menu item is invalid."}, body.Errors["items.0.menu_item_id"])
}

func TestHandleAppError_KindsToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Unauthenticated("who"), http.StatusUnauthorized},
		{apperr.Conflict("again", errors.New("fk")), http.StatusConflict},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		log := zerolog.Nop()
		HandleAppError(rec, &log, tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestHandleAppError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, nil, apperr.Internal("load order", errors.New("pq: password authentication failed")))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperr.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperr.ErrValidation)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.Error(t, CheckPassword(hash, "battery staple"))
}

func TestErrorWithTrace(t *testing.T) {
	assert.NoError(t, ErrorWithTrace(nil, "ignored"))

	base := errors.New("base")
	err := ErrorWithTrace(base, "loading")
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "utils_test.go")
}
