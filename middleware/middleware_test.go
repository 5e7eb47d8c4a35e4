package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoIdentity(t *testing.T, want *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if want == nil {
			assert.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, *want, id.UserID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuth("secret", time.Hour)
	user := uuid.New()
	token, exp, err := auth.IssueToken(user, []string{"customer"})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	h := auth.Authenticate(echoIdentity(t, &user))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectsExpiredAndForeignTokens(t *testing.T) {
	auth := NewAuth("secret", time.Hour)
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := auth.IssueToken(uuid.New(), nil)
	require.NoError(t, err)

	other := NewAuth("other-secret", time.Hour)
	foreign, _, err := other.IssueToken(uuid.New(), nil)
	require.NoError(t, err)

	verifier := NewAuth("secret", time.Hour)
	for _, tok := range []string{expired, foreign, "garbage"} {
		_, err := verifier.Parse(tok)
		assert.Error(t, err)
	}
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: uuid.New()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewAuth("secret", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestOptionalAuth(t *testing.T) {
	auth := NewAuth("secret", time.Hour)
	user := uuid.New()
	token, _, err := auth.IssueToken(user, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.OptionalAuth(echoIdentity(t, &user)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	auth.OptionalAuth(echoIdentity(t, nil)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireRole("admin")(ok)

	tests := []struct {
		name  string
		roles []string
		anon  bool
		want  int
	}{
		{"admin", []string{"customer", "admin"}, false, http.StatusOK},
		{"customer", []string{"customer"}, false, http.StatusForbidden},
		{"anonymous", nil, true, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/restaurants", nil)
			if !tt.anon {
				req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: uuid.New(), Roles: tt.roles}))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	auth := NewAuth("secret", time.Hour)
	user := uuid.New()
	token, _, err := auth.IssueToken(user, nil)
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, zerolog.Ctx(r.Context()))
		w.WriteHeader(http.StatusCreated)
	})
	h := RequestID(Logger(log)(auth.Authenticate(inner)))

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"status":201`)
	assert.Contains(t, buf.String(), user.String())
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := uuid.Parse(RequestIDFrom(r.Context()))
		assert.NoError(t, err)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
