package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Minute)
	raw, err := iss.Generate("u1", "admin")
	require.NoError(t, err)

	c, err := iss.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, "admin", c.Role)
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	raw, err := NewTokenIssuer("secret", time.Minute).Generate("u1", "user")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Minute).Parse(raw)
	assert.Error(t, err)

	late := NewTokenIssuer("secret", time.Minute)
	late.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = late.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthenticateAndRequireAdmin(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Minute)
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Authenticate(iss)(RequireAdmin(next))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userTok, _ := iss.Generate("u1", "user")
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminTok, _ := iss.Generate("a1", "admin")
	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", seen)
}

func TestMemoryTokenStore(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "reset", "abc", "u1", time.Minute))

	_, err := s.Take(ctx, "confirm", "abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	id, err := s.Take(ctx, "reset", "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = s.Take(ctx, "reset", "abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, s.Put(ctx, "reset", "old", "u1", time.Minute))
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.Take(ctx, "reset", "old")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
