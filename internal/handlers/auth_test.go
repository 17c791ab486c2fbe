package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guidehire/internal/handlers"
	"guidehire/internal/offers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, actorID int, role string, expiresAt time.Time) string {
	t.Helper()
	claims := handlers.Claims{
		ActorID: actorID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func actorEcho(t *testing.T, got *offers.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := handlers.ActorFromContext(r.Context())
		require.True(t, ok)
		*got = actor
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorValidToken(t *testing.T) {
	var got offers.Actor
	mw := handlers.Authenticator(testSecret)(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/offers/my", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, offers.RoleGuide, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.Equal(t, offers.Actor{ID: 1, Role: offers.RoleGuide}, got)
}

func TestAuthenticatorMissingToken(t *testing.T) {
	mw := handlers.Authenticator(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/offers/my", nil)
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestAuthenticatorBadFormat(t *testing.T) {
	mw := handlers.Authenticator(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/offers/my", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	mw := handlers.Authenticator(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/offers/my", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, offers.RoleGuide, time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestAuthenticatorWrongSecret(t *testing.T) {
	mw := handlers.Authenticator("another-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/offers/my", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, offers.RoleGuide, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestRequireRole(t *testing.T) {
	mw := handlers.RequireRole(offers.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/guides/new", nil), adminActor)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	req = withActor(httptest.NewRequest(http.MethodPost, "/api/guides/new", nil), guideActor)
	w = httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Result().StatusCode)
}
