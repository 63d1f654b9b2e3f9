package security

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-platform/internal/respond"
)

func fixedNow() time.Time { return testNow }

func principalEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, ok := PrincipalFromContext(request.Context())
		if !ok {
			writer.WriteHeader(http.StatusNoContent)
			return
		}
		respond.OK(writer, principal)
	})
}

func serve(handler http.Handler, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestBearerToken(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(request)
	assert.False(t, ok)

	request.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(request)
	assert.False(t, ok)

	request.Header.Set("Authorization", "Bearer   ")
	_, ok = BearerToken(request)
	assert.False(t, ok)

	request.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, ok := BearerToken(request)
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestJWTMiddleware_AttachesPrincipal(t *testing.T) {
	issuer := newTestIssuer(testSecret)
	handler := JWTMiddleware(NewTokenVerifier(MustDeriveKey(testSecret), 0), fixedNow)(principalEcho(t))

	token, err := issuer.IssueAccessToken(11, "p@x.com", []string{"ADMIN"}, testNow)
	require.NoError(t, err)

	recorder := serve(handler, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	var principal Principal
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &principal))
	assert.Equal(t, int64(11), principal.SubjectID)
	assert.Equal(t, "p@x.com", principal.Email)
	assert.Equal(t, []string{"ROLE_ADMIN"}, principal.Roles)
}

func TestJWTMiddleware_AnonymousCases(t *testing.T) {
	issuer := newTestIssuer(testSecret)
	foreign := newTestIssuer(otherSecret)
	handler := JWTMiddleware(NewTokenVerifier(MustDeriveKey(testSecret), 0), fixedNow)(principalEcho(t))

	refresh, err := issuer.IssueRefreshToken(11, testNow)
	require.NoError(t, err)
	expired, err := issuer.IssueAccessToken(11, "p@x.com", nil, testNow.Add(-time.Hour))
	require.NoError(t, err)
	forged, err := foreign.IssueAccessToken(11, "p@x.com", []string{"ADMIN"}, testNow)
	require.NoError(t, err)

	tests := map[string]string{
		"no token":      "",
		"garbage":       "garbage",
		"refresh token": refresh,
		"expired":       expired,
		"foreign key":   forged,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			recorder := serve(handler, token)
			assert.Equal(t, http.StatusNoContent, recorder.Code)
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	issuer := newTestIssuer(testSecret)
	verifier := NewTokenVerifier(MustDeriveKey(testSecret), 0)
	handler := JWTMiddleware(verifier, fixedNow)(RequireAuthenticated(principalEcho(t)))

	recorder := serve(handler, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.ErrorCode)

	token, err := issuer.IssueAccessToken(3, "u@x.com", nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(handler, token).Code)
}

func TestRequireRole(t *testing.T) {
	issuer := newTestIssuer(testSecret)
	verifier := NewTokenVerifier(MustDeriveKey(testSecret), 0)
	handler := JWTMiddleware(verifier, fixedNow)(RequireRole(RoleAdmin)(principalEcho(t)))

	assert.Equal(t, http.StatusUnauthorized, serve(handler, "").Code)

	userToken, err := issuer.IssueAccessToken(3, "u@x.com", []string{"USER"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(handler, userToken).Code)

	adminToken, err := issuer.IssueAccessToken(4, "a@x.com", []string{"ROLE_ADMIN"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(handler, adminToken).Code)
}
