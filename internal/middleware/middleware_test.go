package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"interview-platform/config"
	"interview-platform/internal/logging"
	"interview-platform/internal/respond"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = logging.RequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(HeaderRequestID))

	parsed, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestRequestID_FromClient(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = logging.RequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(HeaderRequestID, "client-trace-1")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, "client-trace-1", seen)
}

func TestLogger_FinalLine(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := RequestID(Logger(zap.New(core))(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		logging.RequestInfoFromContext(request.Context()).UserID = 42
		writer.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	entries := logs.FilterMessage("запрос завершён").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, "/auth/login", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestPanicRecovery(t *testing.T) {
	handler := RequestID(PanicRecovery(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		panic("boom")
	})))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.ErrorCode)
	assert.NotContains(t, recorder.Body.String(), "boom")
	assert.Equal(t, recorder.Header().Get(HeaderRequestID), body.TraceID)
}

func TestRateLimiter(t *testing.T) {
	limiter, err := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 2, ClientTTL: time.Minute})
	require.NoError(t, err)
	handler := limiter.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	call := func(remoteAddr string) int {
		request := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		request.RemoteAddr = remoteAddr
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	// другой клиент со своим бакетом
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000"))
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"192.168.1.0/24", "::1"})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", ClientIP(request, trusted))

	request.Header.Set("X-Forwarded-For", "1.1.1.1, 203.0.113.7")
	assert.Equal(t, "203.0.113.7", ClientIP(request, trusted))

	// клиент напрямую, мимо шлюза: заголовок не учитывается
	request.RemoteAddr = "198.51.100.9:4000"
	assert.Equal(t, "198.51.100.9", ClientIP(request, trusted))

	request.RemoteAddr = "[::1]:4000"
	assert.Equal(t, "203.0.113.7", ClientIP(request, trusted))

	request.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", ClientIP(request, nil))
}

func TestRateLimiter_SpoofedForwardedForFromUntrustedClient(t *testing.T) {
	limiter, err := NewRateLimiter(config.RateLimitConfig{
		RPS:            0.001,
		Burst:          2,
		ClientTTL:      time.Minute,
		TrustedProxies: []string{"127.0.0.1/32"},
	})
	require.NoError(t, err)
	handler := limiter.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		request := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		request.RemoteAddr = "198.51.100.9:4000"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", ""})
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.True(t, prefixes[1].Contains(netip.MustParseAddr("127.0.0.1")))

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)

	_, err = NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1, TrustedProxies: []string{"10.0.0.0/99"}})
	assert.Error(t, err)
}
