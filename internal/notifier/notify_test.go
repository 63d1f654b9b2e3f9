package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"interview-platform/config"
)

func TestVerificationLink(t *testing.T) {
	link, err := VerificationLink("http://localhost:8080/auth/verify", "abc-_123")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/auth/verify?token=abc-_123", link)

	link, err = VerificationLink("https://app.example/verify?lang=ru", "t")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/verify?lang=ru&token=t", link)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))

	require.NoError(t, notifier.SendVerification(context.Background(), "a@x.com", "http://link"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@x.com", entries[0].ContextMap()["email"])
	assert.Equal(t, "http://link", entries[0].ContextMap()["link"])
}

func TestWebhookNotifier(t *testing.T) {
	received := make(chan VerificationNotify, 1)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var payload VerificationNotify
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		received <- payload
		writer.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, time.Second)
	require.NoError(t, notifier.SendVerification(context.Background(), "a@x.com", "http://link"))

	payload := <-received
	assert.Equal(t, "a@x.com", payload.Email)
	assert.Equal(t, "http://link", payload.Link)
	assert.Equal(t, EventVerificationRequested, payload.Event)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewWebhookNotifier(server.URL, time.Second).SendVerification(context.Background(), "a@x.com", "l")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	err := NewWebhookNotifier(server.URL, time.Second).SendVerification(context.Background(), "a@x.com", "l")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка отправки webhook")
}

func TestRedisNotifier_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	notifier := NewRedisNotifierWithClient(client, "auth.verification")
	defer notifier.Close()

	err := notifier.SendVerification(context.Background(), "a@x.com", "l")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка публикации в redis")
}

func TestNew(t *testing.T) {
	logNotifier, err := New(config.NotifierConfig{Kind: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, logNotifier)

	webhook, err := New(config.NotifierConfig{Kind: "webhook", WebhookURL: "http://x"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &WebhookNotifier{}, webhook)

	redisNotifier, err := New(config.NotifierConfig{Kind: "redis", RedisURL: "redis://localhost:6379/0"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RedisNotifier{}, redisNotifier)

	_, err = New(config.NotifierConfig{Kind: "redis", RedisURL: "::bad"}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(config.NotifierConfig{Kind: "smtp"}, zap.NewNop())
	assert.Error(t, err)
}
