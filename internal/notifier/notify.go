// Package notifier доставляет ссылку подтверждения аккаунта.
// Доставка fire-and-forget: ошибка логируется вызывающим и не откатывает регистрацию.
package notifier

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"interview-platform/config"
	"interview-platform/internal/ports"
)

const EventVerificationRequested = "account_verification_requested"

// VerificationNotify тело webhook и сообщения в redis
type VerificationNotify struct {
	Email     string `json:"email"`
	Link      string `json:"link"`
	Event     string `json:"event"`
	TimeStamp string `json:"timestamp"`
}

func newVerificationNotify(email string, link string) *VerificationNotify {
	return &VerificationNotify{
		Email:     email,
		Link:      link,
		Event:     EventVerificationRequested,
		TimeStamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// VerificationLink <base>?token=<token>, существующие параметры base сохраняются.
func VerificationLink(base string, token string) (string, error) {
	link, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("неверный verification_url: %w", err)
	}
	query := link.Query()
	query.Set("token", token)
	link.RawQuery = query.Encode()
	return link.String(), nil
}

// New выбирает реализацию по notifier.kind.
func New(cfg config.NotifierConfig, logger *zap.Logger) (ports.NotifierInterface, error) {
	switch cfg.Kind {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "webhook":
		return NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout), nil
	case "redis":
		return NewRedisNotifier(cfg.RedisURL, cfg.RedisChannel)
	default:
		return nil, fmt.Errorf("неизвестный notifier.kind: %q", cfg.Kind)
	}
}

// LogNotifier пишет ссылку в лог вместо письма, для локального запуска.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) SendVerification(_ context.Context, email string, link string) error {
	notifier.logger.Info("письмо подтверждения (mock)",
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}
