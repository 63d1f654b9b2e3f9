package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier публикует событие в канал; письма отправляет отдельный подписчик.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(redisURL string, channel string) (*RedisNotifier, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("неверный notifier.redis_url: %w", err)
	}
	return NewRedisNotifierWithClient(redis.NewClient(options), channel), nil
}

func NewRedisNotifierWithClient(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (notifier *RedisNotifier) SendVerification(ctx context.Context, email string, link string) error {
	payload, err := json.Marshal(newVerificationNotify(email, link))
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	if err := notifier.client.Publish(ctx, notifier.channel, payload).Err(); err != nil {
		return fmt.Errorf("ошибка публикации в redis: %w", err)
	}

	return nil
}

func (notifier *RedisNotifier) Close() error {
	return notifier.client.Close()
}
