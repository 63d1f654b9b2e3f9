package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config.yaml"

// LoadConfig читает .env (если есть), yaml-файл и переопределения из окружения.
// Отсутствующий файл конфигурации не ошибка: все значения могут прийти из окружения.
func LoadConfig(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	cfg := Defaults()

	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга .yaml файла: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PathFromEnv возвращает CONFIG_PATH или путь по умолчанию.
func PathFromEnv() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return DefaultConfigPath
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			QueryTimeout: 3 * time.Second,
		},
		JWT: JWTConfig{
			AccessMinutes: 15,
			RefreshDays:   7,
			Issuer:        "interview-platform",
		},
		Notifier: NotifierConfig{
			Kind:            "log",
			VerificationURL: "http://localhost:8080/auth/verify",
			WebhookTimeout:  5 * time.Second,
			RedisChannel:    "auth.verification",
		},
		RateLimit: RateLimitConfig{
			RPS:       5,
			Burst:     10,
			ClientTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Validate проверяет значения, которые нельзя исправить по умолчанию.
// Сам секрет проверяется security.DeriveKey при старте.
func (cfg *Config) Validate() error {
	var problems []string

	if cfg.JWT.AccessMinutes <= 0 {
		problems = append(problems, "jwt.access-minutes должен быть положительным")
	}
	if cfg.JWT.RefreshDays <= 0 {
		problems = append(problems, "jwt.refresh-days должен быть положительным")
	}
	if strings.TrimSpace(cfg.JWT.Issuer) == "" {
		problems = append(problems, "jwt.issuer не задан")
	}
	if cfg.JWT.ClockSkew < 0 {
		problems = append(problems, "jwt.clock-skew не может быть отрицательным")
	}
	switch cfg.Notifier.Kind {
	case "log":
	case "webhook":
		if cfg.Notifier.WebhookURL == "" {
			problems = append(problems, "notifier.webhook_url обязателен для kind=webhook")
		}
	case "redis":
		if cfg.Notifier.RedisURL == "" {
			problems = append(problems, "notifier.redis_url обязателен для kind=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("неизвестный notifier.kind: %q", cfg.Notifier.Kind))
	}
	for _, route := range cfg.Gateway.Routes {
		if !strings.HasPrefix(route.Prefix, "/") || route.Upstream == "" {
			problems = append(problems, fmt.Sprintf("неверный маршрут шлюза: %q -> %q", route.Prefix, route.Upstream))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("ошибка конфигурации: %s", strings.Join(problems, "; "))
	}
	return nil
}
