package config

import "time"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver           string        `yaml:"driver" env:"DATABASE_DRIVER"`
	ConnectionString string        `yaml:"connection_string" env:"DATABASE_CONNECTION_URL"`
	QueryTimeout     time.Duration `yaml:"query_timeout" env:"DATABASE_QUERY_TIMEOUT"`
	Migrate          bool          `yaml:"migrate" env:"DATABASE_MIGRATE"`
}

// JWTConfig должен совпадать (secret, issuer) у всех сервисов одного контура доверия.
type JWTConfig struct {
	Secret               string        `yaml:"secret" env:"JWT_SECRET"`
	AccessMinutes        int64         `yaml:"access-minutes" env:"JWT_ACCESS_MINUTES"`
	RefreshDays          int64         `yaml:"refresh-days" env:"JWT_REFRESH_DAYS"`
	Issuer               string        `yaml:"issuer" env:"JWT_ISSUER"`
	ClockSkew            time.Duration `yaml:"clock-skew" env:"JWT_CLOCK_SKEW"`
	AllowAccessAsRefresh bool          `yaml:"allow-access-as-refresh" env:"JWT_ALLOW_ACCESS_AS_REFRESH"`
}

func (cfg JWTConfig) AccessTTL() time.Duration {
	return time.Duration(cfg.AccessMinutes) * time.Minute
}

func (cfg JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(cfg.RefreshDays) * 24 * time.Hour
}

type NotifierConfig struct {
	// Kind: log, webhook или redis
	Kind            string        `yaml:"kind" env:"NOTIFIER_KIND"`
	VerificationURL string        `yaml:"verification_url" env:"NOTIFIER_VERIFICATION_URL"`
	WebhookURL      string        `yaml:"webhook_url" env:"NOTIFIER_WEBHOOK_URL"`
	WebhookTimeout  time.Duration `yaml:"webhook_timeout" env:"NOTIFIER_WEBHOOK_TIMEOUT"`
	RedisURL        string        `yaml:"redis_url" env:"NOTIFIER_REDIS_URL"`
	RedisChannel    string        `yaml:"redis_channel" env:"NOTIFIER_REDIS_CHANNEL"`
}

type GatewayConfig struct {
	Routes []RouteConfig `yaml:"routes"`
}

type RouteConfig struct {
	Prefix   string `yaml:"prefix"`
	Upstream string `yaml:"upstream"`
}

type RateLimitConfig struct {
	RPS       float64       `yaml:"rps" env:"RATE_LIMIT_RPS"`
	Burst     int           `yaml:"burst" env:"RATE_LIMIT_BURST"`
	ClientTTL time.Duration `yaml:"client_ttl" env:"RATE_LIMIT_CLIENT_TTL"`
	// TrustedProxies CIDR или адреса, от которых принимается X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies" env:"RATE_LIMIT_TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level   string     `yaml:"level" env:"LOG_LEVEL"`
	Console bool       `yaml:"console" env:"LOG_CONSOLE"`
	File    FileConfig `yaml:"file"`
}

type FileConfig struct {
	Filename   string `yaml:"filename" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}
