package internal

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"interview-platform/config"
)

type Database struct {
	*sqlx.DB
	Driver string
}

func NewDatabaseConnection(cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	database, err := sqlx.Connect(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// in-memory база живёт в одном соединении
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	logger.Info("Подключение к БД успешно выполнено", zap.String("driver", cfg.Driver))
	return &Database{
		DB:     database,
		Driver: cfg.Driver,
	}, nil
}

// Ping проверка доступности для /healthz.
func (db *Database) Ping(ctx context.Context) error {
	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("БД недоступна: %w", err)
	}
	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}
