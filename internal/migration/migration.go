// Package migration применяет встроенные SQL-миграции через golang-migrate.
// Для postgres и sqlite свои каталоги: типы колонок различаются.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrations embed.FS

// Up применяет все новые миграции. db не закрывается: соединение
// принадлежит вызывающему.
func Up(db *sql.DB, driver string, logger *zap.Logger) error {
	var (
		instance database.Driver
		err      error
	)
	switch driver {
	case "postgres":
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("миграции не поддерживаются для драйвера %q", driver)
	}
	if err != nil {
		return fmt.Errorf("ошибка инициализации драйвера миграций: %w", err)
	}

	source, err := iofs.New(migrations, driver)
	if err != nil {
		return fmt.Errorf("ошибка чтения миграций: %w", err)
	}
	defer source.Close()

	migrator, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("ошибка получения версии схемы: %w", err)
	}
	if dirty {
		return fmt.Errorf("схема в состоянии dirty на версии %d", version)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("схема БД актуальна", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("миграции применены", zap.Uint("from", version), zap.Uint("to", newVersion))
	return nil
}

type migrateLogger struct {
	logger *zap.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
