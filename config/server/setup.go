package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"interview-platform/config"
	"interview-platform/internal"
	"interview-platform/internal/logging"
	"interview-platform/internal/middleware"
	"interview-platform/internal/migration"
	"interview-platform/internal/security"
)

// Setup общая часть запуска сервисов: конфигурация, логгер и ключ подписи.
// Слабый или отсутствующий секрет останавливает запуск здесь, а не на первом запросе.
func Setup() (*config.Config, *zap.Logger, security.SigningKey, error) {
	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		return nil, nil, security.SigningKey{}, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, security.SigningKey{}, err
	}

	key, err := security.DeriveKey(cfg.JWT.Secret)
	if err != nil {
		return nil, nil, security.SigningKey{}, fmt.Errorf("jwt.secret: %w", err)
	}

	return cfg, logger, key, nil
}

func SetupDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения: %w", err)
	}

	if cfg.Migrate {
		if err := migration.Up(database.DB.DB, cfg.Driver, logger); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return database, nil
}

// SetupServer роутер с общими middleware: request id, лог запроса, восстановление после паники.
func SetupServer(cfg config.ServerConfig, logger *zap.Logger) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Logger(logger), middleware.PanicRecovery)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, router
}

// RunServer работает до ошибки сервера или SIGINT/SIGTERM, затем плавно останавливается.
// onShutdown вызываются после остановки приёма запросов.
func RunServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, onShutdown ...func()) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("сервер запущен", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка работы сервера: %w", err)
		}
		return nil
	case sig := <-signalChannel:
		logger.Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}
	for _, hook := range onShutdown {
		hook()
	}

	logger.Info("Сервер успешно остановлен")
	return nil
}
