package main

import (
	"context"
	"io"
	"log"
	"net/http"

	"go.uber.org/zap"

	"interview-platform/config/server"
	"interview-platform/internal/handler"
	"interview-platform/internal/middleware"
	"interview-platform/internal/notifier"
	"interview-platform/internal/repository"
	"interview-platform/internal/security"
	"interview-platform/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, logger, key, err := server.Setup()
	if err != nil {
		log.Fatalf("не удалось запустить auth-service: %v", err)
	}
	defer logger.Sync()

	database, err := server.SetupDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к БД", zap.Error(err))
	}
	defer database.Close()

	verificationNotifier, err := notifier.New(cfg.Notifier, logger)
	if err != nil {
		logger.Fatal("ошибка настройки уведомлений", zap.Error(err))
	}
	if closer, ok := verificationNotifier.(io.Closer); ok {
		defer closer.Close()
	}

	httpServer, router := server.SetupServer(cfg.Server, logger)

	userRepository := repository.NewUserRepository(database)
	tokenIssuer := security.NewTokenIssuer(key, cfg.JWT.Issuer, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	tokenVerifier := security.NewTokenVerifier(key, cfg.JWT.ClockSkew)

	authenticationService := service.NewAuthenticationService(
		userRepository,
		tokenIssuer,
		tokenVerifier,
		verificationNotifier,
		service.AuthenticationOptions{
			VerificationURL:      cfg.Notifier.VerificationURL,
			StoreTimeout:         cfg.Database.QueryTimeout,
			AllowAccessAsRefresh: cfg.JWT.AllowAccessAsRefresh,
		},
		logger,
	)
	authenticationHandler := handler.NewAuthenticationHandler(authenticationService, cfg.Server.RequestTimeout)

	var limiter func(next http.Handler) http.Handler
	if cfg.RateLimit.RPS > 0 {
		rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			logger.Fatal("ошибка настройки rate limit", zap.Error(err))
		}
		limiter = rateLimiter.Middleware
	}
	authenticationHandler.Routes(router, limiter)

	if err := server.RunServer(ctx, httpServer, cfg.Server.ShutdownTimeout, logger, authenticationService.Wait); err != nil {
		logger.Error("auth-service остановлен с ошибкой", zap.Error(err))
	}
}
