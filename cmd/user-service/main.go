package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"interview-platform/config/server"
	"interview-platform/internal/handler"
	"interview-platform/internal/repository"
	"interview-platform/internal/security"
	"interview-platform/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, logger, key, err := server.Setup()
	if err != nil {
		log.Fatalf("не удалось запустить user-service: %v", err)
	}
	defer logger.Sync()

	database, err := server.SetupDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к БД", zap.Error(err))
	}
	defer database.Close()

	httpServer, router := server.SetupServer(cfg.Server, logger)

	// свой экземпляр проверки токена: заголовкам шлюза сервис не доверяет
	tokenVerifier := security.NewTokenVerifier(key, cfg.JWT.ClockSkew)
	userService := service.NewUserService(repository.NewUserRepository(database), cfg.Database.QueryTimeout)
	handler.NewUserHandler(userService, cfg.Server.RequestTimeout).Routes(router, tokenVerifier)

	if err := server.RunServer(ctx, httpServer, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("user-service остановлен с ошибкой", zap.Error(err))
	}
}
