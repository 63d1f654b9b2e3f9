package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"interview-platform/config/server"
	"interview-platform/internal/gateway"
	"interview-platform/internal/respond"
	"interview-platform/internal/security"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, logger, key, err := server.Setup()
	if err != nil {
		log.Fatalf("не удалось запустить gateway: %v", err)
	}
	defer logger.Sync()

	proxy, err := gateway.NewProxy(cfg.Gateway.Routes)
	if err != nil {
		logger.Fatal("ошибка настройки маршрутов", zap.Error(err))
	}

	httpServer, router := server.SetupServer(cfg.Server, logger)

	tokenVerifier := security.NewTokenVerifier(key, cfg.JWT.ClockSkew)
	router.Get("/healthz", func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{"status": "UP"})
	})
	router.Group(func(r chi.Router) {
		r.Use(gateway.IdentityPropagation(tokenVerifier, nil))
		r.Handle("/*", proxy)
	})

	if err := server.RunServer(ctx, httpServer, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("gateway остановлен с ошибкой", zap.Error(err))
	}
}
