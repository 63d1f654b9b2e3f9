package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"interview-platform/internal/model"
	"interview-platform/internal/respond"
	"interview-platform/internal/security"
	"interview-platform/internal/service"
)

type AuthenticationHandler struct {
	AuthenticationService *service.AuthenticationService
	RequestTimeout        time.Duration
	validate              *validator.Validate
}

// HealthResponse ответ /healthz
// swagger:model
type HealthResponse struct {
	// example: UP
	Status string `json:"status"`
}

func NewAuthenticationHandler(authenticationService *service.AuthenticationService, requestTimeout time.Duration) *AuthenticationHandler {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &AuthenticationHandler{
		AuthenticationService: authenticationService,
		RequestTimeout:        requestTimeout,
		validate:              newValidator(),
	}
}

// Routes маршруты auth-сервиса. limiter оборачивает только /auth/*.
func (handler *AuthenticationHandler) Routes(router chi.Router, limiter func(http.Handler) http.Handler) {
	router.Route("/auth", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.Refresh)
		r.Get("/verify", handler.Verify)
		r.Get("/user-info", handler.UserInfo)
	})
	router.Get("/healthz", handler.Health)
}

// Register регистрирует пользователя в статусе PENDING
// @Summary Регистрация
// @Description Создаёт аккаунт, выпускает пару токенов и токен подтверждения. Ссылка подтверждения отправляется асинхронно.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "данные пользователя"
// @Success 201 {object} model.TokenBundle
// @Failure 400 {object} respond.ErrorResponse "невалидный запрос или неизвестная роль"
// @Failure 409 {object} respond.ErrorResponse "email уже зарегистрирован"
// @Router /auth/register [post]
func (handler *AuthenticationHandler) Register(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	var registerRequest model.RegisterRequest
	if err := decodeAndValidate(handler.validate, writer, request, &registerRequest); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bundle, err := handler.AuthenticationService.Register(ctx, &registerRequest)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, bundle)
}

// Login выдаёт пару токенов по email и паролю
// @Summary Вход
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "email и пароль"
// @Success 200 {object} model.TokenBundle
// @Failure 400 {object} respond.ErrorResponse "аккаунт не подтверждён"
// @Failure 401 {object} respond.ErrorResponse "неверный email или пароль"
// @Router /auth/login [post]
func (handler *AuthenticationHandler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	var loginRequest model.LoginRequest
	if err := decodeAndValidate(handler.validate, writer, request, &loginRequest); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bundle, err := handler.AuthenticationService.Login(ctx, &loginRequest)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bundle)
}

// Refresh обновляет пару токенов
// @Summary Обновление токенов
// @Description Проверяет refresh токен, заново читает роли пользователя и выпускает новую пару.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "refresh токен"
// @Success 200 {object} model.TokenBundle
// @Failure 401 {object} respond.ErrorResponse "токен просрочен или невалиден"
// @Failure 404 {object} respond.ErrorResponse "пользователь удалён"
// @Router /auth/refresh [post]
func (handler *AuthenticationHandler) Refresh(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	var refreshRequest model.RefreshRequest
	if err := decodeAndValidate(handler.validate, writer, request, &refreshRequest); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bundle, err := handler.AuthenticationService.Refresh(ctx, refreshRequest.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bundle)
}

// Verify подтверждает аккаунт одноразовым токеном
// @Summary Подтверждение аккаунта
// @Tags Authentication
// @Produce json
// @Param token query string true "токен подтверждения"
// @Success 200 {object} model.TokenBundle
// @Failure 401 {object} respond.ErrorResponse "токен невалиден или уже использован"
// @Router /auth/verify [get]
func (handler *AuthenticationHandler) Verify(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	bundle, err := handler.AuthenticationService.Verify(ctx, request.URL.Query().Get("token"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bundle)
}

// UserInfo текущий пользователь по access токену
// @Summary Данные пользователя
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.UserInfo
// @Failure 400 {object} respond.ErrorResponse "невалидный токен"
// @Failure 404 {object} respond.ErrorResponse "пользователь удалён"
// @Security ApiKeyAuth
// @Router /auth/user-info [get]
func (handler *AuthenticationHandler) UserInfo(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	accessToken, _ := security.BearerToken(request)

	info, err := handler.AuthenticationService.UserInfo(ctx, accessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}

// Health godoc
// @Summary Проверка готовности
// @Success 200 {object} HealthResponse
// @Failure 503 {object} respond.ErrorResponse "хранилище недоступно"
// @Router /healthz [get]
func (handler *AuthenticationHandler) Health(writer http.ResponseWriter, request *http.Request) {
	if err := handler.AuthenticationService.Health(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, &HealthResponse{Status: "UP"})
}
