package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"interview-platform/internal/apperr"
	"interview-platform/internal/respond"
	"interview-platform/internal/security"
	"interview-platform/internal/service"
)

// UserHandler эндпоинты user-service. Токен проверяется самим сервисом
// (security.JWTMiddleware), заголовки шлюза не используются.
type UserHandler struct {
	UserService    *service.UserService
	RequestTimeout time.Duration
}

func NewUserHandler(userService *service.UserService, requestTimeout time.Duration) *UserHandler {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &UserHandler{UserService: userService, RequestTimeout: requestTimeout}
}

func (handler *UserHandler) Routes(router chi.Router, verifier *security.TokenVerifier) {
	router.Route("/users", func(r chi.Router) {
		r.Use(security.JWTMiddleware(verifier, nil))
		r.Use(security.RequireAuthenticated)
		r.Get("/me", handler.Me)
		r.Get("/{id}", handler.GetByID)
	})
}

// Me godoc
// @Summary Текущий пользователь
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.UserInfo
// @Failure 401 {object} respond.ErrorResponse "не авторизован"
// @Security ApiKeyAuth
// @Router /users/me [get]
func (handler *UserHandler) Me(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	principal, ok := security.PrincipalFromContext(ctx)
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	info, err := handler.UserService.GetUser(ctx, principal.SubjectID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}

// GetByID доступен самому пользователю и ROLE_ADMIN
// @Summary Пользователь по id
// @Tags Users
// @Produce json
// @Param id path int true "id пользователя"
// @Success 200 {object} model.UserInfo
// @Failure 403 {object} respond.ErrorResponse "чужой аккаунт без роли ADMIN"
// @Failure 404 {object} respond.ErrorResponse "пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (handler *UserHandler) GetByID(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(writer, request, apperr.Validation("User id must be a positive integer", map[string]string{"id": "is invalid"}))
		return
	}

	principal, ok := security.PrincipalFromContext(ctx)
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}
	if principal.SubjectID != id && !principal.HasRole(security.RoleAdmin) {
		respond.Error(writer, request, apperr.Forbidden("Access to another user's account is not allowed"))
		return
	}

	info, err := handler.UserService.GetUser(ctx, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}
