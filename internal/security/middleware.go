package security

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-platform/internal/apperr"
	"interview-platform/internal/logging"
	"interview-platform/internal/respond"
)

type principalKey struct{}

// Principal аутентифицированный пользователь запроса. Живёт только в контексте запроса.
type Principal struct {
	SubjectID int64
	Email     string
	// Roles в виде ROLE_<NAME>
	Roles []string
}

func (principal *Principal) HasRole(role string) bool {
	return HasRole(principal.Roles, role)
}

func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*Principal)
	return principal, ok && principal != nil
}

// BearerToken достаёт токен из "Authorization: Bearer <token>".
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// JWTMiddleware фильтр ресурсного сервиса: сам проверяет исходный bearer токен
// и не доверяет заголовкам шлюза. Без токена или с неверным токеном запрос идёт
// дальше анонимно, отказ выдают RequireAuthenticated/RequireRole.
// Токен без roles (например, refresh) не аутентифицирует.
func JWTMiddleware(verifier *TokenVerifier, now func() time.Time) func(next http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(verifier, now, next))
	}
}

func handleAuthentication(verifier *TokenVerifier, now func() time.Time, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		jwtTokenStr, ok := BearerToken(request)
		if !ok {
			next.ServeHTTP(writer, request)
			return
		}

		identity, err := verifier.Verify(jwtTokenStr, now())
		if err != nil {
			logging.FromContext(request.Context()).Debug("невалидный токен", zap.Error(err))
			next.ServeHTTP(writer, request)
			return
		}
		if len(identity.Roles) == 0 {
			next.ServeHTTP(writer, request)
			return
		}

		principal := &Principal{
			SubjectID: identity.SubjectID,
			Email:     identity.Email,
			Roles:     NormalizeRoles(identity.Roles),
		}

		ctx := WithPrincipal(request.Context(), principal)
		if info := logging.RequestInfoFromContext(ctx); info != nil {
			info.UserID = principal.SubjectID
		}
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(zap.Int64("user_id", principal.SubjectID)))
		next.ServeHTTP(writer, request.WithContext(ctx))
	}
}

func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, ok := PrincipalFromContext(request.Context()); !ok {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, ok := PrincipalFromContext(request.Context())
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			if !principal.HasRole(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
