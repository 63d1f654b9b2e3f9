// Package gateway шлюз: переносит проверенную личность из bearer токена в
// заголовки и проксирует запрос в сервис по префиксу пути.
package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-platform/internal/logging"
	"interview-platform/internal/ports"
	"interview-platform/internal/security"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserRoles = "X-User-Roles"
	HeaderUserEmail = "X-User-Email"
)

var identityHeaders = []string{HeaderUserID, HeaderUserRoles, HeaderUserEmail}

// IdentityPropagation не отклоняет запросы: без токена или с неверным токеном
// запрос уходит дальше без заголовков личности, решение принимает сервис.
// Присланные клиентом X-User-* всегда удаляются. Authorization не трогается,
// сервисы проверяют токен сами.
func IdentityPropagation(verifier ports.TokenVerifierInterface, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			for _, header := range identityHeaders {
				request.Header.Del(header)
			}

			token, ok := security.BearerToken(request)
			if !ok {
				next.ServeHTTP(writer, request)
				return
			}

			identity, err := verifier.Verify(token, now())
			if err != nil {
				logging.FromContext(request.Context()).Debug("токен не прошёл проверку на шлюзе", zap.Error(err))
				next.ServeHTTP(writer, request)
				return
			}
			roles := security.NormalizeRoles(identity.Roles)
			if len(roles) == 0 {
				next.ServeHTTP(writer, request)
				return
			}

			request.Header.Set(HeaderUserID, strconv.FormatInt(identity.SubjectID, 10))
			request.Header.Set(HeaderUserRoles, strings.Join(roles, ","))
			if identity.Email != "" {
				request.Header.Set(HeaderUserEmail, identity.Email)
			}

			if info := logging.RequestInfoFromContext(request.Context()); info != nil {
				info.UserID = identity.SubjectID
			}

			next.ServeHTTP(writer, request)
		})
	}
}
