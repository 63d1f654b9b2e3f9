// Package middleware общие http middleware всех сервисов.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"interview-platform/config"
	"interview-platform/internal/apperr"
	"interview-platform/internal/logging"
	"interview-platform/internal/respond"
)

const HeaderRequestID = "X-Request-ID"

// RequestID берёт X-Request-ID клиента или создаёт uuid v7.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := strings.TrimSpace(request.Header.Get(HeaderRequestID))
		if requestID == "" || len(requestID) > 128 {
			if id, err := uuid.NewV7(); err == nil {
				requestID = id.String()
			} else {
				requestID = uuid.New().String()
			}
		}

		request.Header.Set(HeaderRequestID, requestID)
		writer.Header().Set(HeaderRequestID, requestID)

		next.ServeHTTP(writer, request.WithContext(logging.WithRequestID(request.Context(), requestID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

func (recorder *statusRecorder) Flush() {
	if flusher, ok := recorder.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Logger кладёт в контекст логгер запроса и пишет итоговую строку
// со статусом, временем и user_id.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With(
				zap.String("request_id", logging.RequestID(request.Context())),
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.String("ip", ClientIP(request, nil)),
			)

			info := &logging.RequestInfo{}
			ctx := logging.WithLogger(request.Context(), requestLogger)
			ctx = logging.WithRequestInfo(ctx, info)
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request.WithContext(ctx))

			fields := []zap.Field{
				zap.Int("status", recorder.status),
				zap.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				zap.String("user_agent", request.UserAgent()),
			}
			if info.UserID != 0 {
				fields = append(fields, zap.Int64("user_id", info.UserID))
			}

			switch {
			case recorder.status >= http.StatusInternalServerError:
				requestLogger.Error("запрос завершён", fields...)
			case recorder.status >= http.StatusBadRequest:
				requestLogger.Warn("запрос завершён", fields...)
			default:
				requestLogger.Info("запрос завершён", fields...)
			}
		})
	}
}

// PanicRecovery превращает панику в 500 без подробностей для клиента.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stackTrace := make([]byte, 4096)
				length := runtime.Stack(stackTrace, false)

				logging.FromContext(request.Context()).Error("паника при обработке запроса",
					zap.Any("panic", recovered),
					zap.ByteString("stack", stackTrace[:length]),
				)
				respond.Error(writer, request, apperr.Internal(nil))
			}
		}()

		next.ServeHTTP(writer, request)
	})
}

// RateLimiter token bucket на каждый IP. Неактивные клиенты вытесняются go-cache по ClientTTL.
type RateLimiter struct {
	limit          rate.Limit
	burst          int
	ttl            time.Duration
	trustedProxies []netip.Prefix
	clients        *cache.Cache
	mu             sync.Mutex
}

func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	trustedProxies, err := ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateLimiter{
		limit:          rate.Limit(cfg.RPS),
		burst:          cfg.Burst,
		ttl:            ttl,
		trustedProxies: trustedProxies,
		clients:        cache.New(ttl, ttl),
	}, nil
}

func (limiter *RateLimiter) Allow(clientIP string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	bucket, found := limiter.clients.Get(clientIP)
	if !found {
		bucket = rate.NewLimiter(limiter.limit, limiter.burst)
	}
	// продлеваем срок жизни при каждом обращении
	limiter.clients.Set(clientIP, bucket, limiter.ttl)

	return bucket.(*rate.Limiter).Allow()
}

func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !limiter.Allow(ClientIP(request, limiter.trustedProxies)) {
			writer.Header().Set("Retry-After", "1")
			respond.Error(writer, request, apperr.RateLimited())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// ParseTrustedProxies принимает CIDR ("10.0.0.0/8") или одиночные адреса.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("rate_limit.trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("rate_limit.trusted_proxies: %w", err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// ClientIP адрес соединения. Если соединение пришло от доверенного прокси,
// берётся последний адрес X-Forwarded-For (его дописал шлюз); значения левее
// добавлены клиентом и не учитываются.
func ClientIP(request *http.Request, trustedProxies []netip.Prefix) string {
	remote := remoteIP(request)
	if !isTrusted(remote, trustedProxies) {
		return remote
	}

	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[len(parts)-1]); ip != "" {
			return ip
		}
	}
	return remote
}

func remoteIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

func isTrusted(ip string, trustedProxies []netip.Prefix) bool {
	if len(trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
