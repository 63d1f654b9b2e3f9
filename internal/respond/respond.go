// Package respond единый формат JSON-ответов. Ошибки превращаются в
// ErrorResponse с кодом, заголовком и traceId; причина остаётся в логах.
package respond

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"interview-platform/internal/apperr"
	"interview-platform/internal/logging"
)

const errorTypeBase = "https://errors.interview-platform.dev/"

type ErrorResponse struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance"`
	ErrorCode string            `json:"errorCode"`
	TraceID   string            `json:"traceId"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func JSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func OK(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusOK, payload)
}

func Created(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusCreated, payload)
}

// Error любая ошибка без *apperr.AppError в цепочке становится 500.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()
	logger := logging.FromContext(ctx)

	appErr := apperr.As(err)
	if appErr == nil {
		appErr = apperr.Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("ошибка обработки запроса",
			zap.String("code", appErr.Code),
			zap.Error(appErr.Cause),
		)
	} else if appErr.Cause != nil {
		logger.Debug("запрос отклонён", zap.String("code", appErr.Code), zap.Error(appErr.Cause))
	}

	JSON(writer, appErr.Status, ErrorResponse{
		Type:      errorTypeBase + appErr.Code,
		Title:     appErr.Title,
		Status:    appErr.Status,
		Detail:    appErr.Detail,
		Instance:  request.URL.Path,
		ErrorCode: appErr.Code,
		TraceID:   logging.RequestID(ctx),
		Timestamp: time.Now().UTC(),
		Details:   appErr.Details,
	})
}
