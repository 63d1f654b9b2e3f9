package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewWebhookNotifier(webhookURL string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (notifier *WebhookNotifier) SendVerification(ctx context.Context, email string, link string) error {
	jsonBody, err := json.Marshal(newVerificationNotify(email, link))
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.webhookURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса webhook: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := notifier.client.Do(request)
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("webhook ответил статусом %d", response.StatusCode)
	}

	return nil
}
