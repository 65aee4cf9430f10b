package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

// callbackSecretHeader authenticates this service to the callback receiver.
const callbackSecretHeader = "X-Callback-Secret"

// Notifier delivers finished results to the caller-provided callback URL.
type Notifier struct {
	client *http.Client
	secret string
	logger *slog.Logger
}

func NewNotifier(secret string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		secret: secret,
		logger: logger,
	}
}

// Send POSTs the result as JSON. Non-2xx statuses count as delivery
// failures so the worker can log them.
func (n *Notifier) Send(ctx context.Context, url string, result entity.ExtractResponse) error {
	body, err := json.Marshal(result)
	if err != nil {
		return common.WrapError(err, "marshal callback body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return common.WrapError(err, "build callback request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(callbackSecretHeader, n.secret)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("callback delivery failed",
			"url", url, "processing_id", common.ProcessingIDFromContext(ctx), "error", err)
		return common.WrapError(err, "send callback")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Error("callback rejected",
			"url", url, "processing_id", common.ProcessingIDFromContext(ctx), "status", resp.StatusCode)
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}

	n.logger.Info("callback delivered", "url", url, "processing_id", result.ProcessingID)
	return nil
}
