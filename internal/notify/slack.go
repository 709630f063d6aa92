// Package notify forwards operational failures to a Slack channel via an
// incoming webhook, so handler errors surface without anyone tailing logs.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadbridge/platform/config"
	"leadbridge/platform/logger"
)

const requestTimeout = 15 * time.Second

// SlackClient posts plain-text messages to a Slack incoming webhook.
type SlackClient struct {
	httpClient *http.Client
	webhookURL string
	log        *logger.Logger
}

func NewSlackClient(cfg config.SlackConfig, log *logger.Logger) *SlackClient {
	return &SlackClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		webhookURL: cfg.GetSlackWebhookURL(),
		log:        log,
	}
}

// Enabled reports whether a webhook is configured. When false, Send is a no-op.
func (c *SlackClient) Enabled() bool {
	return c.webhookURL != ""
}

// Send posts a message to the configured webhook. Delivery is best effort:
// a failed post is logged and returned but never retried.
func (c *SlackClient) Send(ctx context.Context, text string) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("slack", "send", err)
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
		c.log.UpstreamError("slack", "send", err)
		return err
	}
	return nil
}
