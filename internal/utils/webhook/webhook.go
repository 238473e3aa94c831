package webhook

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// Client pings uptime monitors and posts bridge events to a webhook.
type Client struct {
	httpClient *resty.Client
	logger     *logger.Logger
}

func New(logger *logger.Logger) *Client {
	return &Client{
		httpClient: resty.New().SetTimeout(10 * time.Second),
		logger:     logger,
	}
}

// CallUptimeWebhook makes a GET request to the webhook URL. Failures are
// logged and swallowed.
func (c *Client) CallUptimeWebhook(ctx context.Context, webhookURL string) {
	if webhookURL == "" {
		return
	}

	resp, err := c.httpClient.R().SetContext(ctx).Get(webhookURL)
	if err != nil {
		c.logger.Error("Failed to call uptime webhook", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}

	c.logger.Info("Successfully called uptime webhook", map[string]string{
		"url":         webhookURL,
		"status_code": resp.Status(),
	})
}

// PostEvent sends a JSON payload to the webhook URL.
func (c *Client) PostEvent(ctx context.Context, webhookURL string, payload interface{}) error {
	if webhookURL == "" {
		return nil
	}

	resp, err := c.httpClient.R().SetContext(ctx).SetBody(payload).Post(webhookURL)
	if err != nil {
		c.logger.Error("Failed to post webhook event", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return err
	}
	if resp.IsError() {
		c.logger.Warn("Webhook rejected event", map[string]string{
			"url":         webhookURL,
			"status_code": resp.Status(),
		})
	}
	return nil
}
