// Package slack delivers rendered digests to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Options carries the message metadata sent alongside the digest text.
type Options struct {
	Channel   string
	Username  string
	IconEmoji string
}

// Notifier posts messages to a single webhook URL.
type Notifier struct {
	webhookURL string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

type payload struct {
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Text      string `json:"text"`
	Mrkdwn    bool   `json:"mrkdwn"`
}

// NewNotifier creates a Notifier. The webhook URL is required; its absence
// is a configuration error surfaced at construction time, not at send
// time.
func NewNotifier(webhookURL string, opts Options, logger *slog.Logger) (*Notifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL not provided")
	}
	return &Notifier{
		webhookURL: webhookURL,
		opts:       opts,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// SendReport posts a rendered digest. A non-200 response or a transport
// failure is returned as an error; the caller decides whether delivery is
// required.
func (n *Notifier) SendReport(ctx context.Context, text string) error {
	err := n.post(ctx, payload{
		Channel:   n.opts.Channel,
		Username:  n.opts.Username,
		IconEmoji: n.opts.IconEmoji,
		Text:      text,
		Mrkdwn:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to send report to Slack: %w", err)
	}
	n.logger.Info("report sent to Slack", "channel", n.opts.Channel)
	return nil
}

// SendError posts a best-effort error notice. The result is reported as a
// boolean rather than an error so callers never fail on top of a failure.
func (n *Notifier) SendError(ctx context.Context, message string) bool {
	err := n.post(ctx, payload{
		Text:   fmt.Sprintf("❌ *Weekend Activity Error*\n%s", message),
		Mrkdwn: true,
	})
	if err != nil {
		n.logger.Warn("failed to send error notice to Slack", "error", err)
		return false
	}
	return true
}

func (n *Notifier) post(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
