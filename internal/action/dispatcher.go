package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// Command is a rendered step ready for delivery to the game server
type Command struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Variable string         `json:"variable"`
	Player   *domain.Player `json:"player,omitempty"`
}

// Dispatcher delivers commands to whatever executes them
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// LogDispatcher only logs commands. It is the default when no webhook is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, cmd Command) error {
	attrs := []any{"kind", cmd.Kind, "text", cmd.Text, "variable", cmd.Variable}
	if cmd.Player != nil {
		attrs = append(attrs, "player", cmd.Player.ID)
	}
	logger.FromContext(ctx).Info(LogMsgActionDispatched, attrs...)
	return nil
}

// WebhookDispatcher POSTs each command as JSON to a URL
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

// NewWebhookDispatcher creates a dispatcher. A nil client gets DefaultWebhookTimeout.
func NewWebhookDispatcher(url string, client *http.Client) *WebhookDispatcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &WebhookDispatcher{url: url, client: client}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, cmd Command) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWebhookRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWebhookRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %d", ErrMsgWebhookStatus, resp.StatusCode)
	}

	logger.FromContext(ctx).Debug(LogMsgActionDispatched,
		"kind", cmd.Kind, "variable", cmd.Variable, "duration", time.Since(start))
	return nil
}
