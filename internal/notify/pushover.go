// Package notify delivers alerts to the persona's owner. The chatbot uses it
// to flag visitors who leave contact details and questions it couldn't answer.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/metrics"
	"github.com/sgupta/personabot/pkg/logging"
)

type Notifier interface {
	Push(ctx context.Context, message string) error
}

// shared transport so repeated deliveries reuse connections
var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

type PushoverNotifier struct {
	token    string
	user     string
	endpoint string
	client   *http.Client
	logger   *logging.Logger
}

func NewPushoverNotifier(token, user string) *PushoverNotifier {
	return &PushoverNotifier{
		token:    token,
		user:     user,
		endpoint: config.PushoverEndpoint,
		client: &http.Client{
			Transport: pooledTransport,
			Timeout:   config.PushoverTimeout,
		},
		logger: logging.NewLogger("Pushover"),
	}
}

// NewTestNotifier points deliveries at a local endpoint.
func NewTestNotifier(token, user, endpoint string) *PushoverNotifier {
	n := NewPushoverNotifier(token, user)
	n.endpoint = endpoint
	return n
}

func (n *PushoverNotifier) Push(ctx context.Context, message string) error {
	form := url.Values{
		"token":   {n.token},
		"user":    {n.user},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.CountNotification("error")
		n.logger.Error("Pushover delivery failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.CountNotification("rejected")
		n.logger.Error("Pushover rejected message", "status", resp.StatusCode)
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}

	metrics.CountNotification("ok")
	n.logger.Debug("Pushover message delivered")
	return nil
}

// NoopNotifier stands in when Pushover credentials are not configured. Tool
// calls still succeed, nothing gets delivered.
type NoopNotifier struct {
	logger *logging.Logger
}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{logger: logging.NewLogger("Notify")}
}

func (n *NoopNotifier) Push(ctx context.Context, message string) error {
	n.logger.Debug("Notifications disabled, dropping message", "message", message)
	return nil
}
