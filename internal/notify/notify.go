// Package notify delivers triggered-alert notifications to the terminal and
// to an optional webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"crypto-advisor/internal/config"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
	"crypto-advisor/pkg/utils"
)

// Localizer resolves translation keys.
type Localizer interface {
	T(key string, params map[string]any) string
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	SendAlert(ctx context.Context, alert models.Alert, currentPrice float64) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationAlert NotificationType = "alert"
	NotificationError NotificationType = "error"
	NotificationInfo  NotificationType = "info"
)

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels  []NotificationChannel
	localizer Localizer
	logger    zerolog.Logger
	mu        sync.RWMutex
}

// NewMultiNotifier creates a MultiNotifier with the webhook channel enabled
// by cfg. Terminal output is added by the caller through AddChannel.
func NewMultiNotifier(cfg config.NotificationConfig, localizer Localizer, logger zerolog.Logger) *MultiNotifier {
	mn := &MultiNotifier{
		channels:  make([]NotificationChannel, 0),
		localizer: localizer,
		logger:    logging.WithComponent(logger, "notify"),
	}
	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Webhook))
	}
	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Channels returns the names of the registered channels.
func (mn *MultiNotifier) Channels() []string {
	mn.mu.RLock()
	defer mn.mu.RUnlock()
	names := make([]string, 0, len(mn.channels))
	for _, ch := range mn.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			mn.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Notification delivery failed")
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendAlert sends a triggered-alert notification.
func (mn *MultiNotifier) SendAlert(ctx context.Context, alert models.Alert, currentPrice float64) error {
	key := "app.triggeredAlertMessageRisen"
	if alert.Condition == models.AlertPriceDropsTo {
		key = "app.triggeredAlertMessageDropped"
	}

	title := mn.localizer.T("app.triggeredAlertTitle", nil)
	message := mn.localizer.T(key, map[string]any{
		"cryptoName":  alert.AssetName,
		"targetPrice": utils.FormatUSD(alert.TargetPrice),
	})
	message += " " + mn.localizer.T("app.triggeredAlertCurrentPrice", map[string]any{
		"currentPrice": utils.FormatUSD(currentPrice),
	})

	return mn.Send(ctx, Notification{
		Type:    NotificationAlert,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"alertId":      alert.ID,
			"cryptoId":     alert.AssetID,
			"cryptoSymbol": alert.AssetSymbol,
			"condition":    alert.Condition,
			"targetPrice":  alert.TargetPrice,
			"currentPrice": currentPrice,
		},
	})
}

// WebhookNotifier sends notifications via HTTP webhook.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
	retry   utils.RetryConfig
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: utils.DefaultRetryConfig(),
	}
}

// Name returns the name of the notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// IsEnabled returns whether the notifier is enabled.
func (w *WebhookNotifier) IsEnabled() bool {
	return w.enabled
}

// webhookStatusError is a non-2xx webhook response.
type webhookStatusError struct {
	status int
}

func (e *webhookStatusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.status)
}

// Send posts the notification as JSON. 5xx responses and transport errors
// are retried with backoff.
func (w *WebhookNotifier) Send(ctx context.Context, n Notification) error {
	if !w.enabled {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"data":      n.Data,
		"timestamp": n.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	cfg := w.retry
	cfg.Retryable = func(err error) bool {
		if se, ok := err.(*webhookStatusError); ok {
			return se.status >= 500
		}
		return true
	}

	return utils.Retry(ctx, cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "CryptoAdvisor/1.0")

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("sending webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &webhookStatusError{status: resp.StatusCode}
		}
		return nil
	})
}
