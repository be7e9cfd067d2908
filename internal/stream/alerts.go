// Package stream evaluates price alerts against fresh snapshots and fans out
// application events to subscribers.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/notify"
)

// AlertSource is the persisted alert collection.
type AlertSource interface {
	// Active returns the active alerts for assetID.
	Active(assetID string) []models.Alert
	// Trigger marks the alerts with ids as fired at at, persists the
	// collection once and returns the alerts that changed.
	Trigger(ctx context.Context, ids []string, at time.Time) ([]models.Alert, error)
}

// AlertMonitor checks snapshots against alert conditions. Each alert fires
// at most once over its lifetime.
type AlertMonitor struct {
	source   AlertSource
	queue    *TriggeredQueue
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time

	// Serializes evaluations so concurrent refreshes cannot fire an alert twice
	mu sync.Mutex

	onTrigger func(models.Alert, float64)
	pending   sync.WaitGroup

	// Metrics
	evaluations    int64
	totalTriggered int64
	statsMu        sync.RWMutex
}

// NewAlertMonitor creates a new alert monitor. notifier may be nil.
func NewAlertMonitor(source AlertSource, queue *TriggeredQueue, notifier notify.Notifier, logger zerolog.Logger) *AlertMonitor {
	if queue == nil {
		queue = NewTriggeredQueue(DefaultQueueSize)
	}
	return &AlertMonitor{
		source:   source,
		queue:    queue,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "alerts"),
		now:      time.Now,
	}
}

// SetOnTrigger sets a callback invoked for every fired alert with the price
// that fired it.
func (m *AlertMonitor) SetOnTrigger(fn func(models.Alert, float64)) {
	m.onTrigger = fn
}

// SetClock replaces the time source.
func (m *AlertMonitor) SetClock(now func() time.Time) {
	m.now = now
}

// Queue returns the triggered-alert queue.
func (m *AlertMonitor) Queue() *TriggeredQueue {
	return m.queue
}

// Evaluate fires every active alert for snapshot whose condition holds at
// the snapshot price. Snapshots that are not fresh never fire alerts.
func (m *AlertMonitor) Evaluate(ctx context.Context, snapshot models.Asset) ([]models.Alert, error) {
	if !snapshot.IsFresh() {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsMu.Lock()
	m.evaluations++
	m.statsMu.Unlock()

	var ids []string
	for _, a := range m.source.Active(snapshot.ID) {
		if a.Matches(snapshot.CurrentPrice) {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	fired, err := m.source.Trigger(ctx, ids, m.now())
	if err != nil {
		m.logger.Error().Err(err).Str("asset", snapshot.ID).Msg("Failed to persist triggered alerts")
		return nil, err
	}

	for _, a := range fired {
		m.trigger(ctx, a, snapshot.CurrentPrice)
	}

	m.statsMu.Lock()
	m.totalTriggered += int64(len(fired))
	m.statsMu.Unlock()

	return fired, nil
}

// trigger queues, notifies and reports one fired alert.
func (m *AlertMonitor) trigger(ctx context.Context, alert models.Alert, price float64) {
	logging.LogAlert(m.logger, alert.ID, alert.AssetID, string(alert.Condition), alert.TargetPrice, price)
	m.queue.Push(alert)

	if m.notifier != nil {
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			if err := m.notifier.SendAlert(context.WithoutCancel(ctx), alert, price); err != nil {
				m.logger.Warn().Err(err).Str("alert_id", alert.ID).Msg("Alert notification failed")
			}
		}()
	}

	if m.onTrigger != nil {
		m.onTrigger(alert, price)
	}
}

// Wait blocks until every notification started so far has been delivered.
func (m *AlertMonitor) Wait() {
	m.pending.Wait()
}

// AlertStats contains statistics about alert evaluation.
type AlertStats struct {
	Evaluations    int64
	TotalTriggered int64
	Queued         int
}

// GetStats returns alert statistics.
func (m *AlertMonitor) GetStats() AlertStats {
	m.statsMu.RLock()
	defer m.statsMu.RUnlock()
	return AlertStats{
		Evaluations:    m.evaluations,
		TotalTriggered: m.totalTriggered,
		Queued:         m.queue.Len(),
	}
}
