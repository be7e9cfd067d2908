package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
)

// AlertInput is a new alert request after form parsing.
type AlertInput struct {
	AssetID     string                `validate:"required"`
	AssetName   string                `validate:"required"`
	AssetSymbol string                `validate:"required"`
	TargetPrice float64               `validate:"gt=0"`
	Condition   models.AlertCondition `validate:"oneof=PRICE_DROPS_TO PRICE_RISES_TO"`
}

// alertRecord is the persisted shape of an alert. Times are unix milliseconds.
type alertRecord struct {
	ID           string  `json:"id"`
	CryptoID     string  `json:"cryptoId"`
	CryptoName   string  `json:"cryptoName"`
	CryptoSymbol string  `json:"cryptoSymbol"`
	TargetPrice  float64 `json:"targetPrice"`
	Condition    string  `json:"condition"`
	CreatedAt    int64   `json:"createdAt"`
	IsActive     bool    `json:"isActive"`
	TriggeredAt  *int64  `json:"triggeredAt,omitempty"`
}

func toRecord(a models.Alert) alertRecord {
	r := alertRecord{
		ID:           a.ID,
		CryptoID:     a.AssetID,
		CryptoName:   a.AssetName,
		CryptoSymbol: a.AssetSymbol,
		TargetPrice:  a.TargetPrice,
		Condition:    string(a.Condition),
		CreatedAt:    a.CreatedAt.UnixMilli(),
		IsActive:     a.Active,
	}
	if a.TriggeredAt != nil {
		ms := a.TriggeredAt.UnixMilli()
		r.TriggeredAt = &ms
	}
	return r
}

func (r alertRecord) toAlert() models.Alert {
	a := models.Alert{
		ID:          r.ID,
		AssetID:     r.CryptoID,
		AssetName:   r.CryptoName,
		AssetSymbol: r.CryptoSymbol,
		TargetPrice: r.TargetPrice,
		Condition:   models.AlertCondition(r.Condition),
		CreatedAt:   time.UnixMilli(r.CreatedAt),
		Active:      r.IsActive,
	}
	if r.TriggeredAt != nil {
		t := time.UnixMilli(*r.TriggeredAt)
		a.TriggeredAt = &t
	}
	return a
}

// AlertStore holds the alert collection and rewrites the whole blob under
// AlertsKey on every mutation.
type AlertStore struct {
	kv       KeyValue
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	alerts []models.Alert
}

// NewAlertStore creates an alert store over kv. Call Load before use.
func NewAlertStore(kv KeyValue, logger zerolog.Logger) *AlertStore {
	return &AlertStore{
		kv:       kv,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *AlertStore) SetClock(now func() time.Time) {
	s.now = now
}

// Load reads the persisted collection. A missing blob yields an empty
// collection; a corrupt blob is removed and also yields an empty collection.
func (s *AlertStore) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, AlertsKey)
	if err != nil {
		return err
	}

	var alerts []models.Alert
	if ok {
		var records []alertRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			s.logger.Warn().Err(err).Msg("Discarding unreadable alert collection")
			if derr := s.kv.Delete(ctx, AlertsKey); derr != nil {
				return derr
			}
		} else {
			alerts = make([]models.Alert, 0, len(records))
			for _, r := range records {
				alerts = append(alerts, r.toAlert())
			}
		}
	}

	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
	return nil
}

// All returns a copy of every alert, active or not.
func (s *AlertStore) All() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAlerts(s.alerts)
}

// Active returns the active alerts for assetID.
func (s *AlertStore) Active(assetID string) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Alert
	for _, a := range s.alerts {
		if a.Active && a.AssetID == assetID {
			out = append(out, cloneAlert(a))
		}
	}
	return out
}

// Add validates input, appends a new active alert and persists the collection.
func (s *AlertStore) Add(ctx context.Context, in AlertInput) (models.Alert, error) {
	if err := s.validate.Struct(&in); err != nil {
		return models.Alert{}, validationError(err)
	}

	alert := models.Alert{
		ID:          uuid.NewString(),
		AssetID:     in.AssetID,
		AssetName:   in.AssetName,
		AssetSymbol: in.AssetSymbol,
		TargetPrice: in.TargetPrice,
		Condition:   in.Condition,
		CreatedAt:   s.now(),
		Active:      true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(cloneAlerts(s.alerts), alert)
	if err := s.persist(ctx, next); err != nil {
		return models.Alert{}, err
	}
	s.alerts = next
	return alert, nil
}

// Remove deletes the alert with id. Removing an unknown id is a no-op.
func (s *AlertStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.ID != id {
			next = append(next, a)
		}
	}
	if len(next) == len(s.alerts) {
		return false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.alerts = next
	return true, nil
}

// Trigger marks the listed active alerts inactive at time at and persists
// once. Alerts that are already inactive are skipped. It returns the alerts
// that changed.
func (s *AlertStore) Trigger(ctx context.Context, ids []string, at time.Time) ([]models.Alert, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneAlerts(s.alerts)
	var changed []models.Alert
	for i := range next {
		if want[next[i].ID] && next[i].Active {
			next[i].Trigger(at)
			changed = append(changed, cloneAlert(next[i]))
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.alerts = next
	return changed, nil
}

func (s *AlertStore) persist(ctx context.Context, alerts []models.Alert) error {
	records := make([]alertRecord, 0, len(alerts))
	for _, a := range alerts {
		records = append(records, toRecord(a))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return apperrors.Wrap(err, "encode alerts")
	}
	return s.kv.Set(ctx, AlertsKey, string(data))
}

func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperrors.NewValidationError("", "errors.invalidAlert")
	}
	field := verrs[0].Field()
	if field == "TargetPrice" {
		return apperrors.NewValidationError(field, "setAlertModal.errorInvalidPrice")
	}
	return apperrors.NewValidationError(field, "errors.invalidAlert")
}

func cloneAlert(a models.Alert) models.Alert {
	if a.TriggeredAt != nil {
		t := *a.TriggeredAt
		a.TriggeredAt = &t
	}
	return a
}

func cloneAlerts(in []models.Alert) []models.Alert {
	out := make([]models.Alert, len(in))
	for i, a := range in {
		out[i] = cloneAlert(a)
	}
	return out
}
