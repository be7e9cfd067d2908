// Package orchestrator owns the application state and coordinates market
// data, advice, alerts, search and the rate-limit cooldown.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/i18n"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/resilience"
	"crypto-advisor/internal/store"
	"crypto-advisor/internal/stream"
)

// MarketData is the price data source.
type MarketData interface {
	Suggestions(ctx context.Context, q string) ([]models.SearchResult, error)
	SearchBest(ctx context.Context, q string) (*models.SearchResult, error)
	FetchDetail(ctx context.Context, asset models.Asset) (models.Asset, error)
}

// AdviceSource produces commentary and sentiment analysis. Results never
// carry errors; failures come back as informational content.
type AdviceSource interface {
	Available() bool
	GetAdvice(ctx context.Context, asset models.Asset) models.Advice
	AnalyzeSocialPosts(ctx context.Context, assetName string, posts []models.SocialPost) models.SocialAnalysis
}

// PostFetcher loads social posts by URL.
type PostFetcher interface {
	FetchAll(ctx context.Context, urls []string) []models.SocialPost
}

// LocaleStore switches and persists the display language.
type LocaleStore interface {
	Locale() i18n.Locale
	SetLocale(ctx context.Context, locale i18n.Locale) error
}

// Config holds the orchestrator timings.
type Config struct {
	DataRefreshInterval   time.Duration
	AdviceRefreshInterval time.Duration
	DebounceQuietPeriod   time.Duration
}

// DefaultConfig returns the default timings.
func DefaultConfig() Config {
	return Config{
		DataRefreshInterval:   7 * time.Minute,
		AdviceRefreshInterval: 2 * time.Hour,
		DebounceQuietPeriod:   700 * time.Millisecond,
	}
}

// Deps are the collaborators of an Orchestrator. Fetcher, Hub and Locales
// may be nil.
type Deps struct {
	Market   MarketData
	Advisor  AdviceSource
	Fetcher  PostFetcher
	Alerts   *store.AlertStore
	Monitor  *stream.AlertMonitor
	Cooldown *resilience.Cooldown
	Hub      *stream.Hub
	Locales  LocaleStore
}

// Orchestrator is the single owner of State. Reads go through State and
// Subscribe; every change goes through one of its methods. Network calls
// are made without holding the state lock.
type Orchestrator struct {
	cfg      Config
	market   MarketData
	advisor  AdviceSource
	fetcher  PostFetcher
	alerts   *store.AlertStore
	monitor  *stream.AlertMonitor
	cooldown *resilience.Cooldown
	hub      *stream.Hub
	locales  LocaleStore
	logger   zerolog.Logger
	now      func() time.Time

	debounce *Debouncer

	mu        sync.RWMutex
	state     State
	searchSeq uint64
	ctx       context.Context
}

// New creates an orchestrator and registers its cooldown and alert hooks.
func New(cfg Config, deps Deps, logger zerolog.Logger) *Orchestrator {
	def := DefaultConfig()
	if cfg.DataRefreshInterval <= 0 {
		cfg.DataRefreshInterval = def.DataRefreshInterval
	}
	if cfg.AdviceRefreshInterval <= 0 {
		cfg.AdviceRefreshInterval = def.AdviceRefreshInterval
	}
	if cfg.DebounceQuietPeriod <= 0 {
		cfg.DebounceQuietPeriod = def.DebounceQuietPeriod
	}
	if deps.Cooldown == nil {
		deps.Cooldown = resilience.NewCooldown(resilience.DefaultCooldownConfig(), logger)
	}

	o := &Orchestrator{
		cfg:      cfg,
		market:   deps.Market,
		advisor:  deps.Advisor,
		fetcher:  deps.Fetcher,
		alerts:   deps.Alerts,
		monitor:  deps.Monitor,
		cooldown: deps.Cooldown,
		hub:      deps.Hub,
		locales:  deps.Locales,
		logger:   logging.WithComponent(logger, "orchestrator"),
		now:      time.Now,
		debounce: NewDebouncer(cfg.DebounceQuietPeriod),
		state:    newState(),
		ctx:      context.Background(),
	}

	o.state.AIAvailable = o.advisor != nil && o.advisor.Available()
	if !o.state.AIAvailable {
		o.state.GlobalError = apperrors.New(apperrors.KindBackendUnavailable, "app.geminiApiKeyError", nil)
	}
	if o.locales != nil {
		o.state.Locale = string(o.locales.Locale())
	}

	o.cooldown.OnActivate(o.onCooldownActivated)
	o.cooldown.OnExpire(o.onCooldownExpired)
	if o.monitor != nil {
		o.monitor.SetOnTrigger(func(a models.Alert, price float64) {
			o.publish(stream.EventAlertTriggered, a.AssetID, a)
		})
	}
	return o
}

// SetClock replaces the time source.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// Cooldown returns the shared rate-limit gate.
func (o *Orchestrator) Cooldown() *resilience.Cooldown {
	return o.cooldown
}

// State returns a deep copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	s := o.state.clone()
	o.mu.RUnlock()

	if o.alerts != nil {
		s.Alerts = o.alerts.All()
	}
	if o.monitor != nil {
		s.Triggered = o.monitor.Queue().Items()
	}
	s.Cooldown = o.cooldown.Status()
	if !s.Cooldown.Active {
		// The gate reopens before the expiry hook clears these.
		if s.GlobalError != nil && s.GlobalError.Kind == apperrors.KindRateLimited {
			s.GlobalError = nil
		}
		if s.Search.Error != nil && s.Search.Error.Kind == apperrors.KindRateLimited {
			s.Search.Error = nil
		}
	}
	return s
}

// Subscribe registers for change events. The channel closes on Unsubscribe.
func (o *Orchestrator) Subscribe() (string, <-chan stream.Event) {
	if o.hub == nil {
		ch := make(chan stream.Event)
		close(ch)
		return "", ch
	}
	return o.hub.Subscribe()
}

// Unsubscribe removes a subscription made with Subscribe.
func (o *Orchestrator) Unsubscribe(id string) {
	if o.hub != nil && id != "" {
		o.hub.Unsubscribe(id)
	}
}

func (o *Orchestrator) publish(t stream.EventType, assetID string, payload any) {
	if o.hub == nil {
		return
	}
	o.hub.Publish(stream.Event{Type: t, AssetID: assetID, Payload: payload})
}

func (o *Orchestrator) changed() {
	o.publish(stream.EventStateChanged, "", nil)
}

// onCooldownActivated runs outside the gate's lock and never while o.mu is
// held by the caller of Activate.
func (o *Orchestrator) onCooldownActivated(st resilience.CooldownStatus) {
	o.mu.Lock()
	o.state.GlobalError = st.Notice
	o.state.Search.Suggestions = nil
	o.state.Search.Show = false
	o.state.Search.Loading = false
	o.mu.Unlock()
	o.publish(stream.EventCooldown, "", st)
}

func (o *Orchestrator) onCooldownExpired() {
	o.mu.Lock()
	o.state.GlobalError = nil
	o.state.Search.Error = nil
	o.mu.Unlock()
	o.publish(stream.EventCooldown, "", o.cooldown.Status())
}

func (o *Orchestrator) setGlobalError(err *apperrors.Error) {
	o.mu.Lock()
	o.state.GlobalError = err
	o.mu.Unlock()
	o.publish(stream.EventError, "", err)
}

// ClearGlobalError dismisses the current user-facing error.
func (o *Orchestrator) ClearGlobalError() {
	o.mu.Lock()
	o.state.GlobalError = nil
	o.mu.Unlock()
	o.changed()
}

// rateLimited activates the cooldown when err is a rate-limit signal and
// reports whether it was.
func (o *Orchestrator) rateLimited(err error) bool {
	if !apperrors.Is(err, apperrors.ErrRateLimited) {
		return false
	}
	o.cooldown.Activate(apperrors.AsTagged(err))
	return true
}

// SelectAsset makes candidate the selected asset, refreshes it and asks for
// manual advice on the fresh snapshot.
func (o *Orchestrator) SelectAsset(ctx context.Context, candidate models.SearchResult) error {
	if err := o.cooldown.Allow(); err != nil {
		o.setGlobalError(apperrors.AsTagged(err))
		return err
	}

	id := candidate.ID
	o.debounce.Cancel()
	o.mu.Lock()
	o.searchSeq++
	o.state.Search.Query = ""
	o.state.Search.DebouncedQuery = ""
	o.state.Search.Suggestions = nil
	o.state.Search.Show = false
	o.state.Search.Loading = false
	o.state.Selected = &id
	o.state.Advice = nil
	o.mu.Unlock()
	o.changed()

	snap, err := o.RefreshAsset(ctx, id, candidate.Symbol, candidate.Name)
	switch {
	case err == nil && snap != nil:
		o.RequestAdvice(ctx, *snap, true)
		return nil
	case apperrors.Is(err, apperrors.ErrRateLimited), apperrors.Is(err, apperrors.ErrRefreshInFlight):
		return err
	case apperrors.Is(err, apperrors.ErrPartialData):
		if !o.aiAvailable() {
			o.RequestAdvice(ctx, models.BaselineAsset(id, candidate.Symbol, candidate.Name), true)
		}
		return err
	default:
		name := candidate.Name
		if name == "" {
			name = id
		}
		o.setGlobalError(apperrors.New(apperrors.KindInternal, "app.processCryptoError", map[string]any{"cryptoName": name}))
		return err
	}
}

func (o *Orchestrator) aiAvailable() bool {
	return o.advisor != nil && o.advisor.Available()
}

// RefreshAsset fetches the latest snapshot for id. It returns the fresh
// snapshot, or a PartialData error when only the baseline could be kept.
// While cooling, or while another refresh of id is in flight, it returns the
// cached snapshot without fetching.
func (o *Orchestrator) RefreshAsset(ctx context.Context, id, symbolHint, nameHint string) (*models.Asset, error) {
	log := logging.WithAsset(o.logger, id)

	if err := o.cooldown.Allow(); err != nil {
		log.Warn().Msg("Refresh skipped, rate limit cooldown active")
		o.mu.Lock()
		o.state.GlobalError = apperrors.AsTagged(err)
		cached := o.cachedLocked(id)
		o.mu.Unlock()
		o.changed()
		return cached, err
	}

	o.mu.Lock()
	if o.state.LoadingData[id] {
		cached := o.cachedLocked(id)
		o.mu.Unlock()
		return cached, apperrors.New(apperrors.KindInFlight, "errors.refreshInFlight", nil)
	}
	base, ok := o.state.Assets[id]
	if !ok {
		base = models.BaselineAsset(id, symbolHint, nameHint)
	}
	base = base.Clone()
	o.state.LoadingData[id] = true
	o.mu.Unlock()
	o.changed()

	defer func() {
		o.mu.Lock()
		delete(o.state.LoadingData, id)
		o.mu.Unlock()
		o.changed()
	}()

	req := base.Clone()
	req.LastUpdated = nil
	updated, err := o.market.FetchDetail(ctx, req)
	if err != nil {
		if o.rateLimited(err) {
			log.Warn().Msg("Rate limited while refreshing")
			o.mu.RLock()
			cached := o.cachedLocked(id)
			o.mu.RUnlock()
			return cached, err
		}
		log.Error().Err(err).Msg("Refresh failed")
		return nil, err
	}

	if !updated.IsFresh() {
		if updated.Name != "" {
			base.Name = updated.Name
		}
		if updated.Symbol != "" {
			base.Symbol = updated.Symbol
		}
		o.mu.Lock()
		o.state.Assets[id] = base
		o.mu.Unlock()
		log.Warn().Msg("Only partial market data available")
		return nil, apperrors.New(apperrors.KindPartialData, "errors.partialData", map[string]any{"cryptoName": base.Name})
	}

	o.mu.Lock()
	o.state.Assets[id] = updated.Clone()
	o.mu.Unlock()
	o.publish(stream.EventAssetUpdated, id, updated.Clone())

	o.EvaluateAlerts(ctx, updated)
	return &updated, nil
}

func (o *Orchestrator) cachedLocked(id string) *models.Asset {
	a, ok := o.state.Assets[id]
	if !ok {
		return nil
	}
	cp := a.Clone()
	return &cp
}

// EvaluateAlerts fires the active alerts whose condition holds at the
// snapshot price. Only fresh snapshots are considered.
func (o *Orchestrator) EvaluateAlerts(ctx context.Context, snapshot models.Asset) []models.Alert {
	if o.monitor == nil || !snapshot.IsFresh() {
		return nil
	}
	fired, err := o.monitor.Evaluate(ctx, snapshot)
	if err != nil {
		o.logger.Error().Err(err).Str("asset", snapshot.ID).Msg("Alert evaluation failed")
		return nil
	}
	if len(fired) > 0 {
		o.changed()
	}
	return fired
}

// RequestAdvice produces advice for snapshot and stores it as the latest
// advice. Without an AI backend, or without fresh data, an informational
// advice is stored and no request is made.
func (o *Orchestrator) RequestAdvice(ctx context.Context, snapshot models.Asset, isManual bool) models.Advice {
	log := logging.WithAsset(o.logger, snapshot.ID)

	if !o.aiAvailable() {
		detail := models.KeyText("app.geminiApiKeyError", nil)
		adv := o.infoAdvice(snapshot, models.KeyText("services.gemini.adviceUnavailable", nil))
		adv.Detail = &detail
		o.storeAdvice(log, adv, isManual)
		return adv
	}

	if !snapshot.IsFresh() || !snapshot.HasHistory() {
		adv := o.infoAdvice(snapshot, models.KeyText("services.gemini.adviceNoData", map[string]any{"cryptoName": snapshot.Name}))
		o.storeAdvice(log, adv, isManual)
		return adv
	}

	o.mu.Lock()
	o.state.LoadingAdvice[snapshot.ID] = true
	o.mu.Unlock()
	o.changed()

	adv := o.advisor.GetAdvice(ctx, snapshot)

	o.mu.Lock()
	delete(o.state.LoadingAdvice, snapshot.ID)
	o.mu.Unlock()
	o.storeAdvice(log, adv, isManual)
	return adv
}

func (o *Orchestrator) infoAdvice(snapshot models.Asset, msg models.Text) models.Advice {
	return models.Advice{
		ID:        uuid.NewString(),
		Asset:     snapshot.Clone(),
		Type:      models.AdviceInfo,
		Message:   msg,
		CreatedAt: o.now(),
	}
}

func (o *Orchestrator) storeAdvice(log zerolog.Logger, adv models.Advice, isManual bool) {
	o.mu.Lock()
	stored := adv
	o.state.Advice = &stored
	o.mu.Unlock()

	logging.LogAdvice(log, adv.Asset.ID, string(adv.Type), isManual)
	o.publish(stream.EventAdviceReady, adv.Asset.ID, adv)
}

// AddAlert creates an alert for the selected asset. The target must be
// positive, below the current price for drops and above it for rises.
func (o *Orchestrator) AddAlert(ctx context.Context, target float64, condition models.AlertCondition) (models.Alert, error) {
	o.mu.RLock()
	asset, ok := o.state.SelectedAsset()
	o.mu.RUnlock()
	if !ok {
		return models.Alert{}, apperrors.NewValidationError("selection", "errors.noSelection")
	}

	if target <= 0 {
		return models.Alert{}, apperrors.NewValidationError("targetPrice", "setAlertModal.errorInvalidPrice")
	}
	switch condition {
	case models.AlertPriceDropsTo:
		if target >= asset.CurrentPrice {
			return models.Alert{}, apperrors.NewValidationError("targetPrice", "setAlertModal.errorDropPriceHigher")
		}
	case models.AlertPriceRisesTo:
		if target <= asset.CurrentPrice {
			return models.Alert{}, apperrors.NewValidationError("targetPrice", "setAlertModal.errorRisePriceLower")
		}
	}

	alert, err := o.alerts.Add(ctx, store.AlertInput{
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		AssetSymbol: asset.Symbol,
		TargetPrice: target,
		Condition:   condition,
	})
	if err != nil {
		return models.Alert{}, err
	}
	o.logger.Info().
		Str("alert_id", alert.ID).
		Str("asset", alert.AssetID).
		Str("condition", string(alert.Condition)).
		Float64("target", alert.TargetPrice).
		Msg("Alert created")
	o.changed()
	return alert, nil
}

// RemoveAlert deletes an alert. Unknown ids are ignored.
func (o *Orchestrator) RemoveAlert(ctx context.Context, id string) (bool, error) {
	removed, err := o.alerts.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		o.changed()
	}
	return removed, nil
}

// ActiveAlerts returns every alert that has not fired yet.
func (o *Orchestrator) ActiveAlerts() []models.Alert {
	var out []models.Alert
	for _, a := range o.alerts.All() {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

// DismissTriggered removes a fired alert from the notification queue.
func (o *Orchestrator) DismissTriggered(id string) bool {
	if o.monitor == nil {
		return false
	}
	if !o.monitor.Queue().Dismiss(id) {
		return false
	}
	o.changed()
	return true
}

// SetView switches the active screen.
func (o *Orchestrator) SetView(view models.View) error {
	if !view.Valid() {
		return apperrors.NewValidationError("view", "errors.invalidInput")
	}
	o.mu.Lock()
	o.state.View = view
	o.mu.Unlock()
	o.changed()
	return nil
}

// SetLanguage switches and persists the display language.
func (o *Orchestrator) SetLanguage(ctx context.Context, lang string) error {
	locale, ok := i18n.ParseLocale(lang)
	if !ok {
		return apperrors.NewValidationError("locale", "errors.invalidLocale")
	}
	if o.locales != nil {
		if err := o.locales.SetLocale(ctx, locale); err != nil {
			return err
		}
	}
	o.mu.Lock()
	o.state.Locale = string(locale)
	o.mu.Unlock()
	o.changed()
	return nil
}
