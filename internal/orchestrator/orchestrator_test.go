package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/i18n"
	"crypto-advisor/internal/market"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/resilience"
	"crypto-advisor/internal/store"
	"crypto-advisor/internal/stream"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMarket struct {
	mu sync.Mutex

	price       float64
	detailErr   error
	partial     bool
	block       chan struct{}
	suggestions []models.SearchResult
	suggestErr  error
	best        *models.SearchResult

	detailCalls  int
	suggestCalls int
	bestCalls    int
	queries      []string
}

func (m *fakeMarket) Suggestions(_ context.Context, q string) ([]models.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestCalls++
	m.queries = append(m.queries, q)
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	return append([]models.SearchResult(nil), m.suggestions...), nil
}

func (m *fakeMarket) SearchBest(_ context.Context, q string) (*models.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bestCalls++
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	return m.best, nil
}

func (m *fakeMarket) FetchDetail(_ context.Context, asset models.Asset) (models.Asset, error) {
	m.mu.Lock()
	m.detailCalls++
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detailErr != nil {
		return asset, m.detailErr
	}
	if m.partial {
		asset.Name = "Bitcoin"
		return asset, nil
	}
	now := time.Now()
	asset.Name = "Bitcoin"
	asset.Symbol = "BTC"
	asset.CurrentPrice = m.price
	asset.PriceHistory = []models.PricePoint{{Timestamp: now.Unix() - 86400, Price: m.price * 0.98}, {Timestamp: now.Unix(), Price: m.price}}
	asset.LastUpdated = &now
	return asset, nil
}

func (m *fakeMarket) setPrice(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.price = p
}

func (m *fakeMarket) counts() (detail, suggest, best int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailCalls, m.suggestCalls, m.bestCalls
}

type fakeAdvisor struct {
	mu          sync.Mutex
	available   bool
	adviceCalls int
	socialCalls int
	posts       []models.SocialPost
}

func (a *fakeAdvisor) Available() bool { return a.available }

func (a *fakeAdvisor) GetAdvice(_ context.Context, asset models.Asset) models.Advice {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.adviceCalls++
	return models.Advice{ID: "adv", Asset: asset, Type: models.AdviceHold, Message: models.LiteralText("Hold steady."), CreatedAt: time.Now()}
}

func (a *fakeAdvisor) AnalyzeSocialPosts(_ context.Context, _ string, posts []models.SocialPost) models.SocialAnalysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.socialCalls++
	a.posts = posts
	return models.SocialAnalysis{Sentiment: models.SentimentPositive, Summary: models.LiteralText("Bullish.")}
}

func (a *fakeAdvisor) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.adviceCalls
}

type fakeFetcher struct {
	posts []models.SocialPost
	urls  []string
}

func (f *fakeFetcher) FetchAll(_ context.Context, urls []string) []models.SocialPost {
	f.urls = urls
	return f.posts
}

type harness struct {
	o        *Orchestrator
	market   *fakeMarket
	advisor  *fakeAdvisor
	fetcher  *fakeFetcher
	kv       *store.MemoryStore
	alerts   *store.AlertStore
	monitor  *stream.AlertMonitor
	cooldown *resilience.Cooldown
	clock    *fakeClock
}

func newHarness(t *testing.T, aiAvailable bool) *harness {
	t.Helper()
	logger := zerolog.Nop()

	h := &harness{
		market:  &fakeMarket{price: 50000},
		advisor: &fakeAdvisor{available: aiAvailable},
		fetcher: &fakeFetcher{},
		kv:      store.NewMemoryStore(),
		clock:   &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.alerts = store.NewAlertStore(h.kv, logger)
	require.NoError(t, h.alerts.Load(context.Background()))
	h.monitor = stream.NewAlertMonitor(h.alerts, stream.NewTriggeredQueue(stream.DefaultQueueSize), nil, logger)
	h.cooldown = resilience.NewCooldown(resilience.DefaultCooldownConfig(), logger)
	h.cooldown.SetClock(h.clock.Now)

	h.o = New(Config{DebounceQuietPeriod: 20 * time.Millisecond}, Deps{
		Market:   h.market,
		Advisor:  h.advisor,
		Fetcher:  h.fetcher,
		Alerts:   h.alerts,
		Monitor:  h.monitor,
		Cooldown: h.cooldown,
		Locales:  i18n.NewTranslator(h.kv, logger),
	}, logger)
	return h
}

var bitcoin = models.SearchResult{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"}

func TestBitcoinDropScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	require.NoError(t, h.o.SelectAsset(ctx, bitcoin))
	_, err := h.o.AddAlert(ctx, 49000, models.AlertPriceDropsTo)
	require.NoError(t, err)
	writes := h.kv.Writes(store.AlertsKey)

	h.market.setPrice(48500)
	snap, err := h.o.RefreshAsset(ctx, "bitcoin", "BTC", "Bitcoin")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 48500.0, snap.CurrentPrice)

	st := h.o.State()
	require.Len(t, st.Triggered, 1)
	assert.Equal(t, "bitcoin", st.Triggered[0].AssetID)
	require.Len(t, st.Alerts, 1)
	assert.False(t, st.Alerts[0].Active)
	assert.NotNil(t, st.Alerts[0].TriggeredAt)
	assert.Equal(t, writes+1, h.kv.Writes(store.AlertsKey))
	assert.Empty(t, h.o.ActiveAlerts())

	h.market.setPrice(47000)
	_, err = h.o.RefreshAsset(ctx, "bitcoin", "BTC", "Bitcoin")
	require.NoError(t, err)
	assert.Len(t, h.o.State().Triggered, 1)
	assert.Equal(t, writes+1, h.kv.Writes(store.AlertsKey))

	id := st.Triggered[0].ID
	assert.True(t, h.o.DismissTriggered(id))
	assert.False(t, h.o.DismissTriggered(id))
	assert.Empty(t, h.o.State().Triggered)
}

func TestSelectAssetRequestsManualAdvice(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.o.SelectAsset(context.Background(), bitcoin))

	st := h.o.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "bitcoin", *st.Selected)
	require.NotNil(t, st.Advice)
	assert.Equal(t, models.AdviceHold, st.Advice.Type)
	assert.Equal(t, 1, h.advisor.calls())
	detail, _, _ := h.market.counts()
	assert.Equal(t, 1, detail)
	assert.Empty(t, st.LoadingData)
	assert.Empty(t, st.LoadingAdvice)
}

func TestAdviceBackendUnavailable(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.o.SelectAsset(context.Background(), bitcoin))

	st := h.o.State()
	require.NotNil(t, st.Advice)
	assert.Equal(t, models.AdviceInfo, st.Advice.Type)
	assert.Equal(t, "services.gemini.adviceUnavailable", st.Advice.Message.Key)
	require.NotNil(t, st.Advice.Detail)
	assert.Equal(t, "app.geminiApiKeyError", st.Advice.Detail.Key)
	assert.Equal(t, 0, h.advisor.calls())
	assert.False(t, st.AIAvailable)
}

func TestAdviceUnavailableOnPartialData(t *testing.T) {
	h := newHarness(t, false)
	h.market.partial = true

	err := h.o.SelectAsset(context.Background(), bitcoin)
	require.ErrorIs(t, err, apperrors.ErrPartialData)

	st := h.o.State()
	require.NotNil(t, st.Advice)
	assert.Equal(t, "services.gemini.adviceUnavailable", st.Advice.Message.Key)
	assert.Equal(t, "bitcoin", st.Advice.Asset.ID)
	assert.Equal(t, 0, h.advisor.calls())
}

func TestRequestAdviceWithoutFreshData(t *testing.T) {
	h := newHarness(t, true)
	adv := h.o.RequestAdvice(context.Background(), models.BaselineAsset("bitcoin", "BTC", "Bitcoin"), true)

	assert.Equal(t, models.AdviceInfo, adv.Type)
	assert.Equal(t, "services.gemini.adviceNoData", adv.Message.Key)
	assert.Equal(t, "Bitcoin", adv.Message.Params["cryptoName"])
	assert.Equal(t, 0, h.advisor.calls())
}

func TestRefreshPartialDataKeepsBaseline(t *testing.T) {
	h := newHarness(t, true)
	h.market.partial = true

	snap, err := h.o.RefreshAsset(context.Background(), "dogecoin", "doge", "")
	require.ErrorIs(t, err, apperrors.ErrPartialData)
	assert.Nil(t, snap)

	cached := h.o.State().Assets["dogecoin"]
	assert.Equal(t, "Bitcoin", cached.Name)
	assert.Equal(t, "DOGE", cached.Symbol)
	assert.Equal(t, "DOGEUSD", cached.ChartSymbol)
	assert.Zero(t, cached.CurrentPrice)
	assert.False(t, cached.IsFresh())
}

func TestRefreshInFlightGuard(t *testing.T) {
	h := newHarness(t, true)
	h.market.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.o.RefreshAsset(context.Background(), "bitcoin", "BTC", "Bitcoin")
		done <- err
	}()

	require.Eventually(t, func() bool { return h.o.State().LoadingData["bitcoin"] }, time.Second, 5*time.Millisecond)

	_, err := h.o.RefreshAsset(context.Background(), "bitcoin", "BTC", "Bitcoin")
	require.ErrorIs(t, err, apperrors.ErrRefreshInFlight)

	close(h.market.block)
	require.NoError(t, <-done)
	detail, _, _ := h.market.counts()
	assert.Equal(t, 1, detail)
	assert.False(t, h.o.State().LoadingData["bitcoin"])
}

func TestDetailRateLimitCountdown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.market.detailErr = apperrors.NewRateLimited(market.OpDetails, "app.rateLimitActiveError", map[string]any{"cryptoName": "Bitcoin"})

	_, err := h.o.RefreshAsset(ctx, "bitcoin", "BTC", "Bitcoin")
	require.ErrorIs(t, err, apperrors.ErrRateLimited)

	st := h.o.State()
	assert.True(t, st.Cooldown.Active)
	assert.Equal(t, 90, st.Cooldown.RemainingSeconds)
	require.NotNil(t, st.GlobalError)
	assert.Equal(t, "app.rateLimitActiveError", st.GlobalError.Key)

	for want := 89; want >= 1; want-- {
		h.clock.Advance(time.Second)
		h.cooldown.Tick()
		require.Equal(t, want, h.o.State().Cooldown.RemainingSeconds)

		_, err := h.o.RefreshAsset(ctx, "bitcoin", "BTC", "Bitcoin")
		require.ErrorIs(t, err, apperrors.ErrRateLimited)
	}
	detail, _, _ := h.market.counts()
	assert.Equal(t, 1, detail)

	h.clock.Advance(time.Second)
	assert.True(t, h.cooldown.Tick())

	st = h.o.State()
	assert.False(t, st.Cooldown.Active)
	assert.Zero(t, st.Cooldown.RemainingSeconds)
	assert.Nil(t, st.Cooldown.Notice)
	assert.Nil(t, st.GlobalError)
}

func TestSelectAssetRejectedWhileCooling(t *testing.T) {
	h := newHarness(t, true)
	h.cooldown.Activate(nil)

	err := h.o.SelectAsset(context.Background(), bitcoin)
	require.ErrorIs(t, err, apperrors.ErrRateLimited)

	st := h.o.State()
	assert.Nil(t, st.Selected)
	require.NotNil(t, st.GlobalError)
	assert.Equal(t, "app.rateLimitActiveGeneral", st.GlobalError.Key)
	detail, _, _ := h.market.counts()
	assert.Zero(t, detail)
}

func TestCooldownRejectsEveryComponentUntilExpiry(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.market.best = &bitcoin
	h.cooldown.Activate(nil)

	_, err := h.o.RefreshAsset(ctx, "bitcoin", "BTC", "Bitcoin")
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	_, err = h.o.SearchBest(ctx, "bitcoin")
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	h.o.applyDebouncedQuery(ctx, "bitcoin")
	assert.Equal(t, "app.searchPausedRateLimit", h.o.State().Search.Error.Key)

	detail, suggest, best := h.market.counts()
	assert.Zero(t, detail+suggest+best)

	h.clock.Advance(90 * time.Second)
	h.cooldown.Tick()
	assert.Nil(t, h.o.State().Search.Error)

	_, err = h.o.SearchBest(ctx, "bitcoin")
	require.NoError(t, err)
	_, _, best = h.market.counts()
	assert.Equal(t, 1, best)
}

func TestAddAlertValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	_, err := h.o.AddAlert(ctx, 100, models.AlertPriceDropsTo)
	require.Error(t, err)
	assert.Equal(t, "errors.noSelection", apperrors.AsTagged(err).Key)

	require.NoError(t, h.o.SelectAsset(ctx, bitcoin))

	tests := []struct {
		name      string
		target    float64
		condition models.AlertCondition
		wantKey   string
	}{
		{"zero target", 0, models.AlertPriceDropsTo, "setAlertModal.errorInvalidPrice"},
		{"negative target", -5, models.AlertPriceRisesTo, "setAlertModal.errorInvalidPrice"},
		{"drop above price", 51000, models.AlertPriceDropsTo, "setAlertModal.errorDropPriceHigher"},
		{"drop at price", 50000, models.AlertPriceDropsTo, "setAlertModal.errorDropPriceHigher"},
		{"rise below price", 40000, models.AlertPriceRisesTo, "setAlertModal.errorRisePriceLower"},
		{"rise at price", 50000, models.AlertPriceRisesTo, "setAlertModal.errorRisePriceLower"},
		{"valid drop", 45000, models.AlertPriceDropsTo, ""},
		{"valid rise", 55000, models.AlertPriceRisesTo, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, err := h.o.AddAlert(ctx, tt.target, tt.condition)
			if tt.wantKey == "" {
				require.NoError(t, err)
				assert.True(t, alert.Active)
				assert.Equal(t, "BTC", alert.AssetSymbol)
				return
			}
			require.Error(t, err)
			te := apperrors.AsTagged(err)
			assert.Equal(t, apperrors.KindValidation, te.Kind)
			assert.Equal(t, tt.wantKey, te.Key)
		})
	}

	assert.Len(t, h.o.ActiveAlerts(), 2)
	removed, err := h.o.RemoveAlert(ctx, h.o.ActiveAlerts()[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = h.o.RemoveAlert(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, h.o.ActiveAlerts(), 1)
}

func TestSetViewAndLanguage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	require.NoError(t, h.o.SetView(models.ViewSocialAnalysis))
	assert.Equal(t, models.ViewSocialAnalysis, h.o.State().View)
	assert.Error(t, h.o.SetView("SETTINGS"))

	require.NoError(t, h.o.SetLanguage(ctx, "en"))
	assert.Equal(t, "en", h.o.State().Locale)
	stored, ok, err := h.kv.Get(ctx, store.LanguageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "en", stored)

	err = h.o.SetLanguage(ctx, "fr")
	require.Error(t, err)
	assert.Equal(t, "errors.invalidLocale", apperrors.AsTagged(err).Key)
	assert.Equal(t, "en", h.o.State().Locale)
}

func TestStateIsACopy(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.o.SelectAsset(context.Background(), bitcoin))

	st := h.o.State()
	*st.Selected = "ethereum"
	a := st.Assets["bitcoin"]
	a.PriceHistory[0].Price = -1
	delete(st.Assets, "bitcoin")

	fresh := h.o.State()
	assert.Equal(t, "bitcoin", *fresh.Selected)
	require.Contains(t, fresh.Assets, "bitcoin")
	assert.Positive(t, fresh.Assets["bitcoin"].PriceHistory[0].Price)
}

func TestEventsPublished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, true)
	hub := stream.NewHub()
	hub.Start(ctx)
	defer hub.Stop()
	h.o.hub = hub

	_, events := h.o.Subscribe()
	require.NoError(t, h.o.SelectAsset(ctx, bitcoin))

	seen := map[stream.EventType]bool{}
	timeout := time.After(2 * time.Second)
	for !(seen[stream.EventAssetUpdated] && seen[stream.EventAdviceReady]) {
		select {
		case e := <-events:
			seen[e.Type] = true
		case <-timeout:
			t.Fatalf("missing events, saw %v", seen)
		}
	}
}

func TestStateNeverShowsNoticeAfterGateReopens(t *testing.T) {
	logger := zerolog.Nop()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cooldown := resilience.NewCooldown(resilience.DefaultCooldownConfig(), logger)
	cooldown.SetClock(clock.Now)

	var o *Orchestrator
	var between State
	// Registered before New, so it runs before the orchestrator's own hook.
	cooldown.OnExpire(func() { between = o.State() })

	kv := store.NewMemoryStore()
	alerts := store.NewAlertStore(kv, logger)
	require.NoError(t, alerts.Load(context.Background()))
	o = New(Config{}, Deps{Market: &fakeMarket{price: 50000}, Alerts: alerts, Cooldown: cooldown}, logger)

	cooldown.Activate(nil)
	o.mu.Lock()
	o.state.Search.Error = apperrors.New(apperrors.KindRateLimited, "app.searchPausedRateLimit", nil)
	o.mu.Unlock()

	st := o.State()
	require.True(t, st.Cooldown.Active)
	require.NotNil(t, st.GlobalError)
	require.NotNil(t, st.Search.Error)

	clock.Advance(91 * time.Second)
	require.True(t, cooldown.Tick())

	assert.False(t, between.Cooldown.Active)
	assert.Nil(t, between.GlobalError)
	assert.Nil(t, between.Search.Error)

	st = o.State()
	assert.Nil(t, st.GlobalError)
	assert.Nil(t, st.Search.Error)
}
