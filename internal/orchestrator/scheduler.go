package orchestrator

import (
	"context"
	"sync"
	"time"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/resilience"
	"crypto-advisor/internal/stream"
)

// Start runs the background data refresh, advice refresh and cooldown
// countdown until ctx is cancelled. Debounced searches started after Start
// carry ctx.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	o.ctx = ctx
	o.mu.Unlock()

	o.logger.Info().
		Dur("data_interval", o.cfg.DataRefreshInterval).
		Dur("advice_interval", o.cfg.AdviceRefreshInterval).
		Msg("Background scheduling started")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		o.cooldown.Run(ctx, func(st resilience.CooldownStatus) {
			o.publish(stream.EventCooldown, "", st)
		})
	}()
	go func() {
		defer wg.Done()
		o.every(ctx, o.cfg.DataRefreshInterval, o.dataTick)
	}()
	go func() {
		defer wg.Done()
		o.every(ctx, o.cfg.AdviceRefreshInterval, o.adviceTick)
	}()
	wg.Wait()

	o.debounce.Cancel()
	o.logger.Info().Msg("Background scheduling stopped")
}

func (o *Orchestrator) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// dataTick refreshes the selected asset. The whole cycle is skipped while
// cooling or when a refresh is already running.
func (o *Orchestrator) dataTick(ctx context.Context) {
	if o.cooldown.Active() {
		o.logger.Debug().Msg("Cooldown active, skipping data refresh cycle")
		return
	}

	o.mu.RLock()
	snap, ok := o.state.SelectedAsset()
	busy := ok && o.state.LoadingData[snap.ID]
	o.mu.RUnlock()
	if !ok || busy {
		return
	}

	_, err := o.RefreshAsset(ctx, snap.ID, snap.Symbol, snap.Name)
	switch {
	case err == nil,
		apperrors.Is(err, apperrors.ErrRateLimited),
		apperrors.Is(err, apperrors.ErrPartialData),
		apperrors.Is(err, apperrors.ErrRefreshInFlight):
		return
	}
	name := snap.Name
	if name == "" {
		name = snap.ID
	}
	o.logger.Warn().Err(err).Str("asset", snap.ID).Msg("Periodic refresh failed")
	o.setGlobalError(apperrors.New(apperrors.KindInternal, "app.updateDataError", map[string]any{"cryptoName": name}))
}

// adviceTick renews the advice for the selected asset while the analysis
// view is open.
func (o *Orchestrator) adviceTick(ctx context.Context) {
	if !o.aiAvailable() {
		return
	}

	o.mu.RLock()
	snap, ok := o.state.SelectedAsset()
	eligible := ok &&
		o.state.View == models.ViewMainAnalysis &&
		!o.state.LoadingAdvice[snap.ID] &&
		snap.IsFresh() &&
		snap.HasHistory()
	o.mu.RUnlock()

	if eligible {
		o.RequestAdvice(ctx, snap, false)
	}
}
