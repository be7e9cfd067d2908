package orchestrator

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/stream"
)

// minQueryRunes is the shortest trimmed query that triggers suggestions.
const minQueryRunes = 2

func longEnough(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= minQueryRunes
}

// SetQuery records a keystroke in the search box. Suggestions are requested
// once the text has been quiet for the debounce period.
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	o.state.Search.Query = text
	ctx := o.ctx
	o.mu.Unlock()
	o.changed()

	o.debounce.Trigger(func() {
		o.applyDebouncedQuery(ctx, text)
	})
}

// applyDebouncedQuery publishes the settled query and loads suggestions
// for it when allowed.
func (o *Orchestrator) applyDebouncedQuery(ctx context.Context, q string) {
	cooling := o.cooldown.Active()

	o.mu.Lock()
	o.state.Search.DebouncedQuery = q
	if !longEnough(q) || cooling {
		o.searchSeq++
		o.state.Search.Suggestions = nil
		o.state.Search.Show = false
		o.state.Search.Loading = false
		if cooling && longEnough(q) {
			o.state.Search.Error = apperrors.New(apperrors.KindRateLimited, "app.searchPausedRateLimit", nil)
		}
		o.mu.Unlock()
		o.publish(stream.EventSuggestions, "", nil)
		return
	}
	o.searchSeq++
	seq := o.searchSeq
	o.state.Search.Loading = true
	o.state.Search.Show = true
	o.state.Search.Error = nil
	o.mu.Unlock()
	o.changed()

	results, err := o.market.Suggestions(ctx, q)
	limited := err != nil && o.rateLimited(err)

	o.mu.Lock()
	if seq != o.searchSeq {
		// A newer query or a selection superseded this request.
		o.mu.Unlock()
		return
	}
	o.state.Search.Loading = false
	switch {
	case err == nil:
		o.state.Search.Suggestions = results
	case limited:
		o.state.Search.Suggestions = nil
	default:
		o.logger.Warn().Err(err).Str("query", q).Msg("Suggestions failed")
		o.state.Search.Suggestions = nil
		o.state.Search.Error = apperrors.New(apperrors.KindInternal, "app.searchErrorSuggestions", nil)
	}
	payload := append([]models.SearchResult(nil), o.state.Search.Suggestions...)
	o.mu.Unlock()
	o.publish(stream.EventSuggestions, "", payload)
}

// FocusSearch shows the suggestion list again when the settled query is
// long enough.
func (o *Orchestrator) FocusSearch() {
	o.mu.Lock()
	show := longEnough(o.state.Search.DebouncedQuery)
	if show {
		o.state.Search.Show = true
	}
	o.mu.Unlock()
	if show {
		o.changed()
	}
}

// DismissSuggestions hides the suggestion list and keeps the query.
func (o *Orchestrator) DismissSuggestions() {
	o.mu.Lock()
	o.state.Search.Show = false
	o.mu.Unlock()
	o.changed()
}

// SearchBest resolves query to one asset. It fails with NotFound when the
// search has no result.
func (o *Orchestrator) SearchBest(ctx context.Context, query string) (models.SearchResult, error) {
	if err := o.cooldown.Allow(); err != nil {
		return models.SearchResult{}, apperrors.New(apperrors.KindRateLimited, "cryptoXView.errorRateLimit", nil)
	}

	best, err := o.market.SearchBest(ctx, query)
	if err != nil {
		o.rateLimited(err)
		return models.SearchResult{}, err
	}
	if best == nil {
		return models.SearchResult{}, apperrors.New(apperrors.KindNotFound, "cryptoXView.errorCoinNotFound", map[string]any{"query": query})
	}
	return *best, nil
}
