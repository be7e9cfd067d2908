// Package models provides domain models for the crypto advisor.
package models

import (
	"strings"
	"time"
)

// PricePoint is one daily sample of an asset's price history.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // unix seconds
	Price     float64 `json:"price"`
}

// Asset is the market snapshot of one cryptocurrency.
type Asset struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Symbol                string       `json:"symbol"`
	ChartSymbol           string       `json:"chartSymbol"`
	CurrentPrice          float64      `json:"currentPrice"`
	PriceChange24hPercent float64      `json:"priceChange24hPercent"`
	Volume24h             float64      `json:"volume24h"`
	MarketCap             float64      `json:"marketCap"`
	PriceHistory          []PricePoint `json:"priceHistory"`
	LastUpdated           *time.Time   `json:"lastUpdated,omitempty"`
}

// IsFresh reports whether the snapshot came from a successful detail fetch.
// Only fresh snapshots drive alerting and advice.
func (a *Asset) IsFresh() bool {
	return a != nil && a.LastUpdated != nil
}

// HasHistory reports whether the snapshot carries any history points.
func (a *Asset) HasHistory() bool {
	return a != nil && len(a.PriceHistory) > 0
}

// Clone returns a deep copy of the snapshot.
func (a Asset) Clone() Asset {
	cp := a
	if a.PriceHistory != nil {
		cp.PriceHistory = append([]PricePoint(nil), a.PriceHistory...)
	}
	if a.LastUpdated != nil {
		t := *a.LastUpdated
		cp.LastUpdated = &t
	}
	return cp
}

// ChartSymbolFor derives the chart lookup symbol, e.g. BTC -> BTCUSD.
func ChartSymbolFor(symbol string) string {
	return strings.ToUpper(symbol) + "USD"
}

// BaselineAsset builds the placeholder snapshot used before the first
// successful fetch. Metrics are zero and LastUpdated is unset.
func BaselineAsset(id, symbolHint, nameHint string) Asset {
	name := nameHint
	if name == "" {
		name = id
	}
	symbol := strings.ToUpper(symbolHint)
	if symbol == "" {
		symbol = strings.ToUpper(id)
	}
	return Asset{
		ID:           id,
		Name:         name,
		Symbol:       symbol,
		ChartSymbol:  ChartSymbolFor(symbol),
		PriceHistory: []PricePoint{},
	}
}

// SearchResult is one search suggestion.
type SearchResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb,omitempty"`
}

// ExpertTrader is a curated social-media account.
type ExpertTrader struct {
	Name           string `json:"name"`
	Handle         string `json:"handle"`
	DescriptionKey string `json:"descriptionKey"`
}

// ProfileURL returns the public profile address of the expert.
func (e ExpertTrader) ProfileURL() string {
	return "https://x.com/" + e.Handle
}

// View identifies the active screen.
type View string

const (
	ViewMainAnalysis   View = "MAIN_ANALYSIS"
	ViewExpertTraders  View = "EXPERT_TRADERS"
	ViewSocialAnalysis View = "CRYPTO_X"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewMainAnalysis, ViewExpertTraders, ViewSocialAnalysis:
		return true
	}
	return false
}
