// Package market provides the CoinGecko market data client.
package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
)

// DefaultBaseURL is the public CoinGecko API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Operations named in RateLimited errors.
const (
	OpSuggestions = "suggestions"
	OpDetails     = "details"
	OpHistory     = "history"
)

// ClientConfig holds market client configuration.
type ClientConfig struct {
	BaseURL         string
	Timeout         time.Duration
	SuggestionLimit int
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:         DefaultBaseURL,
		Timeout:         20 * time.Second,
		SuggestionLimit: 7,
	}
}

// Client talks to a CoinGecko-compatible REST API. Only a 429 response is
// reported as an error; every other failure degrades to an empty or
// unchanged result.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
	logger  zerolog.Logger
	now     func() time.Time
}

// NewClient creates a market data client.
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 7
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limit:   cfg.SuggestionLimit,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logging.WithComponent(logger, "market"),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for LastUpdated.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Thumb  string `json:"thumb"`
	} `json:"coins"`
}

type detailResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData *struct {
		CurrentPrice             map[string]*float64 `json:"current_price"`
		PriceChangePercentage24h *float64            `json:"price_change_percentage_24h"`
		MarketCap                map[string]*float64 `json:"market_cap"`
		TotalVolume              map[string]*float64 `json:"total_volume"`
	} `json:"market_data"`
}

type chartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// httpStatusError is a non-2xx response other than 429.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// get performs a GET and decodes the JSON body into out. A 429 returns
// rateLimited unchanged.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any, rateLimited *apperrors.Error) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logging.LogAPICall(c.logger, http.MethodGet, path, 0, time.Since(start), err)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		logging.LogAPICall(c.logger, http.MethodGet, path, resp.StatusCode, time.Since(start), rateLimited)
		return rateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err := &httpStatusError{status: resp.StatusCode}
		logging.LogAPICall(c.logger, http.MethodGet, path, resp.StatusCode, time.Since(start), err)
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err == nil {
		err = json.Unmarshal(body, out)
	}
	logging.LogAPICall(c.logger, http.MethodGet, path, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.New(apperrors.KindMalformedResponse, "errors.malformedResponse", nil), err.Error())
	}
	return nil
}

// Suggestions returns up to the configured number of search results for q.
// Queries shorter than two trimmed characters return nothing without a
// request.
func (c *Client) Suggestions(ctx context.Context, q string) ([]models.SearchResult, error) {
	if len([]rune(strings.TrimSpace(q))) < 2 {
		return []models.SearchResult{}, nil
	}

	var resp searchResponse
	rl := apperrors.NewRateLimited(OpSuggestions, "app.rateLimitActiveError", nil)
	if err := c.get(ctx, "/search", url.Values{"query": {q}}, &resp, rl); err != nil {
		if apperrors.Is(err, apperrors.ErrRateLimited) {
			c.logger.Warn().Str("query", q).Msg("Rate limit hit fetching suggestions")
			return nil, err
		}
		c.logger.Error().Err(err).Str("query", q).Msg("Error fetching suggestions")
		return []models.SearchResult{}, nil
	}

	n := len(resp.Coins)
	if n > c.limit {
		n = c.limit
	}
	results := make([]models.SearchResult, 0, n)
	for _, coin := range resp.Coins[:n] {
		results = append(results, models.SearchResult{
			ID:     coin.ID,
			Name:   coin.Name,
			Symbol: strings.ToUpper(coin.Symbol),
			Thumb:  coin.Thumb,
		})
	}
	return results, nil
}

// SearchBest resolves q to the single best suggestion: exact id, then exact
// name, then exact symbol (case-insensitive), then the canonical coin for
// common names, then the first suggestion. It returns nil when nothing
// matches.
func (c *Client) SearchBest(ctx context.Context, q string) (*models.SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}

	suggestions, err := c.Suggestions(ctx, q)
	if err != nil {
		return nil, err
	}
	return pickBest(q, suggestions), nil
}

func pickBest(q string, suggestions []models.SearchResult) *models.SearchResult {
	if len(suggestions) == 0 {
		return nil
	}
	lq := strings.ToLower(q)

	find := func(match func(models.SearchResult) bool) *models.SearchResult {
		for i := range suggestions {
			if match(suggestions[i]) {
				s := suggestions[i]
				return &s
			}
		}
		return nil
	}

	if m := find(func(s models.SearchResult) bool { return strings.ToLower(s.ID) == lq }); m != nil {
		return m
	}
	if m := find(func(s models.SearchResult) bool { return strings.ToLower(s.Name) == lq }); m != nil {
		return m
	}
	if m := find(func(s models.SearchResult) bool { return strings.ToLower(s.Symbol) == lq }); m != nil {
		return m
	}

	canonical := ""
	switch lq {
	case "bitcoin":
		canonical = "bitcoin"
	case "ethereum", "eth":
		canonical = "ethereum"
	}
	if canonical != "" {
		if m := find(func(s models.SearchResult) bool { return s.ID == canonical }); m != nil {
			return m
		}
	}

	first := suggestions[0]
	return &first
}

// FetchDetail refreshes the market metrics and 30-day daily history of
// asset. When the primary data cannot be fetched the input is returned
// unchanged (LastUpdated untouched). A history failure other than 429 keeps
// the primary data with an empty history.
func (c *Client) FetchDetail(ctx context.Context, asset models.Asset) (models.Asset, error) {
	name := asset.Name
	if name == "" {
		name = asset.ID
	}
	log := logging.WithAsset(c.logger, asset.ID)

	var detail detailResponse
	query := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"true"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"false"},
	}
	rl := apperrors.NewRateLimited(OpDetails, "app.rateLimitActiveError", map[string]any{"cryptoName": name})
	if err := c.get(ctx, "/coins/"+url.PathEscape(asset.ID), query, &detail, rl); err != nil {
		if apperrors.Is(err, apperrors.ErrRateLimited) {
			log.Warn().Msg("Rate limit hit fetching market data")
			return asset, err
		}
		log.Error().Err(err).Msg("Error fetching market data")
		return asset, nil
	}

	md := detail.MarketData
	if md == nil || md.CurrentPrice["usd"] == nil {
		log.Error().Msg("Market data or current_price.usd missing")
		return asset, nil
	}

	updated := asset.Clone()
	updated.CurrentPrice = *md.CurrentPrice["usd"]
	if md.PriceChangePercentage24h != nil {
		updated.PriceChange24hPercent = *md.PriceChangePercentage24h
	}
	if v := md.MarketCap["usd"]; v != nil {
		updated.MarketCap = *v
	}
	if v := md.TotalVolume["usd"]; v != nil {
		updated.Volume24h = *v
	}

	history, err := c.fetchHistory(ctx, asset.ID, name)
	if err != nil {
		return asset, err
	}
	updated.PriceHistory = history

	now := c.now()
	updated.LastUpdated = &now
	return updated, nil
}

func (c *Client) fetchHistory(ctx context.Context, id, name string) ([]models.PricePoint, error) {
	var chart chartResponse
	query := url.Values{
		"vs_currency": {"usd"},
		"days":        {"30"},
		"interval":    {"daily"},
	}
	rl := apperrors.NewRateLimited(OpHistory, "app.rateLimitActiveError", map[string]any{"cryptoName": name})
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", query, &chart, rl); err != nil {
		if apperrors.Is(err, apperrors.ErrRateLimited) {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("asset", id).Msg("Error fetching price history, keeping market data")
		return []models.PricePoint{}, nil
	}

	points := make([]models.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, models.PricePoint{
			Timestamp: int64(p[0]) / 1000,
			Price:     p[1],
		})
	}
	return points, nil
}
