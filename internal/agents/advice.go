package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
)

// Separators between the plain-language summary and the advanced analysis.
const (
	DetailsSeparator        = "---ADVANCED_DETAILS---"
	DetailsSeparatorSpanish = "---DETALLES_AVANZADOS---"
)

var advicePrefixes = []struct {
	prefix string
	kind   models.AdviceType
}{
	{"BUY:", models.AdviceBuy},
	{"SELL:", models.AdviceSell},
	{"HOLD:", models.AdviceHold},
	{"COMPRAR:", models.AdviceBuy},
	{"VENDER:", models.AdviceSell},
	{"MANTENER:", models.AdviceHold},
}

const adviceSystemPrompt = `You are an elite financial advisor and seasoned trader with deep knowledge of the advanced techniques used by top traders.
Decide whether the present moment is better suited to a speculative BUY or SELL of the given cryptocurrency, focusing on the DAILY chart.

Consider, from the daily perspective:
- classic chart patterns (triangles, flags, head and shoulders)
- key daily support and resistance levels
- price relative to conceptual 20, 50 and 200 day moving averages
- momentum (RSI, MACD) and bullish or bearish divergences
- whether daily volume confirms or contradicts price moves
- confluence of signals
- buyside liquidity above recent highs and sellside liquidity below recent lows

Keep a consistent stance unless a significant daily technical change or major fundamental event justifies re-evaluation.

MANDATORY response format:
Your ENTIRE response MUST start with one of these keywords in upper case: "BUY:", "SELL:" or "HOLD:".
Use "HOLD:" only when the daily picture is genuinely neutral; explain which daily conditions would change your view.
Never answer with "INFO:".

After the keyword, first give a plain-language summary (1-2 sentences, no jargon) for a beginner.
Then insert the EXACT separator: "` + DetailsSeparator + `"
After the separator, give the advanced analysis with technical terminology for experienced users.

Do not mention that you are limited to the data provided or where it came from.`

// Advisor produces advice and social analyses through an LLMClient. A nil
// client makes it unavailable; every method then answers without network.
type Advisor struct {
	llm         LLMClient
	logger      zerolog.Logger
	now         func() time.Time
	language    func() string
	temperature float32
}

// NewAdvisor creates an advisor. llm may be nil.
func NewAdvisor(llm LLMClient, logger zerolog.Logger) *Advisor {
	return &Advisor{
		llm:         llm,
		logger:      logging.WithComponent(logger, "advisor"),
		now:         time.Now,
		temperature: 0.5,
	}
}

// SetLanguage sets the function reporting the interface language the model
// should answer in.
func (a *Advisor) SetLanguage(fn func() string) {
	a.language = fn
}

// SetTemperature overrides the advice sampling temperature.
func (a *Advisor) SetTemperature(t float32) {
	a.temperature = t
}

// SetClock replaces the time source.
func (a *Advisor) SetClock(now func() time.Time) {
	a.now = now
}

// Available reports whether a backend is configured.
func (a *Advisor) Available() bool {
	return a.llm != nil
}

func (a *Advisor) newAdvice(asset models.Asset, kind models.AdviceType, msg models.Text) models.Advice {
	return models.Advice{
		ID:        uuid.NewString(),
		Asset:     asset.Clone(),
		Type:      kind,
		Message:   msg,
		CreatedAt: a.now(),
	}
}

// GetAdvice asks the backend for a recommendation on asset. It never fails:
// an unavailable backend or a request error yields INFO advice.
func (a *Advisor) GetAdvice(ctx context.Context, asset models.Asset) models.Advice {
	if !a.Available() {
		return a.newAdvice(asset, models.AdviceInfo, models.KeyText("services.gemini.adviceUnavailable", nil))
	}

	log := logging.WithAsset(a.logger, asset.ID)
	raw, err := a.llm.CompleteWithSystem(ctx, a.systemPrompt(), buildAdviceContext(asset), CompletionOptions{
		Temperature: a.temperature,
		TopP:        0.9,
	})
	if err != nil {
		log.Error().Err(err).Msg("Error fetching advice")
		return a.newAdvice(asset, models.AdviceInfo, models.KeyText("services.gemini.adviceErrorFetching", map[string]any{
			"cryptoName": asset.Name,
			"details":    err.Error(),
		}))
	}

	kind, summary, detail := parseAdvice(raw)
	advice := a.newAdvice(asset, kind, models.LiteralText(summary))
	advice.RawResponse = raw

	if summary == "" && strings.TrimSpace(raw) != "" {
		advice.Message = models.KeyText("services.gemini.adviceUnparsableSummary", nil)
		if kind == models.AdviceInfo && !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(raw)), "INFO:") {
			advice.Message = models.LiteralText(strings.TrimSpace(raw))
		}
	}
	if detail != "" {
		d := models.LiteralText(detail)
		advice.Detail = &d
	}
	if kind == models.AdviceInfo {
		log.Warn().Str("response", raw).Msg("Advice response did not start with a recommendation keyword")
	}
	return advice
}

func (a *Advisor) systemPrompt() string {
	if a.language == nil {
		return adviceSystemPrompt
	}
	switch a.language() {
	case "es":
		return adviceSystemPrompt + "\n\nWrite the summary and the analysis in Spanish, but keep the keyword and the separator exactly as specified."
	case "en":
		return adviceSystemPrompt + "\n\nWrite the summary and the analysis in English."
	}
	return adviceSystemPrompt
}

// pricePrecision shows low-priced coins with four decimals.
func pricePrecision(asset models.Asset) int {
	if asset.Symbol == "DOGE" || asset.Symbol == "ADA" || asset.CurrentPrice < 0.1 {
		return 4
	}
	return 2
}

func buildAdviceContext(asset models.Asset) string {
	var b strings.Builder
	prec := pricePrecision(asset)

	fmt.Fprintf(&b, "Cryptocurrency: %s (%s)\n\n", asset.Name, asset.Symbol)
	b.WriteString("Current market data:\n")
	fmt.Fprintf(&b, "- Price: $%.*f USD\n", prec, asset.CurrentPrice)
	fmt.Fprintf(&b, "- 24h price change: %.2f%%\n", asset.PriceChange24hPercent)
	fmt.Fprintf(&b, "- 24h volume: $%.0f USD\n", asset.Volume24h)
	fmt.Fprintf(&b, "- Market cap: $%.0f USD\n", asset.MarketCap)

	if len(asset.PriceHistory) > 1 {
		fmt.Fprintf(&b, "- Recent trend (daily data, last 30 days): moved from about $%.2f to $%.2f USD\n",
			asset.PriceHistory[0].Price, asset.CurrentPrice)
	} else {
		b.WriteString("- Recent trend: detailed daily history is unavailable\n")
	}

	if n := len(asset.PriceHistory); n > 5 {
		last := asset.PriceHistory[n-5:]
		prices := make([]string, len(last))
		for i, p := range last {
			prices[i] = fmt.Sprintf("$%.2f", p.Price)
		}
		fmt.Fprintf(&b, "- Recent daily closes (USD): %s\n", strings.Join(prices, ", "))
	} else {
		b.WriteString("- Not enough history for a detailed summary\n")
	}
	return b.String()
}

// parseAdvice splits a raw response into its recommendation, summary and
// advanced detail. A response without a known keyword is INFO and the whole
// text is the message.
func parseAdvice(raw string) (models.AdviceType, string, string) {
	msg := strings.TrimSpace(raw)
	kind := models.AdviceInfo

	for _, p := range advicePrefixes {
		if len(msg) >= len(p.prefix) && strings.EqualFold(msg[:len(p.prefix)], p.prefix) {
			kind = p.kind
			msg = strings.TrimSpace(msg[len(p.prefix):])
			break
		}
	}

	for _, sep := range []string{DetailsSeparator, DetailsSeparatorSpanish} {
		if idx := strings.Index(msg, sep); idx != -1 {
			return kind, strings.TrimSpace(msg[:idx]), strings.TrimSpace(msg[idx+len(sep):])
		}
	}
	return kind, msg, ""
}
