package cli

import (
	"fmt"
	"strings"
	"time"

	"crypto-advisor/internal/i18n"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/orchestrator"
	"crypto-advisor/pkg/utils"
)

// sparkRunes are the eight block heights used to draw price history.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws prices as a one-line chart. At most width points are
// drawn, sampled evenly from the series.
func Sparkline(history []models.PricePoint, width int) string {
	if len(history) == 0 || width <= 0 {
		return ""
	}

	points := history
	if len(points) > width {
		sampled := make([]models.PricePoint, width)
		for i := range sampled {
			sampled[i] = history[i*(len(history)-1)/max(width-1, 1)]
		}
		points = sampled
	}

	lo, hi := points[0].Price, points[0].Price
	for _, p := range points {
		lo = min(lo, p.Price)
		hi = max(hi, p.Price)
	}

	var sb strings.Builder
	for _, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p.Price - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// renderAsset prints the snapshot card of one asset.
func renderAsset(output *Output, tr *i18n.Translator, a models.Asset) {
	lines := []string{
		fmt.Sprintf("%-12s %s", tr.T("app.priceLabel", nil), utils.FormatUSD(a.CurrentPrice)),
		fmt.Sprintf("%-12s %s", tr.T("app.change24hLabel", nil), output.FormatChange(a.PriceChange24hPercent)),
		fmt.Sprintf("%-12s %s", tr.T("app.volumeLabel", nil), utils.FormatCompact(a.Volume24h)),
		fmt.Sprintf("%-12s %s", tr.T("app.marketCapLabel", nil), utils.FormatCompact(a.MarketCap)),
		fmt.Sprintf("%-12s %s", tr.T("app.chartSymbolLabel", nil), a.ChartSymbol),
	}
	if spark := Sparkline(a.PriceHistory, 30); spark != "" {
		lines = append(lines, "30d          "+output.ColoredString(ColorCyan, spark))
	}
	if a.LastUpdated != nil {
		lines = append(lines, fmt.Sprintf("%-12s %s", tr.T("app.lastUpdatedLabel", nil), a.LastUpdated.Local().Format(time.DateTime)))
	}
	output.Box(fmt.Sprintf("%s (%s)", a.Name, a.Symbol), lines)
}

// renderAdvice prints an advice block.
func renderAdvice(output *Output, tr *i18n.Translator, adv models.Advice) {
	label := tr.T("advice."+string(adv.Type), nil)
	output.Printf("%s  %s\n", output.ColoredString(ColorBold, tr.T("app.adviceTitle", nil)), output.AdviceLabel(adv.Type, label))
	output.Println(tr.Text(adv.Message))
	if adv.Detail != nil {
		output.Dim("%s", tr.Text(*adv.Detail))
	}
}

// conditionText renders an alert condition with its target price.
func conditionText(tr *i18n.Translator, a models.Alert) string {
	key := "app.alertConditionRisesTo"
	if a.Condition == models.AlertPriceDropsTo {
		key = "app.alertConditionDropsTo"
	}
	return tr.T(key, map[string]any{"price": utils.FormatUSD(a.TargetPrice)})
}

// renderAlerts prints a table of alerts.
func renderAlerts(output *Output, tr *i18n.Translator, alerts []models.Alert) {
	if len(alerts) == 0 {
		output.Dim("%s", tr.T("app.noActiveAlerts", nil))
		return
	}
	table := NewTable(output, "ID", tr.T("general.cryptocurrency", nil), tr.T("setAlertModal.targetPriceLabel", nil), "")
	for _, a := range alerts {
		state := output.ColoredString(ColorGreen, "●")
		if !a.Active {
			state = output.ColoredString(ColorDim, "✓")
		}
		table.AddRow(a.ID[:min(8, len(a.ID))], fmt.Sprintf("%s (%s)", a.AssetName, a.AssetSymbol), conditionText(tr, a), state)
	}
	table.Render()
}

// renderTriggered prints one toast line per queued triggered alert.
func renderTriggered(output *Output, tr *i18n.Translator, st orchestrator.State) {
	for _, a := range st.Triggered {
		key := "app.triggeredAlertMessageRisen"
		if a.Condition == models.AlertPriceDropsTo {
			key = "app.triggeredAlertMessageDropped"
		}
		msg := tr.T(key, map[string]any{"cryptoName": a.AssetName, "targetPrice": utils.FormatUSD(a.TargetPrice)})
		output.Warning("🔔 %s %s", tr.T("app.triggeredAlertTitle", nil), msg)
	}
}

// renderState prints the whole dashboard.
func renderState(output *Output, tr *i18n.Translator, st orchestrator.State) {
	output.Bold("%s", tr.T("general.appName", nil))

	if st.Cooldown.Active {
		output.Warning("%s %s %d%s", tr.T("app.rateLimitPauseMessage", nil),
			tr.T("app.rateLimitCooldownDisplayPrefix", nil), st.Cooldown.RemainingSeconds,
			tr.T("app.rateLimitCooldownDisplaySuffix", nil))
	}
	if st.GlobalError != nil {
		output.Error("%s %s", tr.T("app.globalErrorPrefix", nil), tr.Error(st.GlobalError))
	}

	asset, ok := st.SelectedAsset()
	if !ok {
		output.Println(tr.T("app.welcomeMessage", nil))
		return
	}
	if st.LoadingData[asset.ID] {
		output.Dim("%s", tr.T("app.loadingData", nil))
	}
	renderAsset(output, tr, asset)

	switch {
	case st.LoadingAdvice[asset.ID]:
		output.Dim("%s", tr.T("app.adviceLoading", nil))
	case st.Advice != nil:
		renderAdvice(output, tr, *st.Advice)
	}

	output.Println()
	output.Bold("%s", tr.T("app.activeAlertsTitle", nil))
	var active []models.Alert
	for _, a := range st.Alerts {
		if a.Active && a.AssetID == asset.ID {
			active = append(active, a)
		}
	}
	renderAlerts(output, tr, active)
	renderTriggered(output, tr, st)

	output.Println()
	output.Dim("%s", tr.T("app.footerDisclaimer", nil))
}
