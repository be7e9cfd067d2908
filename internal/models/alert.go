package models

import "time"

// AlertCondition is the direction of a price alert.
type AlertCondition string

const (
	// AlertPriceDropsTo fires when the price is at or below the target.
	AlertPriceDropsTo AlertCondition = "PRICE_DROPS_TO"
	// AlertPriceRisesTo fires when the price is at or above the target.
	AlertPriceRisesTo AlertCondition = "PRICE_RISES_TO"
)

// Valid reports whether c is a known condition.
func (c AlertCondition) Valid() bool {
	return c == AlertPriceDropsTo || c == AlertPriceRisesTo
}

// Alert represents a price alert. Once triggered it stays inactive.
type Alert struct {
	ID          string         `json:"id"`
	AssetID     string         `json:"cryptoId"`
	AssetName   string         `json:"cryptoName"`
	AssetSymbol string         `json:"cryptoSymbol"`
	TargetPrice float64        `json:"targetPrice"`
	Condition   AlertCondition `json:"condition"`
	CreatedAt   time.Time      `json:"createdAt"`
	Active      bool           `json:"isActive"`
	TriggeredAt *time.Time     `json:"triggeredAt,omitempty"`
}

// Matches reports whether price satisfies the alert condition.
func (a *Alert) Matches(price float64) bool {
	switch a.Condition {
	case AlertPriceDropsTo:
		return price <= a.TargetPrice
	case AlertPriceRisesTo:
		return price >= a.TargetPrice
	}
	return false
}

// Trigger marks the alert inactive at t.
func (a *Alert) Trigger(t time.Time) {
	a.Active = false
	a.TriggeredAt = &t
}
