// Package experts holds the curated list of market commentators.
package experts

import (
	"strings"

	"crypto-advisor/internal/models"
)

var curated = []models.ExpertTrader{
	{Name: "Vitalik Buterin", Handle: "VitalikButerin", DescriptionKey: "expertTradersView.vitalikDescription"},
	{Name: "Michael Saylor", Handle: "saylor", DescriptionKey: "expertTradersView.saylorDescription"},
	{Name: "Cobie", Handle: "cobie", DescriptionKey: "expertTradersView.cobieDescription"},
	{Name: "Raoul Pal", Handle: "RaoulGMI", DescriptionKey: "expertTradersView.raoulDescription"},
	{Name: "Willy Woo", Handle: "woonomic", DescriptionKey: "expertTradersView.willyDescription"},
}

// List returns a copy of the curated experts in display order.
func List() []models.ExpertTrader {
	out := make([]models.ExpertTrader, len(curated))
	copy(out, curated)
	return out
}

// Find returns the expert with handle, ignoring case.
func Find(handle string) (models.ExpertTrader, bool) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	for _, e := range curated {
		if strings.EqualFold(e.Handle, handle) {
			return e, true
		}
	}
	return models.ExpertTrader{}, false
}
