package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"crypto-advisor/internal/models"
)

// Feature: crypto-advisor, Property: Alert collection round-trip
//
// Property: For any collection of alerts, persisting it and loading it into a
// fresh store yields the same id, target price, condition and active flag for
// every alert, in the same order.
func TestProperty_AlertRoundTrip(t *testing.T) {
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "roundtrip.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer db.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	assets := []string{"bitcoin", "ethereum", "solana", "dogecoin", "cardano"}

	properties.Property("save then load preserves every alert", prop.ForAll(
		func(targets []float64, drops []bool, triggerMask []bool) bool {
			ctx := context.Background()
			if err := db.Delete(ctx, AlertsKey); err != nil {
				t.Logf("reset failed: %v", err)
				return false
			}

			s := NewAlertStore(db, zerolog.Nop())
			if err := s.Load(ctx); err != nil {
				t.Logf("load failed: %v", err)
				return false
			}

			var toTrigger []string
			for i, target := range targets {
				cond := models.AlertPriceRisesTo
				if i < len(drops) && drops[i] {
					cond = models.AlertPriceDropsTo
				}
				id := assets[i%len(assets)]
				a, err := s.Add(ctx, AlertInput{
					AssetID:     id,
					AssetName:   id,
					AssetSymbol: "SYM",
					TargetPrice: target,
					Condition:   cond,
				})
				if err != nil {
					t.Logf("add failed: %v", err)
					return false
				}
				if i < len(triggerMask) && triggerMask[i] {
					toTrigger = append(toTrigger, a.ID)
				}
			}
			if _, err := s.Trigger(ctx, toTrigger, time.Now()); err != nil {
				t.Logf("trigger failed: %v", err)
				return false
			}

			want := s.All()
			reloaded := NewAlertStore(db, zerolog.Nop())
			if err := reloaded.Load(ctx); err != nil {
				t.Logf("reload failed: %v", err)
				return false
			}
			got := reloaded.All()

			if len(got) != len(want) {
				t.Logf("count mismatch: want %d got %d", len(want), len(got))
				return false
			}
			for i := range want {
				if got[i].ID != want[i].ID ||
					got[i].TargetPrice != want[i].TargetPrice ||
					got[i].Condition != want[i].Condition ||
					got[i].Active != want[i].Active {
					t.Logf("alert %d mismatch: want %+v got %+v", i, want[i], got[i])
					return false
				}
				if (got[i].TriggeredAt == nil) != (want[i].TriggeredAt == nil) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.Float64Range(0.0001, 1_000_000)),
		gen.SliceOfN(8, gen.Bool()),
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}
