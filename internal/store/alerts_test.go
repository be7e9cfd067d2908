package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
)

func newLoadedStore(t *testing.T, kv KeyValue) *AlertStore {
	t.Helper()
	s := NewAlertStore(kv, zerolog.Nop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func btcInput(target float64, cond models.AlertCondition) AlertInput {
	return AlertInput{AssetID: "bitcoin", AssetName: "Bitcoin", AssetSymbol: "BTC", TargetPrice: target, Condition: cond}
}

func TestLoadMissingBlobIsEmpty(t *testing.T) {
	s := newLoadedStore(t, NewMemoryStore())
	assert.Empty(t, s.All())
}

func TestLoadCorruptBlobDiscardsIt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(ctx, AlertsKey, "{not json"))

	s := newLoadedStore(t, kv)
	assert.Empty(t, s.All())

	_, ok, err := kv.Get(ctx, AlertsKey)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt blob must be removed")
}

func TestEveryMutationRewritesTheBlob(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	s := newLoadedStore(t, kv)

	a, err := s.Add(ctx, btcInput(49000, models.AlertPriceDropsTo))
	require.NoError(t, err)
	assert.Equal(t, 1, kv.Writes(AlertsKey))
	assert.True(t, a.Active)
	assert.NotEmpty(t, a.ID)

	_, err = s.Add(ctx, btcInput(60000, models.AlertPriceRisesTo))
	require.NoError(t, err)
	assert.Equal(t, 2, kv.Writes(AlertsKey))

	changed, err := s.Trigger(ctx, []string{a.ID}, time.Now())
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.False(t, changed[0].Active)
	assert.NotNil(t, changed[0].TriggeredAt)
	assert.Equal(t, 3, kv.Writes(AlertsKey))

	removed, err := s.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 4, kv.Writes(AlertsKey))
	assert.Len(t, s.All(), 1)
}

func TestTriggerIsOneShot(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	s := newLoadedStore(t, kv)

	a, err := s.Add(ctx, btcInput(49000, models.AlertPriceDropsTo))
	require.NoError(t, err)

	first, err := s.Trigger(ctx, []string{a.ID}, time.Now())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := s.Trigger(ctx, []string{a.ID}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Empty(t, s.Active("bitcoin"))
	assert.Equal(t, 2, kv.Writes(AlertsKey), "no rewrite when nothing changed")
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	kv := NewMemoryStore()
	s := newLoadedStore(t, kv)

	removed, err := s.Remove(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, kv.Writes(AlertsKey))
}

func TestAddRejectsInvalidInput(t *testing.T) {
	s := newLoadedStore(t, NewMemoryStore())

	_, err := s.Add(context.Background(), btcInput(0, models.AlertPriceDropsTo))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
	assert.Equal(t, "setAlertModal.errorInvalidPrice", apperrors.AsTagged(err).Key)

	_, err = s.Add(context.Background(), btcInput(10, "SIDEWAYS"))
	require.Error(t, err)
	assert.Equal(t, "errors.invalidAlert", apperrors.AsTagged(err).Key)
}

func TestSQLiteKeyValue(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "kv.db"))
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, LanguageKey, "es"))
	require.NoError(t, db.Set(ctx, LanguageKey, "en"))

	v, ok, err := db.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	require.NoError(t, db.Delete(ctx, LanguageKey))
	_, ok, err = db.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
