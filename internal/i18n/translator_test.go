package i18n

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/store"
)

func TestTranslateSubstitutesParams(t *testing.T) {
	got := Translate(English, "app.processCryptoError", map[string]any{"cryptoName": "Bitcoin"})
	assert.Equal(t, "Could not fetch data for Bitcoin.", got)

	got = Translate(Spanish, "app.triggeredAlertMessageDropped", map[string]any{"cryptoName": "Bitcoin", "targetPrice": "$49,000.00"})
	assert.Equal(t, "Bitcoin ha bajado a $49,000.00 o menos.", got)
}

func TestTranslateUnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "nope.missing", Translate(English, "nope.missing", nil))
	assert.Equal(t, "nope.missing", Translate(Spanish, "nope.missing", map[string]any{"x": 1}))
}

func TestTranslateFallsBackToEnglish(t *testing.T) {
	english["test.englishOnly"] = "Only in English, {name}."
	t.Cleanup(func() { delete(english, "test.englishOnly") })

	assert.Equal(t, "Only in English, Ana.", Translate(Spanish, "test.englishOnly", map[string]any{"name": "Ana"}))
}

func TestTranslateDoesNotExpandParamValues(t *testing.T) {
	got := Translate(English, "services.gemini.adviceErrorFetching", map[string]any{
		"cryptoName": "{details}",
		"details":    "timeout",
	})
	assert.Equal(t, "Could not get advice for {details}: timeout", got)
}

func TestTablesHaveTheSameKeys(t *testing.T) {
	for k := range spanish {
		_, ok := english[k]
		assert.True(t, ok, "missing english key %s", k)
	}
	for k := range english {
		_, ok := spanish[k]
		assert.True(t, ok, "missing spanish key %s", k)
	}
}

func TestInitPrefersStoredPreference(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, store.LanguageKey, "en"))

	tr := NewTranslator(kv, zerolog.Nop())
	assert.Equal(t, English, tr.Init(ctx, ""))

	// a valid override beats the stored value and is persisted
	assert.Equal(t, Spanish, tr.Init(ctx, "es"))
	v, _, _ := kv.Get(ctx, store.LanguageKey)
	assert.Equal(t, "es", v)
}

func TestInitDefaultsToSpanish(t *testing.T) {
	t.Setenv("LANG", "C.UTF-8")
	tr := NewTranslator(store.NewMemoryStore(), zerolog.Nop())
	assert.Equal(t, Spanish, tr.Init(context.Background(), "fr"))
}

func TestSetLocaleRejectsUnknown(t *testing.T) {
	tr := NewTranslator(nil, zerolog.Nop())
	err := tr.SetLocale(context.Background(), Locale("de"))
	require.Error(t, err)
	assert.Equal(t, Spanish, tr.Locale())
}

func TestRenderTextAndErrors(t *testing.T) {
	tr := NewTranslator(nil, zerolog.Nop())
	require.NoError(t, tr.SetLocale(context.Background(), English))

	assert.Equal(t, "raw text", tr.Text(models.LiteralText("raw text")))
	assert.Equal(t, "Not enough data for Solana to generate advice.",
		tr.Text(models.KeyText("services.gemini.adviceNoData", map[string]any{"cryptoName": "Solana"})))

	rl := apperrors.NewRateLimited("details", "app.rateLimitActiveError", nil)
	assert.Equal(t, "The price API rate limit was reached. Please wait a moment.", tr.Error(rl))

	untagged := apperrors.New(apperrors.KindInFlight, "", nil)
	assert.Equal(t, "A refresh is already in progress.", tr.Error(untagged))
	assert.Equal(t, "", tr.Error(nil))
}
