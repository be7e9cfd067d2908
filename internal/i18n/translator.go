// Package i18n resolves translation keys to localized strings and keeps the
// interface language preference.
package i18n

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/store"
)

// Locale is a supported interface language.
type Locale string

const (
	Spanish Locale = "es"
	English Locale = "en"

	DefaultLocale = Spanish
)

// ParseLocale validates s as a supported locale.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case Spanish:
		return Spanish, true
	case English:
		return English, true
	}
	return "", false
}

var tables = map[Locale]map[string]string{
	Spanish: spanish,
	English: english,
}

// Translate resolves key in the table for locale and substitutes {name}
// placeholders from params in a single pass. A key missing from the locale
// falls back to English, then to the key itself.
func Translate(locale Locale, key string, params map[string]any) string {
	table, ok := tables[locale]
	if !ok {
		table = tables[DefaultLocale]
	}
	s, ok := table[key]
	if !ok {
		if s, ok = tables[English][key]; !ok {
			return key
		}
	}
	if len(params) == 0 {
		return s
	}
	pairs := make([]string, 0, 2*len(params))
	for name, v := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Translator holds the active locale and persists changes to it.
type Translator struct {
	kv     store.KeyValue
	logger zerolog.Logger

	mu     sync.RWMutex
	locale Locale
}

// NewTranslator creates a translator in the default locale. kv may be nil.
func NewTranslator(kv store.KeyValue, logger zerolog.Logger) *Translator {
	return &Translator{
		kv:     kv,
		logger: logger,
		locale: DefaultLocale,
	}
}

// Init picks the starting locale: a valid override, then the stored
// preference, then the environment language, then Spanish. The choice is
// persisted.
func (t *Translator) Init(ctx context.Context, override string) Locale {
	locale, ok := ParseLocale(override)
	if !ok && t.kv != nil {
		if stored, found, err := t.kv.Get(ctx, store.LanguageKey); err == nil && found {
			locale, ok = ParseLocale(stored)
		}
	}
	if !ok {
		locale = localeFromEnv()
	}

	if err := t.SetLocale(ctx, locale); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to persist language preference")
	}
	return locale
}

func localeFromEnv() Locale {
	lang := os.Getenv("LANG")
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return English
	}
	return Spanish
}

// Locale returns the active locale.
func (t *Translator) Locale() Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locale
}

// SetLocale switches the active locale and persists it.
func (t *Translator) SetLocale(ctx context.Context, locale Locale) error {
	if _, ok := tables[locale]; !ok {
		return apperrors.NewValidationError("locale", "errors.invalidLocale")
	}

	t.mu.Lock()
	t.locale = locale
	t.mu.Unlock()

	if t.kv == nil {
		return nil
	}
	return t.kv.Set(ctx, store.LanguageKey, string(locale))
}

// T resolves key in the active locale.
func (t *Translator) T(key string, params map[string]any) string {
	return Translate(t.Locale(), key, params)
}

// Text renders tagged display text.
func (t *Translator) Text(text models.Text) string {
	if text.Key != "" {
		return t.T(text.Key, text.Params)
	}
	return text.Literal
}

// Error renders err for display. Tagged errors render their key; untagged
// errors fall back to the generic message for their kind.
func (t *Translator) Error(err error) string {
	if err == nil {
		return ""
	}
	te := apperrors.AsTagged(err)
	if te.Key != "" {
		return t.T(te.Key, te.Params)
	}
	return t.T(kindKey(te.Kind), te.Params)
}

func kindKey(k apperrors.Kind) string {
	switch k {
	case apperrors.KindRateLimited:
		return "app.rateLimitActiveGeneral"
	case apperrors.KindNotFound:
		return "errors.notFound"
	case apperrors.KindPartialData:
		return "errors.partialData"
	case apperrors.KindBackendUnavailable:
		return "app.geminiApiKeyError"
	case apperrors.KindMalformedResponse:
		return "errors.malformedResponse"
	case apperrors.KindValidation:
		return "errors.invalidInput"
	case apperrors.KindInFlight:
		return "errors.refreshInFlight"
	}
	return "errors.internal"
}
