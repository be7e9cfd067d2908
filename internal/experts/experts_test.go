package experts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-advisor/internal/i18n"
)

func TestListIsCuratedAndCopied(t *testing.T) {
	list := List()
	require.Len(t, list, 5)
	assert.Equal(t, "Vitalik Buterin", list[0].Name)
	assert.Equal(t, "https://x.com/VitalikButerin", list[0].ProfileURL())

	list[0].Name = "changed"
	assert.Equal(t, "Vitalik Buterin", List()[0].Name)
}

func TestDescriptionsAreTranslated(t *testing.T) {
	for _, e := range List() {
		for _, loc := range []i18n.Locale{i18n.Spanish, i18n.English} {
			assert.NotEqual(t, e.DescriptionKey, i18n.Translate(loc, e.DescriptionKey, nil), "%s/%s", loc, e.Handle)
		}
	}
}

func TestFind(t *testing.T) {
	e, ok := Find("@Saylor")
	require.True(t, ok)
	assert.Equal(t, "Michael Saylor", e.Name)

	_, ok = Find("nobody")
	assert.False(t, ok)
}
