package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCoinGecko serves bitcoin at 50000 with a three-day history.
func fakeCoinGecko(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"coins":[{"id":"bitcoin","name":"Bitcoin","symbol":"btc","thumb":""},{"id":"bitcoin-cash","name":"Bitcoin Cash","symbol":"bch","thumb":""}]}`)
	})
	mux.HandleFunc("/coins/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"bitcoin","symbol":"btc","name":"Bitcoin","market_data":{"current_price":{"usd":50000},"price_change_percentage_24h":-1.5,"market_cap":{"usd":980000000000},"total_volume":{"usd":30000000000}}}`)
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[[1714521600000,51000],[1714608000000,50500],[1714694400000,50000]]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type cliEnv struct {
	configDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return newCLIEnvWithServer(t, fakeCoinGecko(t))
}

// newCLIEnvWithServer points the market client at srv.
func newCLIEnvWithServer(t *testing.T, srv *httptest.Server) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "ADVISOR_AI_BASE_URL", "ADVISOR_AI_MODEL", "ADVISOR_LANGUAGE", "LANG"} {
		t.Setenv(k, "")
	}
	t.Setenv("COINGECKO_BASE_URL", srv.URL)
	t.Setenv("ADVISOR_DB_PATH", filepath.Join(dir, "advisor.db"))
	return &cliEnv{configDir: filepath.Join(dir, "config")}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(zerolog.Nop())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", e.configDir, "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionJSON(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--json", "version")
	require.NoError(t, err)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v["version"])
}

func TestLanguageIsPersisted(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "Language switched to en")

	out, err = env.run(t, "--json", "lang")
	require.NoError(t, err)
	assert.JSONEq(t, `{"locale":"en"}`, out)

	_, err = env.run(t, "lang", "fr")
	require.Error(t, err)
	assert.Equal(t, "Unsupported language.", err.Error())
}

func TestExpertsJSON(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--json", "--lang", "en", "experts")
	require.NoError(t, err)

	var list []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 5)
	assert.Equal(t, "https://x.com/VitalikButerin", list[0]["profileUrl"])
	assert.Equal(t, "Co-founder of Ethereum.", list[0]["description"])
}

func TestSearchJSON(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--json", "search", "bit")
	require.NoError(t, err)

	var results []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "bitcoin", results[0]["id"])
	assert.Equal(t, "BTC", results[0]["symbol"])
}

func TestSearchReportsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	env := newCLIEnvWithServer(t, srv)

	out, err := env.run(t, "--lang", "en", "search", "bitcoin")
	require.Error(t, err)
	assert.Equal(t, "The price API rate limit was reached. Please wait a moment.", err.Error())
	assert.NotContains(t, out, "No suggestions found")
}

func TestAdviceWithoutAIKey(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--json", "--lang", "en", "advice", "bitcoin")
	require.NoError(t, err)

	var resp struct {
		Crypto struct {
			ID           string  `json:"id"`
			CurrentPrice float64 `json:"currentPrice"`
			ChartSymbol  string  `json:"chartSymbol"`
		} `json:"crypto"`
		Advice struct {
			Type    string `json:"adviceType"`
			Message struct {
				Key string `json:"key"`
			} `json:"message"`
		} `json:"advice"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "bitcoin", resp.Crypto.ID)
	assert.Equal(t, 50000.0, resp.Crypto.CurrentPrice)
	assert.Equal(t, "BTCUSD", resp.Crypto.ChartSymbol)
	assert.Equal(t, "INFO", resp.Advice.Type)
	assert.Equal(t, "services.gemini.adviceUnavailable", resp.Advice.Message.Key)
}

func TestAlertLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "--lang", "en", "alert", "add", "bitcoin", "drops", "60000")
	require.Error(t, err)
	assert.Equal(t, "For a drop alert, the target must be lower than the current price.", err.Error())

	_, err = env.run(t, "--lang", "en", "alert", "add", "bitcoin", "sideways", "1")
	require.Error(t, err)
	assert.Equal(t, "The alert data is not valid.", err.Error())

	out, err := env.run(t, "--json", "alert", "add", "bitcoin", "drops", "49,000")
	require.NoError(t, err)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	id := created["id"].(string)
	assert.Equal(t, 49000.0, created["targetPrice"])
	assert.Equal(t, "PRICE_DROPS_TO", created["condition"])

	out, err = env.run(t, "--json", "alert", "list")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	out, err = env.run(t, "--lang", "en", "alert", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Drops to $49,000.00")
	assert.Contains(t, out, "Bitcoin (BTC)")

	out, err = env.run(t, "--lang", "en", "alert", "rm", id[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Alert deleted.")

	out, err = env.run(t, "--json", "alert", "list")
	require.NoError(t, err)
	list = nil
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Empty(t, list)

	_, err = env.run(t, "--lang", "en", "alert", "rm", "nope")
	require.Error(t, err)
	assert.Equal(t, "The resource was not found.", err.Error())
}

func TestShareRejectsLocalFiles(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "--lang", "en", "share", "--url", "file:///tmp/index.html")
	require.Error(t, err)
	assert.Equal(t, "An app opened from a local file cannot be shared.", err.Error())
}

func TestConfigValidate(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--json", "config", "validate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true}`, out)

	out, err = env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.configDir, strings.TrimSpace(out))
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	env := newCLIEnv(t)
	const key = "AIzaSyA1234567890abcdefghijklmnopqrstu"
	t.Setenv("GEMINI_API_KEY", key)

	out, err := env.run(t, "--json", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, key)
	assert.Contains(t, out, "AIza")

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, key)
}
