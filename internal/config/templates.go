package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Crypto Advisor Configuration

[market]
# CoinGecko-compatible REST API
base_url = "https://api.coingecko.com/api/v3"
# Per-request timeout
timeout = "20s"
# Maximum number of search suggestions
suggestion_limit = 7

[scheduler]
# Background refresh of the selected asset
data_refresh_interval = "7m"
# Background refresh of the advice for the selected asset
advice_refresh_interval = "2h"
# How long every fetch is paused after a rate-limit response
cooldown_duration = "90s"
# Quiet period before a search query is sent
debounce_quiet_period = "700ms"

[ai]
# Model name on the OpenAI-compatible endpoint
model = "gemini-2.5-flash"
# Gemini's OpenAI-compatible endpoint by default
base_url = "https://generativelanguage.googleapis.com/v1beta/openai/"
temperature = 0.5

[storage]
# SQLite file holding alerts and preferences
# path = "~/.config/crypto-advisor/advisor.db"

[server]
addr = ":8080"

[notifications]
# Show toasts for triggered alerts
enabled = true
# Ring the terminal bell on a toast
bell = true

[notifications.webhook]
enabled = false
url = ""

[ui]
# Enable colored output
color_enabled = true
# Interface language: "es" or "en" (empty = saved preference)
language = ""
`

const credentialsTemplate = `# Crypto Advisor Credentials
# WARNING: Keep this file secure! Do not commit to version control.
# GEMINI_API_KEY or API_KEY in the environment override this value.

[gemini]
api_key = ""
`

func createTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}

	return nil
}
