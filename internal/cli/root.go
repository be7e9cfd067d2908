// Package cli provides the command-line interface of the crypto advisor.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"crypto-advisor/internal/agents"
	"crypto-advisor/internal/config"
	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/i18n"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/market"
	"crypto-advisor/internal/notify"
	"crypto-advisor/internal/orchestrator"
	"crypto-advisor/internal/resilience"
	"crypto-advisor/internal/security"
	"crypto-advisor/internal/share"
	"crypto-advisor/internal/social"
	"crypto-advisor/internal/store"
	"crypto-advisor/internal/stream"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-01"
)

// annotationNoInit marks commands that run without loading configuration.
const annotationNoInit = "no-init"

// App holds the application dependencies. It is wired once per process,
// before the first command runs.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      store.KeyValue
	Translator *i18n.Translator
	Market     *market.Client
	Advisor    *agents.Advisor
	Fetcher    *social.Fetcher
	Alerts     *store.AlertStore
	Notifier   *notify.MultiNotifier
	Terminal   *notify.TerminalNotifier
	Monitor    *stream.AlertMonitor
	Cooldown   *resilience.Cooldown
	Hub        *stream.Hub
	Orch       *orchestrator.Orchestrator
	Sharer     *share.Sharer
}

// NewRootCmd creates the root command. Configuration is loaded from the
// --config directory when a command runs.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	app := &App{Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "AI Crypto Advisor - market data, AI advice and price alerts",
		Long: `AI Crypto Advisor looks up cryptocurrencies on CoinGecko, asks a
generative text model for buy/sell/hold commentary, keeps one-shot price
alerts and analyzes the sentiment of posts on X.

Run 'advisor watch <coin>' for the live terminal dashboard or
'advisor serve' for the HTTP and WebSocket API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if cmd.Annotations[annotationNoInit] == "true" {
				return nil
			}
			dir, _ := cmd.Flags().GetString("config")
			lang, _ := cmd.Flags().GetString("lang")
			return app.init(cmd.Context(), dir, lang)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/crypto-advisor)")
	rootCmd.PersistentFlags().String("lang", "", "interface language for this run (es, en)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addAlertCommands(rootCmd, app)
	addSocialCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// init wires every component from the loaded configuration.
func (app *App) init(ctx context.Context, configDir, langOverride string) error {
	if app.Orch != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	app.Config = cfg
	logger := app.Logger

	kv, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open store, using memory; alerts will not persist")
		app.Store = store.NewMemoryStore()
	} else {
		app.Store = kv
		logger.Debug().Str("path", cfg.Storage.Path).Msg("SQLite store initialized")
	}

	if langOverride == "" {
		langOverride = cfg.UI.Language
	}
	app.Translator = i18n.NewTranslator(app.Store, logger)
	app.Translator.Init(ctx, langOverride)

	app.Market = market.NewClient(market.ClientConfig{
		BaseURL:         cfg.Market.BaseURL,
		Timeout:         cfg.Market.Timeout,
		SuggestionLimit: cfg.Market.SuggestionLimit,
	}, logger)

	var llm agents.LLMClient
	if cfg.HasAIKey() {
		client := agents.NewOpenAIClient(cfg.Credentials.Gemini.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
		llm = client
		logger.Debug().Str("model", client.GetModel()).Msg("AI client initialized")
	}
	app.Advisor = agents.NewAdvisor(llm, logger)
	app.Advisor.SetTemperature(cfg.AI.Temperature)
	app.Advisor.SetLanguage(func() string { return string(app.Translator.Locale()) })

	app.Fetcher = social.NewFetcher("", cfg.Market.Timeout, logger)

	app.Alerts = store.NewAlertStore(app.Store, logger)
	if err := app.Alerts.Load(ctx); err != nil {
		return fmt.Errorf("loading alerts: %w", err)
	}

	app.Notifier = notify.NewMultiNotifier(cfg.Notifications, app.Translator, logger)
	app.Terminal = notify.NewTerminalNotifier(nil)
	app.Terminal.SetBellEnabled(cfg.Notifications.Bell)
	app.Terminal.SetColorEnabled(cfg.UI.ColorEnabled)
	app.Terminal.SetEnabled(cfg.Notifications.Enabled)
	app.Notifier.AddChannel(app.Terminal)

	app.Monitor = stream.NewAlertMonitor(app.Alerts, nil, app.Notifier, logger)
	app.Cooldown = resilience.NewCooldown(resilience.CooldownConfig{
		Duration:     cfg.Scheduler.CooldownDuration,
		TickInterval: resilience.DefaultCooldownConfig().TickInterval,
	}, logger)
	app.Hub = stream.NewHub()

	app.Orch = orchestrator.New(orchestrator.Config{
		DataRefreshInterval:   cfg.Scheduler.DataRefreshInterval,
		AdviceRefreshInterval: cfg.Scheduler.AdviceRefreshInterval,
		DebounceQuietPeriod:   cfg.Scheduler.DebounceQuietPeriod,
	}, orchestrator.Deps{
		Market:   app.Market,
		Advisor:  app.Advisor,
		Fetcher:  app.Fetcher,
		Alerts:   app.Alerts,
		Monitor:  app.Monitor,
		Cooldown: app.Cooldown,
		Hub:      app.Hub,
		Locales:  app.Translator,
	}, logger)

	app.Sharer = share.New(logger)
	return nil
}

// Close waits for pending notifications and releases the store.
func (app *App) Close() error {
	if app.Monitor != nil {
		app.Monitor.Wait()
	}
	if app.Hub != nil {
		app.Hub.Stop()
	}
	if app.Store != nil {
		return app.Store.Close()
	}
	return nil
}

// localize renders err in the active language. Errors from outside the
// application keep their own message.
func (app *App) localize(err error) string {
	if app.Translator == nil {
		return err.Error()
	}
	var te *apperrors.Error
	if !apperrors.As(err, &te) {
		return err.Error()
	}
	return app.Translator.Error(err)
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newLangCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{annotationNoInit: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("AI Crypto Advisor v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				masked := *app.Config
				masked.Credentials.Gemini.APIKey = security.MaskCredential(masked.Credentials.Gemini.APIKey)
				masked.Notifications.Webhook.URL = security.MaskURL(masked.Notifications.Webhook.URL)
				return output.JSON(masked)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{"path": dir})
			} else {
				output.Println(dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Market")
	output.Printf("  Base URL:         %s\n", cfg.Market.BaseURL)
	output.Printf("  Timeout:          %s\n", cfg.Market.Timeout)
	output.Printf("  Suggestions:      %d\n", cfg.Market.SuggestionLimit)
	output.Println()

	output.Bold("Scheduler")
	output.Printf("  Data refresh:     %s\n", cfg.Scheduler.DataRefreshInterval)
	output.Printf("  Advice refresh:   %s\n", cfg.Scheduler.AdviceRefreshInterval)
	output.Printf("  Cooldown:         %s\n", cfg.Scheduler.CooldownDuration)
	output.Printf("  Search debounce:  %s\n", cfg.Scheduler.DebounceQuietPeriod)
	output.Println()

	output.Bold("AI")
	output.Printf("  Model:            %s\n", cfg.AI.Model)
	output.Printf("  Base URL:         %s\n", cfg.AI.BaseURL)
	if cfg.HasAIKey() {
		output.Printf("  API key:          %s\n", security.MaskCredential(cfg.Credentials.Gemini.APIKey))
	} else {
		output.Printf("  API key:          %s\n", "(not set)")
	}
	output.Println()

	output.Bold("Storage & Server")
	output.Printf("  Database:         %s\n", cfg.Storage.Path)
	output.Printf("  Listen address:   %s\n", cfg.Server.Addr)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:          %v\n", cfg.Notifications.Enabled)
	output.Printf("  Bell:             %v\n", cfg.Notifications.Bell)
	output.Printf("  Webhook:          %v %s\n", cfg.Notifications.Webhook.Enabled, security.MaskURL(cfg.Notifications.Webhook.URL))
}

func newLangCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [es|en]",
		Short: "Show or switch the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 1 {
				if err := app.Orch.SetLanguage(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("%s", app.localize(err))
				}
			}
			locale := app.Translator.Locale()
			if output.IsJSON() {
				return output.JSON(map[string]string{"locale": string(locale)})
			}
			if len(args) == 1 {
				output.Success("%s", app.Translator.T("navigation.languageChanged", map[string]any{"language": string(locale)}))
				return nil
			}
			output.Println(string(locale))
			return nil
		},
	}
}
