package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/orchestrator"
	"crypto-advisor/internal/stream"
	"crypto-advisor/pkg/utils"
)

func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSearchCmd(app))
	rootCmd.AddCommand(newAdviceCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
}

// waitFor blocks until an event of type t arrives on ch or ctx ends.
func waitFor(ctx context.Context, ch <-chan stream.Event, t stream.EventType) (stream.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return stream.Event{}, ctx.Err()
		case e, ok := <-ch:
			if !ok {
				return stream.Event{}, errors.New("event stream closed")
			}
			if e.Type == t {
				return e, nil
			}
		}
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List matching cryptocurrencies",
		Example: `  advisor search bit
  advisor search ethereum --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Market.Timeout+2*app.Config.Scheduler.DebounceQuietPeriod)
			defer cancel()

			app.Hub.Start(ctx)
			id, events := app.Orch.Subscribe()
			defer app.Orch.Unsubscribe(id)

			app.Orch.SetQuery(query)
			if _, err := waitFor(ctx, events, stream.EventSuggestions); err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			st := app.Orch.State()
			if st.Cooldown.Active {
				return fmt.Errorf("%s", app.localize(cooldownNotice(st)))
			}
			search := st.Search
			if search.Error != nil {
				return fmt.Errorf("%s", app.localize(search.Error))
			}
			if output.IsJSON() {
				return output.JSON(search.Suggestions)
			}
			if len(search.Suggestions) == 0 {
				output.Dim("%s", app.Translator.T("app.noSuggestionsFound", nil))
				return nil
			}

			table := NewTable(output, "ID", "Name", "Symbol")
			for _, s := range search.Suggestions {
				table.AddRow(s.ID, s.Name, s.Symbol)
			}
			table.Render()
			return nil
		},
	}
}

// cooldownNotice is the message shown while the rate-limit gate is closed.
func cooldownNotice(st orchestrator.State) error {
	switch {
	case st.Cooldown.Notice != nil:
		return st.Cooldown.Notice
	case st.GlobalError != nil:
		return st.GlobalError
	}
	return apperrors.New(apperrors.KindRateLimited, "app.rateLimitActiveGeneral", nil)
}

// selectQuery resolves query and makes it the selected asset. Partial data
// is reported but not fatal.
func selectQuery(ctx context.Context, app *App, output *Output, query string) (models.Asset, error) {
	best, err := app.Orch.SearchBest(ctx, query)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s", app.localize(err))
	}
	if err := app.Orch.SelectAsset(ctx, best); err != nil {
		if !apperrors.Is(err, apperrors.ErrPartialData) {
			return models.Asset{}, fmt.Errorf("%s", app.localize(err))
		}
		if !output.IsJSON() {
			output.Warning("%s", app.localize(err))
		}
	}
	asset, ok := app.Orch.State().SelectedAsset()
	if !ok {
		return models.Asset{}, fmt.Errorf("%s", app.Translator.T("errors.noSelection", nil))
	}
	return asset, nil
}

func newAdviceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "advice <query>",
		Short: "Show market data and AI advice for a cryptocurrency",
		Example: `  advisor advice bitcoin
  advisor advice sol --lang en`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			asset, err := selectQuery(cmd.Context(), app, output, strings.Join(args, " "))
			if err != nil {
				return err
			}

			st := app.Orch.State()
			if output.IsJSON() {
				return output.JSON(map[string]any{"crypto": asset, "advice": st.Advice})
			}
			renderAsset(output, app.Translator, asset)
			if st.Advice != nil {
				output.Println()
				renderAdvice(output, app.Translator, *st.Advice)
			}
			output.Println()
			output.Dim("%s", app.Translator.T("app.footerDisclaimer", nil))
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <query>",
		Short: "Live dashboard with background refresh and alert toasts",
		Long: `Select a cryptocurrency and keep its data and advice fresh until
interrupted. Commands typed on stdin:

  r                    refresh now
  a                    ask for advice now
  drops <price>        add an alert for a drop to price
  rises <price>        add an alert for a rise to price
  rm <id>              delete an alert (id prefix accepted)
  x <id>               dismiss a triggered notification
  q                    quit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			output := NewOutput(cmd)
			app.Hub.Start(ctx)
			id, events := app.Orch.Subscribe()
			defer app.Orch.Unsubscribe(id)

			if _, err := selectQuery(ctx, app, output, strings.Join(args, " ")); err != nil {
				return err
			}

			go app.Orch.Start(ctx)
			go readWatchCommands(ctx, cancel, app, output, cmd.InOrStdin())

			w := &watcher{app: app, output: output}
			w.render()
			return w.loop(ctx, events)
		},
	}
}

// watcher redraws the dashboard at most once per frame.
type watcher struct {
	app    *App
	output *Output
}

const watchFrame = 250 * time.Millisecond

func (w *watcher) render() {
	st := w.app.Orch.State()
	if w.output.IsJSON() {
		w.output.JSON(st)
		return
	}
	if w.output.ColorEnabled() {
		w.output.Printf("\033[H\033[2J")
	}
	renderState(w.output, w.app.Translator, st)
}

func (w *watcher) loop(ctx context.Context, events <-chan stream.Event) error {
	frame := time.NewTicker(watchFrame)
	defer frame.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			dirty = true
		case <-frame.C:
			if dirty {
				w.render()
				dirty = false
			}
		}
	}
}

// readWatchCommands applies stdin commands until q, EOF or ctx ends.
func readWatchCommands(ctx context.Context, quit context.CancelFunc, app *App, output *Output, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := runWatchCommand(ctx, app, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				quit()
				return
			}
			output.Error("%s", app.localize(err))
		}
	}
}

var errQuit = errors.New("quit")

// runWatchCommand executes one line typed in the watch dashboard.
func runWatchCommand(ctx context.Context, app *App, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	asset, selected := app.Orch.State().SelectedAsset()
	switch fields[0] {
	case "q", "quit", "exit":
		return errQuit
	case "r", "refresh":
		if !selected {
			return apperrors.NewValidationError("selection", "errors.noSelection")
		}
		_, err := app.Orch.RefreshAsset(ctx, asset.ID, asset.Symbol, asset.Name)
		if apperrors.Is(err, apperrors.ErrPartialData) {
			return nil
		}
		return err
	case "a", "advice":
		if !selected {
			return apperrors.NewValidationError("selection", "errors.noSelection")
		}
		app.Orch.RequestAdvice(ctx, asset, true)
		return nil
	case "drops", "rises":
		if len(fields) != 2 {
			return apperrors.NewValidationError("price", "setAlertModal.errorInvalidPrice")
		}
		price, err := utils.ParsePrice(fields[1])
		if err != nil {
			return apperrors.NewValidationError("price", "setAlertModal.errorInvalidPrice")
		}
		cond := models.AlertPriceRisesTo
		if fields[0] == "drops" {
			cond = models.AlertPriceDropsTo
		}
		_, err = app.Orch.AddAlert(ctx, price, cond)
		return err
	case "rm":
		if len(fields) != 2 {
			return apperrors.NewValidationError("id", "errors.invalidInput")
		}
		id, err := resolveAlertID(app.Orch.State(), fields[1])
		if err != nil {
			return err
		}
		_, err = app.Orch.RemoveAlert(ctx, id)
		return err
	case "x", "dismiss":
		if len(fields) != 2 {
			return apperrors.NewValidationError("id", "errors.invalidInput")
		}
		id, err := matchAlertID(app.Orch.State().Triggered, fields[1])
		if err != nil {
			return err
		}
		app.Orch.DismissTriggered(id)
		return nil
	default:
		return apperrors.NewValidationError("command", "errors.invalidInput")
	}
}

// resolveAlertID expands an id prefix to exactly one alert id.
func resolveAlertID(st orchestrator.State, prefix string) (string, error) {
	return matchAlertID(st.Alerts, prefix)
}

// matchAlertID expands prefix to the id of exactly one of alerts.
func matchAlertID(alerts []models.Alert, prefix string) (string, error) {
	var match string
	for _, a := range alerts {
		if strings.HasPrefix(a.ID, prefix) {
			if match != "" {
				return "", apperrors.NewValidationError("id", "errors.invalidInput")
			}
			match = a.ID
		}
	}
	if match == "" {
		return "", apperrors.New(apperrors.KindNotFound, "errors.notFound", nil)
	}
	return match, nil
}
