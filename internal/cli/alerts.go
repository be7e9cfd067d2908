package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/pkg/utils"
)

func addAlertCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "alert",
		Aliases: []string{"alerts"},
		Short:   "Manage price alerts",
		Long:    "Create, list and delete one-shot price alerts. Alerts fire once, while a dashboard is watching the asset.",
	}
	cmd.AddCommand(newAlertAddCmd(app))
	cmd.AddCommand(newAlertListCmd(app))
	cmd.AddCommand(newAlertRemoveCmd(app))
	rootCmd.AddCommand(cmd)
}

// parseCondition accepts the short and the stored spelling of a condition.
func parseCondition(s string) (models.AlertCondition, error) {
	switch strings.ToLower(s) {
	case "drops", "drop", "below", strings.ToLower(string(models.AlertPriceDropsTo)):
		return models.AlertPriceDropsTo, nil
	case "rises", "rise", "above", strings.ToLower(string(models.AlertPriceRisesTo)):
		return models.AlertPriceRisesTo, nil
	}
	return "", apperrors.NewValidationError("condition", "errors.invalidAlert")
}

func newAlertAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <query> <drops|rises> <price>",
		Short: "Create an alert against the current price",
		Example: `  advisor alert add bitcoin drops 49000
  advisor alert add eth rises 4,200.50`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			cond, err := parseCondition(args[1])
			if err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}
			price, err := utils.ParsePrice(args[2])
			if err != nil {
				return fmt.Errorf("%s", app.Translator.T("setAlertModal.errorInvalidPrice", nil))
			}

			asset, err := selectQuery(cmd.Context(), app, output, args[0])
			if err != nil {
				return err
			}
			alert, err := app.Orch.AddAlert(cmd.Context(), price, cond)
			if err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}

			if output.IsJSON() {
				return output.JSON(alert)
			}
			output.Success("✓ %s", app.Translator.T("app.alertCreated", map[string]any{"cryptoName": asset.Name}))
			output.Printf("  %s  %s  (%s %s)\n", alert.ID, conditionText(app.Translator, alert),
				app.Translator.T("setAlertModal.currentPriceLabel", nil), utils.FormatUSD(asset.CurrentPrice))
			return nil
		},
	}
}

func newAlertListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			alerts := app.Alerts.All()
			if !all {
				active := alerts[:0]
				for _, a := range alerts {
					if a.Active {
						active = append(active, a)
					}
				}
				alerts = active
			}
			if output.IsJSON() {
				return output.JSON(alerts)
			}
			output.Bold("%s", app.Translator.T("app.activeAlertsTitle", nil))
			renderAlerts(output, app.Translator, alerts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include alerts that already fired")
	return cmd
}

func newAlertRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an alert (an unambiguous id prefix is accepted)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			id, err := resolveAlertID(app.Orch.State(), args[0])
			if err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}
			if _, err := app.Orch.RemoveAlert(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": id})
			}
			output.Success("✓ %s", app.Translator.T("app.alertDeleted", nil))
			return nil
		},
	}
}
