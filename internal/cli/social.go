package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"crypto-advisor/internal/experts"
	"crypto-advisor/internal/orchestrator"
)

func addSocialCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSocialCmd(app))
	rootCmd.AddCommand(newExpertsCmd(app))
	rootCmd.AddCommand(newShareCmd(app))
}

func newSocialCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "social <query> <post-url>...",
		Short: "Analyze the sentiment of posts on X about a cryptocurrency",
		Example: `  advisor social bitcoin https://x.com/saylor/status/1 https://x.com/cobie/status/2
  advisor social eth`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			tr := app.Translator

			if len(args) == 1 {
				best, err := app.Orch.SearchBest(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("%s", app.localize(err))
				}
				link := orchestrator.XSearchURL(best.Name)
				if output.IsJSON() {
					return output.JSON(map[string]string{"searchUrl": link})
				}
				output.Println(tr.T("cryptoXView.searchOnX", map[string]any{"url": link}))
				return nil
			}

			report, err := app.Orch.AnalyzeSocial(cmd.Context(), args[0], args[1:])
			if err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}
			if output.IsJSON() {
				return output.JSON(report)
			}

			a := report.Analysis
			output.Bold("%s", tr.T("cryptoXView.analysisTitle", map[string]any{"cryptoName": report.Asset.Name}))
			output.Printf("%s: %s\n", tr.T("cryptoXView.sentimentLabel", nil),
				output.SentimentLabel(a.Sentiment, tr.T("sentiment."+string(a.Sentiment), nil)))

			output.Printf("%s:\n", tr.T("cryptoXView.narrativesLabel", nil))
			if len(a.Narratives) == 0 {
				output.Dim("  %s", tr.T("cryptoXView.narrativesNotFound", nil))
			}
			for _, n := range a.Narratives {
				output.Printf("  • %s\n", tr.Text(n))
			}
			output.Printf("%s: %s\n", tr.T("cryptoXView.summaryLabel", nil), tr.Text(a.Summary))

			if len(report.FetchErrors) > 0 {
				output.Println()
				output.Warning("%s", tr.T("cryptoXView.fetchErrorTitle", nil))
				for _, fe := range report.FetchErrors {
					output.Printf("  - %s\n", tr.Error(fe))
				}
			}
			output.Println()
			output.Dim("%s", tr.T("cryptoXView.searchOnX", map[string]any{"url": report.SearchURL}))
			return nil
		},
	}
}

func newExpertsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "experts",
		Short: "List expert accounts worth following",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			tr := app.Translator
			list := experts.List()

			if output.IsJSON() {
				type entry struct {
					Name        string `json:"name"`
					Handle      string `json:"handle"`
					Description string `json:"description"`
					ProfileURL  string `json:"profileUrl"`
				}
				out := make([]entry, 0, len(list))
				for _, e := range list {
					out = append(out, entry{e.Name, e.Handle, tr.T(e.DescriptionKey, nil), e.ProfileURL()})
				}
				return output.JSON(out)
			}

			output.Bold("%s", tr.T("expertTradersView.title", nil))
			output.Dim("%s", tr.T("expertTradersView.description", nil))
			table := NewTable(output, "Name", "Profile", "")
			for _, e := range list {
				table.AddRow(e.Name, e.ProfileURL(), TruncateString(tr.T(e.DescriptionKey, nil), 50))
			}
			table.Render()
			output.Dim("%s", tr.T("expertTradersView.note", nil))
			return nil
		},
	}
}

func newShareCmd(app *App) *cobra.Command {
	var link string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the app on X",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			tr := app.Translator
			if link == "" {
				link = (&url.URL{Scheme: "http", Host: hostFor(app.Config.Server.Addr)}).String()
			}

			res, err := app.Sharer.Share(cmd.Context(), link, tr.T("shareAppModal.shareTextGeneric", nil))
			if err != nil {
				return fmt.Errorf("%s", app.localize(err))
			}
			if output.IsJSON() {
				return output.JSON(map[string]any{
					"opened":    res.Opened,
					"intentUrl": res.IntentURL,
					"message":   tr.Text(res.Message),
				})
			}
			if res.Opened {
				output.Success("%s", tr.Text(res.Message))
				return nil
			}
			output.Println(tr.Text(res.Message))
			output.Dim("%s", res.IntentURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&link, "url", "", "address to share (default: the local server)")
	return cmd
}

// hostFor turns a listen address such as ":8080" into a reachable host.
func hostFor(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
