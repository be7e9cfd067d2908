package orchestrator

import (
	"context"
	"net/url"
	"strings"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
)

// SocialReport is the outcome of a social sentiment run.
type SocialReport struct {
	Asset       models.SearchResult   `json:"asset"`
	SearchURL   string                `json:"searchUrl"`
	Posts       []models.SocialPost   `json:"posts"`
	FetchErrors []*apperrors.Error    `json:"fetchErrors,omitempty"`
	Analysis    models.SocialAnalysis `json:"analysis"`
}

// XSearchURL returns the X search page for name.
func XSearchURL(name string) string {
	return "https://x.com/search?" + url.Values{"q": {name}, "src": {"typed_query"}}.Encode()
}

// AnalyzeSocial resolves query to an asset, loads the posts at urls and
// asks the AI backend for their sentiment. Per-post failures are reported
// in the result; the run fails only when no post could be loaded.
func (o *Orchestrator) AnalyzeSocial(ctx context.Context, query string, urls []string) (SocialReport, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SocialReport{}, apperrors.NewValidationError("query", "cryptoXView.errorSearchCrypto")
	}

	best, err := o.SearchBest(ctx, query)
	if err != nil {
		return SocialReport{}, err
	}
	report := SocialReport{Asset: best, SearchURL: XSearchURL(best.Name)}

	var links []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if strings.HasPrefix(u, "http") {
			links = append(links, u)
		}
	}
	if len(links) == 0 {
		return report, apperrors.NewValidationError("urls", "cryptoXView.errorNoValidTweetLinks")
	}
	if o.fetcher == nil {
		return report, apperrors.New(apperrors.KindInternal, "errors.internal", nil)
	}

	report.Posts = o.fetcher.FetchAll(ctx, links)
	for _, p := range report.Posts {
		if p.Failed() {
			report.FetchErrors = append(report.FetchErrors, p.Err)
		}
	}
	if len(report.FetchErrors) == len(report.Posts) {
		o.logger.Warn().Str("asset", best.ID).Int("posts", len(report.Posts)).Msg("No social post could be loaded")
		return report, apperrors.New(apperrors.KindMalformedResponse, "cryptoXView.errorFetchingAllTweets", nil)
	}

	if o.advisor == nil {
		report.Analysis = models.SocialAnalysis{
			Sentiment: models.SentimentUnknown,
			Summary:   models.KeyText("services.gemini.tweetAnalysisUnavailable", nil),
		}
		return report, nil
	}
	report.Analysis = o.advisor.AnalyzeSocialPosts(ctx, best.Name, report.Posts)
	return report, nil
}
