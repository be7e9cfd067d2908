package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
)

const socialSystemPrompt = `You are an expert analyst of crypto market sentiment on social networks.
You receive a list of posts from X (Twitter) about a cryptocurrency. Some entries carry the post text; others only carry the URL, and for those you must infer the likely context from the URL itself.

Respond ONLY with a JSON object of this exact shape:
{"sentiment": "Positive" | "Negative" | "Neutral" | "Mixed", "narratives": ["short narrative", ...], "summary": "two or three sentence summary"}

Identify up to 5 key narratives. Do not include any text outside the JSON object.`

// previewLength bounds the raw response echoed back on parse failures.
const previewLength = 150

var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

var sentimentAliases = map[string]models.Sentiment{
	"positive":    models.SentimentPositive,
	"positivo":    models.SentimentPositive,
	"negative":    models.SentimentNegative,
	"negativo":    models.SentimentNegative,
	"neutral":     models.SentimentNeutral,
	"mixed":       models.SentimentMixed,
	"mixto":       models.SentimentMixed,
	"unknown":     models.SentimentUnknown,
	"desconocido": models.SentimentUnknown,
}

type socialResponse struct {
	Sentiment  *string  `json:"sentiment"`
	Narratives []string `json:"narratives"`
	Summary    *string  `json:"summary"`
}

func unknownAnalysis(summary models.Text) models.SocialAnalysis {
	return models.SocialAnalysis{
		Sentiment:  models.SentimentUnknown,
		Narratives: []models.Text{},
		Summary:    summary,
	}
}

// AnalyzeSocialPosts summarizes the sentiment of posts about assetName.
// Posts that failed to load are ignored; posts whose host was unreachable
// are passed by URL only. Failures never surface as errors.
func (a *Advisor) AnalyzeSocialPosts(ctx context.Context, assetName string, posts []models.SocialPost) models.SocialAnalysis {
	if !a.Available() {
		return unknownAnalysis(models.KeyText("services.gemini.tweetAnalysisUnavailable", nil))
	}

	prompt, usable := buildSocialPrompt(assetName, posts)
	if usable == 0 {
		return unknownAnalysis(models.KeyText("services.gemini.tweetAnalysisNoValidData", nil))
	}

	log := logging.WithOperation(a.logger, "social_analysis")
	raw, err := a.llm.CompleteWithSystem(ctx, socialSystemPrompt, prompt, CompletionOptions{
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		log.Error().Err(err).Str("asset", assetName).Msg("Error analyzing posts")
		return unknownAnalysis(models.KeyText("services.gemini.tweetAnalysisGenericError", map[string]any{
			"cryptoName": assetName,
			"details":    err.Error(),
		}))
	}

	analysis, ok := parseSocialAnalysis(raw)
	if !ok {
		log.Warn().Str("response", raw).Msg("Social analysis response has an unexpected shape")
		analysis = models.SocialAnalysis{
			Sentiment:  models.SentimentUnknown,
			Narratives: []models.Text{models.KeyText("services.gemini.tweetAnalysisJsonParseError", nil)},
			Summary: models.KeyText("services.gemini.tweetAnalysisUnparsableResponse", map[string]any{
				"responsePreview": preview(raw),
			}),
		}
	}
	analysis.RawResponse = raw
	return analysis
}

func buildSocialPrompt(assetName string, posts []models.SocialPost) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "Cryptocurrency: %s\n\nPosts:\n", assetName)

	usable := 0
	for _, p := range posts {
		switch {
		case p.Text != "":
			usable++
			fmt.Fprintf(&b, "Post %d (text): %s\n", usable, p.Text)
		case p.Unreachable && p.URL != "":
			usable++
			fmt.Fprintf(&b, "Post %d (URL, infer the context): %s\n", usable, p.URL)
		case p.Failed() && p.URL != "":
			usable++
			fmt.Fprintf(&b, "Post %d (load error, infer from the URL if possible): %s\n", usable, p.URL)
		}
	}
	return b.String(), usable
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[2])
	}
	return s
}

func parseSocialAnalysis(raw string) (models.SocialAnalysis, bool) {
	var resp socialResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return models.SocialAnalysis{}, false
	}
	if resp.Sentiment == nil || resp.Summary == nil || resp.Narratives == nil {
		return models.SocialAnalysis{}, false
	}

	narratives := make([]models.Text, 0, len(resp.Narratives))
	for _, n := range resp.Narratives {
		narratives = append(narratives, models.LiteralText(n))
	}
	return models.SocialAnalysis{
		Sentiment:  normalizeSentiment(*resp.Sentiment),
		Narratives: narratives,
		Summary:    models.LiteralText(*resp.Summary),
	}, true
}

func normalizeSentiment(s string) models.Sentiment {
	if v, ok := sentimentAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return models.SentimentUnknown
}

func preview(raw string) string {
	r := []rune(raw)
	if len(r) > previewLength {
		return string(r[:previewLength])
	}
	return raw
}
