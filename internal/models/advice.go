package models

import (
	"time"

	apperrors "crypto-advisor/internal/errors"
)

// Text is display text that is either a literal string or a translation key
// with named parameters. Only the translator resolves it.
type Text struct {
	Literal string         `json:"literal,omitempty"`
	Key     string         `json:"key,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// LiteralText wraps an already-displayable string.
func LiteralText(s string) Text {
	return Text{Literal: s}
}

// KeyText references a translation entry.
func KeyText(key string, params map[string]any) Text {
	return Text{Key: key, Params: params}
}

// IsZero reports whether the text carries nothing.
func (t Text) IsZero() bool {
	return t.Literal == "" && t.Key == ""
}

// AdviceType is the recommendation direction.
type AdviceType string

const (
	AdviceBuy  AdviceType = "BUY"
	AdviceSell AdviceType = "SELL"
	AdviceHold AdviceType = "HOLD"
	AdviceInfo AdviceType = "INFO"
)

// Advice is one AI recommendation for an asset snapshot.
type Advice struct {
	ID          string     `json:"id"`
	Asset       Asset      `json:"crypto"`
	Type        AdviceType `json:"adviceType"`
	Message     Text       `json:"message"`
	Detail      *Text      `json:"detailedMessage,omitempty"`
	CreatedAt   time.Time  `json:"timestamp"`
	RawResponse string     `json:"rawResponse,omitempty"`
}

// Sentiment is the aggregate tone of a set of social posts.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentMixed    Sentiment = "Mixed"
	SentimentUnknown  Sentiment = "Unknown"
)

// SocialAnalysis is the result of analyzing social posts about an asset.
type SocialAnalysis struct {
	Sentiment   Sentiment `json:"sentiment"`
	Narratives  []Text    `json:"narratives"`
	Summary     Text      `json:"summary"`
	RawResponse string    `json:"rawResponse,omitempty"`
}

// SocialPost is one fetched social-media post. Exactly one of Text, Err or
// Unreachable describes the outcome.
type SocialPost struct {
	URL         string           `json:"url"`
	Text        string           `json:"text,omitempty"`
	Err         *apperrors.Error `json:"error,omitempty"`
	Unreachable bool             `json:"unreachable,omitempty"`
}

// Failed reports whether the post produced neither text nor a URL the
// analysis can infer from.
func (p SocialPost) Failed() bool {
	return p.Err != nil
}
