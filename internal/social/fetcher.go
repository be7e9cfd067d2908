// Package social loads the text of public X (Twitter) posts through the
// oEmbed endpoint.
package social

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
)

// DefaultOEmbedURL is the public oEmbed endpoint for X posts.
const DefaultOEmbedURL = "https://publish.twitter.com/oembed"

var trailingShortLink = regexp.MustCompile(`\s*https?://t\.co/\w+\s*$`)

// Fetcher resolves post URLs to post text.
type Fetcher struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher. An empty endpoint selects DefaultOEmbedURL.
func NewFetcher(endpoint string, timeout time.Duration, logger zerolog.Logger) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultOEmbedURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logging.WithComponent(logger, "social"),
	}
}

type oembedResponse struct {
	HTML string `json:"html"`
}

func failed(postURL, key string, params map[string]any) models.SocialPost {
	return models.SocialPost{
		URL: postURL,
		Err: apperrors.New(apperrors.KindMalformedResponse, key, params),
	}
}

// Fetch loads one post. Failures are reported in the returned post, never
// as an error; a transport failure marks the post Unreachable so the
// analysis can still reason from its URL.
func (f *Fetcher) Fetch(ctx context.Context, postURL string) models.SocialPost {
	postURL = strings.TrimSpace(postURL)
	if postURL == "" {
		return models.SocialPost{Err: apperrors.New(apperrors.KindValidation, "cryptoXView.emptyUrlError", nil)}
	}
	if u, err := url.Parse(postURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return models.SocialPost{
			URL: postURL,
			Err: apperrors.New(apperrors.KindValidation, "cryptoXView.invalidUrlError", map[string]any{"url": postURL}),
		}
	}

	endpoint := f.endpoint + "?" + url.Values{
		"url":         {postURL},
		"omit_script": {"true"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.SocialPost{URL: postURL, Unreachable: true}
	}

	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		logging.LogAPICall(f.logger, http.MethodGet, "oembed", 0, time.Since(start), err)
		return models.SocialPost{URL: postURL, Unreachable: true}
	}
	defer resp.Body.Close()
	logging.LogAPICall(f.logger, http.MethodGet, "oembed", resp.StatusCode, time.Since(start), nil)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return failed(postURL, "cryptoXView.tweetNotFoundError", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.SocialPost{
			URL: postURL,
			Err: apperrors.NewRateLimited("oembed", "cryptoXView.rateLimitProxyError", nil),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return failed(postURL, "cryptoXView.httpErrorProxy", map[string]any{"status": resp.StatusCode, "url": postURL})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SocialPost{URL: postURL, Unreachable: true}
	}

	var oe oembedResponse
	if err := json.Unmarshal(body, &oe); err != nil || strings.TrimSpace(oe.HTML) == "" {
		return failed(postURL, "cryptoXView.noHtmlError", nil)
	}

	text, ok := ExtractText(oe.HTML)
	if !ok {
		f.logger.Warn().Str("url", postURL).Msg("No text found in embed HTML")
		return failed(postURL, "cryptoXView.extractionError", nil)
	}
	return models.SocialPost{URL: postURL, Text: text}
}

// FetchAll loads every URL concurrently and returns the posts in input order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []models.SocialPost {
	posts := make([]models.SocialPost, len(urls))
	done := make(chan struct{}, len(urls))
	for i, u := range urls {
		go func(i int, u string) {
			posts[i] = f.Fetch(ctx, u)
			done <- struct{}{}
		}(i, u)
	}
	for range urls {
		<-done
	}
	return posts
}

// ExtractText returns the text of the first paragraph inside the embed's
// blockquote, or of the first paragraph anywhere, with a trailing t.co link
// removed.
func ExtractText(fragment string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}

	p := findParagraph(doc, true)
	if p == nil {
		p = findParagraph(doc, false)
	}
	if p == nil {
		return "", false
	}

	var sb strings.Builder
	collectText(p, &sb)
	text := strings.TrimSpace(trailingShortLink.ReplaceAllString(sb.String(), ""))
	if text == "" {
		return "", false
	}
	return text, true
}

func findParagraph(n *html.Node, inBlockquote bool) *html.Node {
	if n.Type == html.ElementNode && n.Data == "p" {
		if !inBlockquote || hasAncestor(n, "blockquote") {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findParagraph(c, inBlockquote); found != nil {
			return found
		}
	}
	return nil
}

func hasAncestor(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		sb.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "br":
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
