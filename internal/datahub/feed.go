// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package datahub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"

	"github.com/tomtom215/agrisat/internal/logging"
)

// Headline sources.
const (
	SourceEarthObservatory = "nasa-earth-observatory"
	SourceStatic           = "static"
)

const (
	maxSummaryLen = 240
	maxFeedBytes  = 2 << 20
)

// Headline is a news item shown with the educational content.
type Headline struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Published *time.Time `json:"published,omitempty"`
	Source    string     `json:"source"`
}

// HeadlineSource fetches headlines.
type HeadlineSource interface {
	Headlines(ctx context.Context, limit int) ([]Headline, error)
}

// FeedClient reads an RSS/Atom feed such as the NASA Earth Observatory feed.
type FeedClient struct {
	http    *retryablehttp.Client
	url     string
	timeout time.Duration
}

// NewFeedClient creates a FeedClient for url.
func NewFeedClient(url string, timeout time.Duration, retries int) *FeedClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = logging.NewLeveledLogger("feed-http")
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &FeedClient{http: rc, url: url, timeout: timeout}
}

// Headlines fetches and parses the feed, returning at most limit items.
func (f *FeedClient) Headlines(ctx context.Context, limit int) ([]Headline, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]Headline, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(out) >= limit {
			break
		}
		h := Headline{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Summary: summarizeHTML(item.Description, maxSummaryLen),
			Source:  SourceEarthObservatory,
		}
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			h.Published = &t
		}
		out = append(out, h)
	}
	return out, nil
}

// summarizeHTML strips markup and truncates to limit runes on a word boundary.
func summarizeHTML(html string, limit int) string {
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("script, style").Remove()
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
