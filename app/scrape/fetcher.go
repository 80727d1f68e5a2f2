package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

// ErrNoDeals indicates that every selected feed failed to produce a single
// usable deal. Partial success is not an error.
var ErrNoDeals = errors.New("all deals failed to load")

const (
	pageCacheTTL = 15 * time.Minute
	pageTimeout  = 10 * time.Second
	feedTimeout  = 30 * time.Second
	feedThrottle = 500 * time.Millisecond
)

type Fetcher struct {
	categories map[string]Category
	httpClient *http.Client
	parser     *gofeed.Parser
	pageCache  *cache.Cache
	userAgent  string
	maxPerFeed int
}

func NewFetcher(categories map[string]Category, httpClient *http.Client, userAgent string, maxPerFeed int) *Fetcher {
	return &Fetcher{
		categories: categories,
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		pageCache:  cache.New(pageCacheTTL, pageCacheTTL),
		userAgent:  userAgent,
		maxPerFeed: maxPerFeed,
	}
}

// Fetch pulls deal records for the selected categories. Individual feed and
// page failures are skipped; the call fails only when nothing at all loads.
func (f *Fetcher) Fetch(ctx context.Context, selected []string) ([]Deal, error) {
	var deals []Deal

	for i, name := range selected {
		category, ok := f.categories[name]
		if !ok {
			slog.Warn("Unknown category, skipping", "category", name)
			continue
		}

		feedDeals, err := f.fetchCategory(ctx, category)
		if err != nil {
			slog.Error("Failed to process feed", "category", name, "url", category.URL, "error", err)
			continue
		}

		deals = append(deals, feedDeals...)

		// Throttle between feeds to avoid hammering the servers
		if i < len(selected)-1 {
			select {
			case <-time.After(feedThrottle):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if len(deals) == 0 {
		return nil, fmt.Errorf("fetch deals for %v: %w", selected, ErrNoDeals)
	}

	return deals, nil
}

func (f *Fetcher) fetchCategory(ctx context.Context, category Category) ([]Deal, error) {
	data, err := f.get(ctx, category.URL, feedTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	slog.Debug("Feed fetched", "category", category.Name, "entries", len(feed.Items))

	entries := feed.Items
	if len(entries) > f.maxPerFeed {
		entries = entries[:f.maxPerFeed]
	}

	var deals []Deal
	for _, entry := range entries {
		deal, err := f.buildDeal(ctx, category.Name, entry)
		if err != nil {
			slog.Warn("Skipped deal", "title", entry.Title, "error", err)
			continue
		}
		deals = append(deals, *deal)
	}

	return deals, nil
}

func (f *Fetcher) buildDeal(ctx context.Context, categoryName string, entry *gofeed.Item) (*Deal, error) {
	if entry.Link == "" {
		return nil, fmt.Errorf("entry has no link")
	}

	pageHTML, err := f.getPage(ctx, entry.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to load deal content from %s: %w", entry.Link, err)
	}

	details, features, err := extractContent(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to load deal content from %s: %w", entry.Link, err)
	}

	return &Deal{
		Category: categoryName,
		Title:    entry.Title,
		Summary:  extractSummary(entry.Description),
		URL:      entry.Link,
		Details:  details,
		Features: features,
	}, nil
}

func (f *Fetcher) getPage(ctx context.Context, url string) ([]byte, error) {
	if cached, found := f.pageCache.Get(url); found {
		return cached.([]byte), nil
	}

	data, err := f.get(ctx, url, pageTimeout)
	if err != nil {
		return nil, err
	}

	f.pageCache.Set(url, data, cache.DefaultExpiration)
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
