package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/mmcdole/gofeed"
)

// FeedIngestor pulls candidate items from an RSS/Atom feed. The feed GUID
// (falling back to the entry link) becomes the dedupe key, so repeated
// polling of the same feed is safe.
type FeedIngestor struct {
	url          string
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	userAgent    string
}

func NewFeedIngestor(url string, httpClient *http.Client, userAgent string) *FeedIngestor {
	return &FeedIngestor{
		url:          url,
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		userAgent:    userAgent,
	}
}

func (f *FeedIngestor) FetchItems(ctx context.Context) ([]IngestedItem, error) {
	data, err := f.fetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := f.gofeedParser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]IngestedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		sourceID := cmp.Or(entry.GUID, entry.Link)
		if sourceID == "" {
			slog.Debug("Skipping feed entry without GUID or link", "title", entry.Title)
			continue
		}

		summary := strings.TrimSpace(entry.Description)
		if summary == "" && entry.Content != "" {
			summary = extractSummary(entry.Content)
		}

		items = append(items, IngestedItem{
			SourceID: sourceID,
			Title:    entry.Title,
			Summary:  summary,
		})
	}

	slog.Debug("Feed fetched", "url", f.url, "entries", len(items))

	return items, nil
}

func (f *FeedIngestor) fetchFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// extractSummary runs readability over an entry's HTML content when the feed
// gives no plain description. Extraction failures just leave the summary
// empty.
func extractSummary(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		slog.Debug("Summary extraction failed", "error", err)
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
