package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Sports Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Trail runner wins alpine stage</title>
      <link>https://example.com/items/1</link>
      <guid>feed-evt-001</guid>
      <description>Unexpected sprint finish at summit.</description>
    </item>
    <item>
      <title>Surf event paused due to swell warning</title>
      <link>https://example.com/items/2</link>
      <description>Officials review safety.</description>
    </item>
    <item>
      <title>Entry without identifiers</title>
      <description>No GUID and no link.</description>
    </item>
  </channel>
</rss>`

func TestFeedIngestor_FetchItems(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	ingestor := NewFeedIngestor(server.URL, server.Client(), "Sendy Pipeline/test")

	items, err := ingestor.FetchItems(context.Background())
	if err != nil {
		t.Fatalf("FetchItems failed: %v", err)
	}

	if receivedUserAgent != "Sendy Pipeline/test" {
		t.Errorf("Expected configured user agent, got %q", receivedUserAgent)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items (entry without identifiers skipped), got %d", len(items))
	}

	if items[0].SourceID != "feed-evt-001" {
		t.Errorf("Expected GUID as source id, got %q", items[0].SourceID)
	}
	if items[0].Summary != "Unexpected sprint finish at summit." {
		t.Errorf("Unexpected summary: %q", items[0].Summary)
	}

	// Second entry has no GUID, so the link is the fallback key.
	if items[1].SourceID != "https://example.com/items/2" {
		t.Errorf("Expected link fallback as source id, got %q", items[1].SourceID)
	}
}

func TestFeedIngestor_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ingestor := NewFeedIngestor(server.URL, server.Client(), "Sendy Pipeline/test")

	if _, err := ingestor.FetchItems(context.Background()); err == nil {
		t.Error("Expected error for HTTP 500 response")
	}
}

func TestFeedIngestor_InvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	ingestor := NewFeedIngestor(server.URL, server.Client(), "Sendy Pipeline/test")

	if _, err := ingestor.FetchItems(context.Background()); err == nil {
		t.Error("Expected error for unparseable feed payload")
	}
}
