package pipeline

import (
	"context"
)

// SampleIngestor is the default ingestion source. It returns a fixed
// illustrative sample on every call; callers must not assume freshness or
// live data from it.
type SampleIngestor struct{}

func (SampleIngestor) FetchItems(ctx context.Context) ([]IngestedItem, error) {
	return []IngestedItem{
		{
			SourceID:     "evt-001",
			Title:        "Trail runner wins alpine stage",
			Summary:      "Unexpected sprint finish at summit.",
			LocationName: "Zurich",
		},
		{
			SourceID:     "evt-002",
			Title:        "Surf event paused due to swell warning",
			Summary:      "Officials review safety in Sydney.",
			LocationName: "Sydney",
		},
	}, nil
}
