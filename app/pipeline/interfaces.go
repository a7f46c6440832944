package pipeline

import (
	"context"
)

// IngestedItem is a candidate event produced by an Ingestor. SourceID is the
// dedupe key: at most one content pack ever exists per source id.
// LocationName is "" when the source carried no location.
type IngestedItem struct {
	SourceID     string
	Title        string
	Summary      string
	LocationName string
}

// EnrichmentResult is the derived metadata for one item. It fully replaces
// the pack's enrichment fields on every pass.
type EnrichmentResult struct {
	Tags                 []string
	WhyTagged            map[string]string
	Latitude             *float64
	Longitude            *float64
	WeatherContext       map[string]any
	WeatherCoverageNotes string
	Breaking             bool
}

// GeneratedDraft is one creative output, mapped 1:1 into a stored draft.
type GeneratedDraft struct {
	HeadlineOptions []string
	CoverSpec       CoverSpec
	CaptionShort    string
	CaptionLong     string
	CarouselOutline []CarouselSlide
}

// CoverSpec describes the cover layout for a draft.
type CoverSpec struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Style    string `json:"style"`
}

// CarouselSlide is one slide of a draft's carousel outline.
type CarouselSlide struct {
	Slide int    `json:"slide"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Ingestor produces candidate items from an external feed. Implementations
// are expected to re-deliver previously seen items on every call.
type Ingestor interface {
	FetchItems(ctx context.Context) ([]IngestedItem, error)
}

// Enricher derives tags, coordinates, weather context and the breaking flag
// for one item. Implementations must be a pure function of the item.
type Enricher interface {
	Enrich(item IngestedItem) (EnrichmentResult, error)
}

// Generator produces one creative draft for an enriched item. Name
// identifies the generator on every draft it produces.
type Generator interface {
	Name() string
	Generate(item IngestedItem, enrichment EnrichmentResult) (GeneratedDraft, error)
}
