package database

import (
	"encoding/json"
	"time"
)

// Status is the review/publish lifecycle state of a content pack. Legal
// transitions between statuses are enforced by the pipeline package.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusEnriched      Status = "ENRICHED"
	StatusDraftReady    Status = "DRAFT_READY"
	StatusInReview      Status = "IN_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusAssetsPending Status = "ASSETS_PENDING"
	StatusScheduled     Status = "SCHEDULED"
	StatusPosted        Status = "POSTED"
	StatusArchived      Status = "ARCHIVED"
)

var allStatuses = []Status{
	StatusNew,
	StatusEnriched,
	StatusDraftReady,
	StatusInReview,
	StatusApproved,
	StatusAssetsPending,
	StatusScheduled,
	StatusPosted,
	StatusArchived,
}

// ParseStatus validates a raw status string from external input.
func ParseStatus(raw string) (Status, bool) {
	for _, status := range allStatuses {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

// ContentPack is one ingested event plus all enrichment derived from it.
// LocationName is "" when the source carried no location.
type ContentPack struct {
	ID                   string
	SourceID             string
	Title                string
	Summary              string
	Bullets              []string
	Tags                 []string
	WhyTagged            map[string]string
	LocationName         string
	Latitude             *float64
	Longitude            *float64
	WeatherContext       json.RawMessage
	WeatherCoverageNotes string
	Breaking             bool
	DistanceKm           *float64 // reserved for proximity ranking, never written by the pipeline
	Status               Status
	ReviewerNotes        string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreativeDraft is one generated social-media draft for a pack. Repeated
// pipeline passes accumulate drafts, they are never overwritten.
type CreativeDraft struct {
	ID              string
	PackID          string
	GeneratorName   string
	HeadlineOptions []string
	CoverSpec       json.RawMessage
	CaptionShort    string
	CaptionLong     string
	CarouselOutline json.RawMessage
	CreatedAt       time.Time
}

// Asset is a media asset linked to a pack by the asset-acquisition flow.
type Asset struct {
	ID               string
	PackID           string
	URL              string
	Type             string // video|image
	Provider         string
	CreatorHandle    string
	LocalStoragePath string
	RightsStatus     string
}

// Attribution holds rights/crediting metadata, at most one per pack.
type Attribution struct {
	ID                 string
	PackID             string
	RequiredCreditLine string
	Notes              string
	SafeToRepost       string
}
