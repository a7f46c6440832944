package database

import (
	"context"
	"database/sql"
	"encoding/json"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside the pipeline's batch transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewPack carries the verbatim source fields for a first-seen item.
type NewPack struct {
	SourceID     string
	Title        string
	Summary      string
	LocationName string
}

// Enrichment is the full replacement set of derived fields for a pack.
type Enrichment struct {
	Tags                 []string
	WhyTagged            map[string]string
	Latitude             *float64
	Longitude            *float64
	WeatherContext       json.RawMessage
	WeatherCoverageNotes string
	Breaking             bool
}

// NewDraft is an insert-only creative draft row.
type NewDraft struct {
	PackID          string
	GeneratorName   string
	HeadlineOptions []string
	CoverSpec       json.RawMessage
	CaptionShort    string
	CaptionLong     string
	CarouselOutline json.RawMessage
}

// NewAttribution is the default rights metadata attached on first draft.
type NewAttribution struct {
	RequiredCreditLine string
	Notes              string
	SafeToRepost       string
}

// PackFilter narrows ListPacks. Nil fields match everything.
type PackFilter struct {
	Status   *Status
	Breaking *bool
}

type PackRepository interface {
	GetPack(ctx context.Context, id string) (*ContentPack, error)
	GetPackBySourceID(ctx context.Context, sourceID string) (*ContentPack, error)
	GetPacksByStatus(ctx context.Context, statuses ...Status) ([]ContentPack, error)
	ListPacks(ctx context.Context, filter PackFilter) ([]ContentPack, error)
	GetPackCount(ctx context.Context) (int, error)

	InsertPack(ctx context.Context, pack NewPack) (string, error)
	UpdatePackEnrichment(ctx context.Context, packID string, enrichment Enrichment, status Status) error
	UpdatePackStatus(ctx context.Context, packID string, status Status) error
	UpdatePackContent(ctx context.Context, pack *ContentPack) error
}

type DraftRepository interface {
	InsertDraft(ctx context.Context, draft NewDraft) error
	GetDrafts(ctx context.Context, packID string) ([]CreativeDraft, error)

	InsertAttributionIfAbsent(ctx context.Context, packID string, attribution NewAttribution) error
	GetAttribution(ctx context.Context, packID string) (*Attribution, error)

	GetAssets(ctx context.Context, packID string) ([]Asset, error)
}
