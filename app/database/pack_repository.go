package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const packColumns = `id, source_id, title, summary, bullets, tags, why_tagged,
	       COALESCE(location_name, ''), latitude, longitude, weather_context,
	       weather_coverage_notes, breaking, distance_km, status, reviewer_notes,
	       created_at, updated_at`

type packRepository struct {
	q Querier
}

// NewPackRepository creates a content pack repository bound to db or to an
// open transaction.
func NewPackRepository(q Querier) PackRepository {
	return &packRepository{q: q}
}

func (r *packRepository) GetPack(ctx context.Context, id string) (*ContentPack, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+packColumns+`
		FROM content_packs
		WHERE id = $1
	`, id)

	pack, err := scanPack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pack: %w", err)
	}
	return pack, nil
}

func (r *packRepository) GetPackBySourceID(ctx context.Context, sourceID string) (*ContentPack, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+packColumns+`
		FROM content_packs
		WHERE source_id = $1
	`, sourceID)

	pack, err := scanPack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pack by source id: %w", err)
	}
	return pack, nil
}

// GetPacksByStatus returns packs in any of the given statuses, oldest first,
// so pipeline passes process packs in creation order.
func (r *packRepository) GetPacksByStatus(ctx context.Context, statuses ...Status) ([]ContentPack, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(status)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+packColumns+`
		FROM content_packs
		WHERE status IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY created_at
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get packs by status: %w", err)
	}
	defer rows.Close()

	return collectPacks(rows)
}

func (r *packRepository) ListPacks(ctx context.Context, filter PackFilter) ([]ContentPack, error) {
	builder := sq.Select(packColumns).
		From("content_packs").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Breaking != nil {
		builder = builder.Where(sq.Eq{"breaking": *filter.Breaking})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packs: %w", err)
	}
	defer rows.Close()

	return collectPacks(rows)
}

func (r *packRepository) GetPackCount(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_packs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pack count: %w", err)
	}
	return count, nil
}

func (r *packRepository) InsertPack(ctx context.Context, pack NewPack) (string, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO content_packs (source_id, title, summary, location_name)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id
	`, pack.SourceID, pack.Title, pack.Summary, pack.LocationName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert pack: %w", err)
	}
	return id, nil
}

// UpdatePackEnrichment replaces every derived field in one statement. Prior
// enrichment values are not merged, they are overwritten.
func (r *packRepository) UpdatePackEnrichment(ctx context.Context, packID string, enrichment Enrichment, status Status) error {
	tags, err := json.Marshal(enrichment.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	whyTagged, err := json.Marshal(enrichment.WhyTagged)
	if err != nil {
		return fmt.Errorf("failed to marshal why_tagged: %w", err)
	}
	weatherContext := enrichment.WeatherContext
	if len(weatherContext) == 0 {
		weatherContext = json.RawMessage("{}")
	}

	_, err = r.q.ExecContext(ctx, `
		UPDATE content_packs
		SET tags = $2, why_tagged = $3, latitude = $4, longitude = $5,
		    weather_context = $6, weather_coverage_notes = $7, breaking = $8,
		    status = $9, updated_at = NOW()
		WHERE id = $1
	`, packID, tags, whyTagged, enrichment.Latitude, enrichment.Longitude,
		[]byte(weatherContext), enrichment.WeatherCoverageNotes, enrichment.Breaking,
		string(status))
	if err != nil {
		return fmt.Errorf("failed to update pack enrichment: %w", err)
	}
	return nil
}

func (r *packRepository) UpdatePackStatus(ctx context.Context, packID string, status Status) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE content_packs
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, packID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update pack status: %w", err)
	}
	return nil
}

// UpdatePackContent persists the reviewer-editable fields plus status.
func (r *packRepository) UpdatePackContent(ctx context.Context, pack *ContentPack) error {
	bullets, err := json.Marshal(emptySlice(pack.Bullets))
	if err != nil {
		return fmt.Errorf("failed to marshal bullets: %w", err)
	}
	tags, err := json.Marshal(emptySlice(pack.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		UPDATE content_packs
		SET summary = $2, bullets = $3, tags = $4, reviewer_notes = $5,
		    status = $6, updated_at = NOW()
		WHERE id = $1
	`, pack.ID, pack.Summary, bullets, tags, pack.ReviewerNotes, string(pack.Status))
	if err != nil {
		return fmt.Errorf("failed to update pack content: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPack(row rowScanner) (*ContentPack, error) {
	var pack ContentPack
	var bullets, tags, whyTagged, weatherContext []byte

	err := row.Scan(
		&pack.ID, &pack.SourceID, &pack.Title, &pack.Summary,
		&bullets, &tags, &whyTagged,
		&pack.LocationName, &pack.Latitude, &pack.Longitude, &weatherContext,
		&pack.WeatherCoverageNotes, &pack.Breaking, &pack.DistanceKm,
		&pack.Status, &pack.ReviewerNotes, &pack.CreatedAt, &pack.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bullets, &pack.Bullets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bullets: %w", err)
	}
	if err := json.Unmarshal(tags, &pack.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(whyTagged, &pack.WhyTagged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal why_tagged: %w", err)
	}
	pack.WeatherContext = json.RawMessage(weatherContext)

	return &pack, nil
}

func collectPacks(rows *sql.Rows) ([]ContentPack, error) {
	var packs []ContentPack
	for rows.Next() {
		pack, err := scanPack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pack row: %w", err)
		}
		packs = append(packs, *pack)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pack rows: %w", err)
	}

	return packs, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
