package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type draftRepository struct {
	q Querier
}

// NewDraftRepository creates a repository for drafts, attribution and assets
// owned by content packs.
func NewDraftRepository(q Querier) DraftRepository {
	return &draftRepository{q: q}
}

func (r *draftRepository) InsertDraft(ctx context.Context, draft NewDraft) error {
	headlines, err := json.Marshal(draft.HeadlineOptions)
	if err != nil {
		return fmt.Errorf("failed to marshal headline options: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO creative_drafts (
			content_pack_id, generator_name, headline_options, cover_spec,
			caption_short, caption_long, carousel_outline
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, draft.PackID, draft.GeneratorName, headlines, []byte(draft.CoverSpec),
		draft.CaptionShort, draft.CaptionLong, []byte(draft.CarouselOutline))
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	return nil
}

func (r *draftRepository) GetDrafts(ctx context.Context, packID string) ([]CreativeDraft, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, content_pack_id, generator_name, headline_options, cover_spec,
		       caption_short, caption_long, carousel_outline, created_at
		FROM creative_drafts
		WHERE content_pack_id = $1
		ORDER BY created_at
	`, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drafts: %w", err)
	}
	defer rows.Close()

	var drafts []CreativeDraft
	for rows.Next() {
		var draft CreativeDraft
		var headlines, coverSpec, carousel []byte
		err := rows.Scan(
			&draft.ID, &draft.PackID, &draft.GeneratorName, &headlines,
			&coverSpec, &draft.CaptionShort, &draft.CaptionLong, &carousel,
			&draft.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}

		if err := json.Unmarshal(headlines, &draft.HeadlineOptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headline options: %w", err)
		}
		draft.CoverSpec = json.RawMessage(coverSpec)
		draft.CarouselOutline = json.RawMessage(carousel)

		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft rows: %w", err)
	}

	return drafts, nil
}

// InsertAttributionIfAbsent attaches attribution only when the pack has none.
// An existing row is never touched.
func (r *draftRepository) InsertAttributionIfAbsent(ctx context.Context, packID string, attribution NewAttribution) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO attribution (content_pack_id, required_credit_line, notes, safe_to_repost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_pack_id) DO NOTHING
	`, packID, attribution.RequiredCreditLine, attribution.Notes, attribution.SafeToRepost)
	if err != nil {
		return fmt.Errorf("failed to insert attribution: %w", err)
	}
	return nil
}

func (r *draftRepository) GetAttribution(ctx context.Context, packID string) (*Attribution, error) {
	var attribution Attribution
	err := r.q.QueryRowContext(ctx, `
		SELECT id, content_pack_id, required_credit_line, notes, safe_to_repost
		FROM attribution
		WHERE content_pack_id = $1
	`, packID).Scan(
		&attribution.ID, &attribution.PackID, &attribution.RequiredCreditLine,
		&attribution.Notes, &attribution.SafeToRepost,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attribution: %w", err)
	}
	return &attribution, nil
}

func (r *draftRepository) GetAssets(ctx context.Context, packID string) ([]Asset, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, content_pack_id, url, type, provider,
		       COALESCE(creator_handle, ''), COALESCE(local_storage_path, ''), rights_status
		FROM assets
		WHERE content_pack_id = $1
		ORDER BY id
	`, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var asset Asset
		err := rows.Scan(
			&asset.ID, &asset.PackID, &asset.URL, &asset.Type, &asset.Provider,
			&asset.CreatorHandle, &asset.LocalStoragePath, &asset.RightsStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset rows: %w", err)
	}

	return assets, nil
}
