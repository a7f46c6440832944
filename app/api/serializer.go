package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/getsendy/sendy-pipeline/app/database"
)

func serializePack(pack *database.ContentPack) map[string]interface{} {
	return map[string]interface{}{
		"id":                     pack.ID,
		"source_id":              pack.SourceID,
		"title":                  pack.Title,
		"summary":                pack.Summary,
		"bullets":                pack.Bullets,
		"tags":                   pack.Tags,
		"why_tagged":             pack.WhyTagged,
		"location_name":          pack.LocationName,
		"latitude":               pack.Latitude,
		"longitude":              pack.Longitude,
		"weather_context":        pack.WeatherContext,
		"weather_coverage_notes": pack.WeatherCoverageNotes,
		"breaking":               pack.Breaking,
		"distance_km":            pack.DistanceKm,
		"status":                 pack.Status,
		"reviewer_notes":         pack.ReviewerNotes,
		"created_at":             pack.CreatedAt.Format(time.RFC3339),
		"updated_at":             pack.UpdatedAt.Format(time.RFC3339),
	}
}

// serializePackDetail adds the pack's drafts, assets and attribution to the
// base serialization.
func (h *Handler) serializePackDetail(c *gin.Context, pack *database.ContentPack) (map[string]interface{}, error) {
	ctx := c.Request.Context()
	detail := serializePack(pack)

	drafts, err := h.draftRepo.GetDrafts(ctx, pack.ID)
	if err != nil {
		return nil, err
	}
	serializedDrafts := make([]map[string]interface{}, 0, len(drafts))
	for _, draft := range drafts {
		serializedDrafts = append(serializedDrafts, map[string]interface{}{
			"id":               draft.ID,
			"generator_name":   draft.GeneratorName,
			"headline_options": draft.HeadlineOptions,
			"cover_spec":       draft.CoverSpec,
			"caption_short":    draft.CaptionShort,
			"caption_long":     draft.CaptionLong,
			"carousel_outline": draft.CarouselOutline,
			"created_at":       draft.CreatedAt.Format(time.RFC3339),
		})
	}
	detail["drafts"] = serializedDrafts

	assets, err := h.draftRepo.GetAssets(ctx, pack.ID)
	if err != nil {
		return nil, err
	}
	serializedAssets := make([]map[string]interface{}, 0, len(assets))
	for _, asset := range assets {
		serializedAssets = append(serializedAssets, map[string]interface{}{
			"id":                 asset.ID,
			"url":                asset.URL,
			"type":               asset.Type,
			"provider":           asset.Provider,
			"creator_handle":     asset.CreatorHandle,
			"local_storage_path": asset.LocalStoragePath,
			"rights_status":      asset.RightsStatus,
		})
	}
	detail["assets"] = serializedAssets

	attribution, err := h.draftRepo.GetAttribution(ctx, pack.ID)
	if err != nil {
		return nil, err
	}
	if attribution != nil {
		detail["attribution"] = map[string]interface{}{
			"required_credit_line": attribution.RequiredCreditLine,
			"notes":                attribution.Notes,
			"safe_to_repost":       attribution.SafeToRepost,
		}
	} else {
		detail["attribution"] = nil
	}

	return detail, nil
}
