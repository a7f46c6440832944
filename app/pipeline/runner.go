package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/getsendy/sendy-pipeline/app/database"
)

// Default attribution attached the first time a pack receives a draft.
const (
	defaultCreditLine       = "TBD by reviewer"
	defaultAttributionNotes = "Verify source rights."
	defaultSafeToRepost     = "unknown"
)

// Store is the persistence boundary for a pipeline run. InBatch hands fn
// repositories bound to one transaction; every mutation in a run commits
// together or not at all.
type Store interface {
	InBatch(ctx context.Context, fn func(packs database.PackRepository, drafts database.DraftRepository) error) error
}

// Runner coordinates the two pipeline stages over the store. It assumes the
// caller serializes runs; concurrent runs could race on the dedupe check.
type Runner struct {
	store     Store
	ingestor  Ingestor
	enricher  Enricher
	generator Generator
}

// NewRunner wires the runner with its default plugins. Nil arguments select
// the defaults from this package.
func NewRunner(store Store, ingestor Ingestor, enricher Enricher, generator Generator) *Runner {
	if ingestor == nil {
		ingestor = SampleIngestor{}
	}
	if enricher == nil {
		enricher = NewContextEnricher()
	}
	if generator == nil {
		generator = SocialGenerator{}
	}
	return &Runner{
		store:     store,
		ingestor:  ingestor,
		enricher:  enricher,
		generator: generator,
	}
}

// RunIngestion fetches candidate items and creates a NEW pack for every
// source id not seen before. Re-delivered items are skipped silently; a
// polling source re-delivering the whole feed is the normal case. Returns
// the number of packs actually created.
func (r *Runner) RunIngestion(ctx context.Context, source Ingestor) (int, error) {
	if source == nil {
		source = r.ingestor
	}

	items, err := source.FetchItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch items: %w", err)
	}

	created := 0
	err = r.store.InBatch(ctx, func(packs database.PackRepository, _ database.DraftRepository) error {
		for _, item := range items {
			existing, err := packs.GetPackBySourceID(ctx, item.SourceID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			_, err = packs.InsertPack(ctx, database.NewPack{
				SourceID:     item.SourceID,
				Title:        item.Title,
				Summary:      item.Summary,
				LocationName: item.LocationName,
			})
			if err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Ingestion completed", "fetched", len(items), "created", created)

	return created, nil
}

// RunEnrichmentAndGeneration processes every pack still in NEW or ENRICHED,
// in creation order: enrich, attach a new draft, attach default attribution
// if absent, then advance to DRAFT_READY. Packs past DRAFT_READY are never
// reselected, so re-running is a no-op once the backlog is drained. Any
// failure aborts and rolls back the whole batch.
func (r *Runner) RunEnrichmentAndGeneration(ctx context.Context, enricher Enricher, generator Generator) error {
	if enricher == nil {
		enricher = r.enricher
	}
	if generator == nil {
		generator = r.generator
	}

	return r.store.InBatch(ctx, func(packs database.PackRepository, drafts database.DraftRepository) error {
		pending, err := packs.GetPacksByStatus(ctx, database.StatusNew, database.StatusEnriched)
		if err != nil {
			return err
		}

		for i := range pending {
			pack := &pending[i]
			if err := processPack(ctx, packs, drafts, pack, enricher, generator); err != nil {
				return fmt.Errorf("failed to process pack %s: %w", pack.SourceID, err)
			}
		}

		slog.Info("Enrichment and generation completed", "processed", len(pending))

		return nil
	})
}

func processPack(ctx context.Context, packs database.PackRepository, drafts database.DraftRepository,
	pack *database.ContentPack, enricher Enricher, generator Generator) error {

	// Plugins only see the pack's source fields, never storage details.
	item := IngestedItem{
		SourceID:     pack.SourceID,
		Title:        pack.Title,
		Summary:      pack.Summary,
		LocationName: pack.LocationName,
	}

	enrichment, err := enricher.Enrich(item)
	if err != nil {
		return fmt.Errorf("enricher failed: %w", err)
	}

	if pack.Status == database.StatusNew {
		if err := Transition(pack, database.StatusEnriched); err != nil {
			return err
		}
	}

	weatherContext, err := marshalWeatherContext(enrichment.WeatherContext)
	if err != nil {
		return err
	}

	err = packs.UpdatePackEnrichment(ctx, pack.ID, database.Enrichment{
		Tags:                 enrichment.Tags,
		WhyTagged:            enrichment.WhyTagged,
		Latitude:             enrichment.Latitude,
		Longitude:            enrichment.Longitude,
		WeatherContext:       weatherContext,
		WeatherCoverageNotes: enrichment.WeatherCoverageNotes,
		Breaking:             enrichment.Breaking,
	}, pack.Status)
	if err != nil {
		return err
	}

	draft, err := generator.Generate(item, enrichment)
	if err != nil {
		return fmt.Errorf("generator failed: %w", err)
	}

	coverSpec, err := json.Marshal(draft.CoverSpec)
	if err != nil {
		return fmt.Errorf("failed to marshal cover spec: %w", err)
	}
	carousel, err := json.Marshal(draft.CarouselOutline)
	if err != nil {
		return fmt.Errorf("failed to marshal carousel outline: %w", err)
	}

	err = drafts.InsertDraft(ctx, database.NewDraft{
		PackID:          pack.ID,
		GeneratorName:   generator.Name(),
		HeadlineOptions: draft.HeadlineOptions,
		CoverSpec:       coverSpec,
		CaptionShort:    draft.CaptionShort,
		CaptionLong:     draft.CaptionLong,
		CarouselOutline: carousel,
	})
	if err != nil {
		return err
	}

	err = drafts.InsertAttributionIfAbsent(ctx, pack.ID, database.NewAttribution{
		RequiredCreditLine: defaultCreditLine,
		Notes:              defaultAttributionNotes,
		SafeToRepost:       defaultSafeToRepost,
	})
	if err != nil {
		return err
	}

	if err := Transition(pack, database.StatusDraftReady); err != nil {
		return err
	}

	return packs.UpdatePackStatus(ctx, pack.ID, pack.Status)
}

func marshalWeatherContext(weather map[string]any) (json.RawMessage, error) {
	if weather == nil {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(weather)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal weather context: %w", err)
	}
	return data, nil
}
