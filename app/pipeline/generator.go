package pipeline

import (
	"fmt"
	"strings"
)

const (
	socialGeneratorName = "basic-social-v1"
	coverTitleLimit     = 70
	coverStyle          = "high-contrast, mobile first"
)

// SocialGenerator is the default draft generator. It always produces exactly
// 5 headline options and a 5-slide carousel outline.
type SocialGenerator struct{}

func (SocialGenerator) Name() string {
	return socialGeneratorName
}

func (SocialGenerator) Generate(item IngestedItem, enrichment EnrichmentResult) (GeneratedDraft, error) {
	headlines := []string{
		fmt.Sprintf("Breaking: %s", item.Title),
		fmt.Sprintf("%s — What changed today", item.Title),
		fmt.Sprintf("%s: Key takeaways", item.Title),
		fmt.Sprintf("Global update: %s", item.Title),
		fmt.Sprintf("Sendy Brief: %s", item.Title),
	}

	coverLocation := item.LocationName
	if coverLocation == "" {
		coverLocation = "TBD"
	}
	cover := CoverSpec{
		Title:    truncate(item.Title, coverTitleLimit),
		Subtitle: "Location: " + coverLocation,
		Style:    coverStyle,
	}

	whereBody := item.LocationName
	if whereBody == "" {
		whereBody = "Unknown"
	}
	forecast := forecastSummary(enrichment.WeatherContext)
	tagList := strings.Join(enrichment.Tags, ", ")

	carousel := []CarouselSlide{
		{Slide: 1, Title: "What happened", Body: item.Summary},
		{Slide: 2, Title: "Who is involved", Body: tagList},
		{Slide: 3, Title: "Where", Body: whereBody},
		{Slide: 4, Title: "Weather context", Body: forecast},
		{Slide: 5, Title: "What to watch next", Body: "Monitor official updates and athlete statements."},
	}

	captionLocation := item.LocationName
	if captionLocation == "" {
		captionLocation = "Global"
	}

	return GeneratedDraft{
		HeadlineOptions: headlines,
		CoverSpec:       cover,
		CaptionShort:    fmt.Sprintf("%s | %s", item.Title, captionLocation),
		CaptionLong:     fmt.Sprintf("%s\n\nTags: %s\nWeather: %s", item.Summary, tagList, forecast),
		CarouselOutline: carousel,
	}, nil
}

func forecastSummary(weather map[string]any) string {
	if summary, ok := weather["forecast_summary"].(string); ok {
		return summary
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
