package testhelpers

import (
	"time"

	"github.com/locationscout/scout-engine/pkg/models"
)

var fixtureTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// SampleScene returns a scene with deterministic fields for tests.
func SampleScene(id, scriptID string, number int) models.Scene {
	return models.Scene{
		ID:           id,
		ScriptID:     scriptID,
		Slugline:     "INT. COFFEE SHOP - DAY",
		IntExt:       "INT",
		TimeOfDay:    "DAY",
		Description:  "A cramped corner coffee shop, morning rush.",
		Mood:         "frenetic",
		Requirements: []string{"espresso machine", "window seating"},
		SceneNumber:  number,
		CreatedAt:    fixtureTime,
	}
}

// SampleLocation returns a candidate location with deterministic fields.
func SampleLocation(id string) models.Location {
	return models.Location{
		ID:        id,
		Source:    "airbnb",
		SourceID:  "src-" + id,
		Name:      "Sunny Corner Cafe",
		Address:   "123 Main St, Los Angeles, CA",
		Images:    []string{"https://example.com/" + id + ".jpg"},
		Price:     "$250/day",
		Amenities: []string{"parking", "power"},
		SourceURL: "https://example.com/listings/" + id,
		ScrapedAt: fixtureTime,
	}
}

// SampleScore returns a match score tying sceneID to locationID.
func SampleScore(id, sceneID, locationID string) models.MatchScore {
	return models.MatchScore{
		ID:              id,
		SceneID:         sceneID,
		LocationID:      locationID,
		VisualScore:     80,
		FunctionalScore: 75,
		LogisticsScore:  70,
		OverallScore:    76,
		Reasoning:       "Natural light and layout fit the scene.",
		ScoredAt:        fixtureTime,
	}
}
