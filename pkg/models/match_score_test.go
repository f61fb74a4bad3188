package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchScore_UnmarshalFlexibleScores(t *testing.T) {
	payload := `{
		"id": "m1",
		"scene_id": "c1",
		"location_id": "loc1",
		"visual_score": 85,
		"functional_score": "72",
		"logistics_score": 64.9,
		"overall_score": "74.5",
		"reasoning": "Good fit"
	}`

	var score MatchScore
	require.NoError(t, json.Unmarshal([]byte(payload), &score))

	assert.Equal(t, "m1", score.ID)
	assert.Equal(t, 85, score.VisualScore)
	assert.Equal(t, 72, score.FunctionalScore)
	assert.Equal(t, 64, score.LogisticsScore)
	assert.Equal(t, 74, score.OverallScore)
	assert.Equal(t, "Good fit", score.Reasoning)
}

func TestLocation_UnmarshalFlexiblePrice(t *testing.T) {
	payload := `{
		"id": "loc1",
		"source": "airbnb",
		"name": "Sunny Corner Cafe",
		"price": 250,
		"coordinates": {"lat": 34.05, "lng": -118.24}
	}`

	var loc Location
	require.NoError(t, json.Unmarshal([]byte(payload), &loc))

	assert.Equal(t, "250", loc.Price)
	require.NotNil(t, loc.Coordinates)
	assert.InDelta(t, 34.05, loc.Coordinates.Lat, 0.001)
}
