package models

import (
	"encoding/json"
	"time"

	"github.com/locationscout/scout-engine/pkg/jsonutil"
)

// MatchScore is a scene-location compatibility assessment produced by the
// scoring agent. Sub-scores and the overall score are 0-100.
type MatchScore struct {
	ID              string    `json:"id"`
	SceneID         string    `json:"scene_id"`
	LocationID      string    `json:"location_id"`
	VisualScore     int       `json:"visual_score"`
	FunctionalScore int       `json:"functional_score"`
	LogisticsScore  int       `json:"logistics_score"`
	OverallScore    int       `json:"overall_score"`
	Reasoning       string    `json:"reasoning,omitempty"`
	ScoredAt        time.Time `json:"scored_at"`
}

// UnmarshalJSON handles score fields that the scoring LLM occasionally emits
// as strings ("85") or floats (85.0) instead of integers.
func (m *MatchScore) UnmarshalJSON(data []byte) error {
	type alias MatchScore
	aux := struct {
		*alias
		VisualScore     json.RawMessage `json:"visual_score"`
		FunctionalScore json.RawMessage `json:"functional_score"`
		LogisticsScore  json.RawMessage `json:"logistics_score"`
		OverallScore    json.RawMessage `json:"overall_score"`
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.VisualScore = jsonutil.FlexibleIntValue(aux.VisualScore)
	m.FunctionalScore = jsonutil.FlexibleIntValue(aux.FunctionalScore)
	m.LogisticsScore = jsonutil.FlexibleIntValue(aux.LogisticsScore)
	m.OverallScore = jsonutil.FlexibleIntValue(aux.OverallScore)
	return nil
}
