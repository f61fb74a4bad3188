package models

// StreamEvent is the closed set of domain events delivered over the search
// event stream. The marker method keeps the set sealed so dispatch sites can
// switch exhaustively over it.
type StreamEvent interface {
	streamEvent()
}

// SearchStartedEvent announces that the server accepted a search and its
// agents are running. Informational; carries no state the store must apply.
type SearchStartedEvent struct {
	SceneIDs []string `json:"scene_ids"`
	Location string   `json:"location"`
	Sources  []string `json:"sources,omitempty"`
}

// LocationFoundEvent delivers one newly discovered candidate location.
type LocationFoundEvent struct {
	Location Location `json:"location"`
}

// LocationScoredEvent delivers one scene-location match score. The top-level
// ids duplicate fields of Score; Score is authoritative.
type LocationScoredEvent struct {
	LocationID string     `json:"location_id,omitempty"`
	SceneID    string     `json:"scene_id,omitempty"`
	Score      MatchScore `json:"score"`
}

// SearchCompletedEvent marks the end of the current search. The channel may
// stay open for a subsequent search.
type SearchCompletedEvent struct {
	SceneIDs       []string `json:"scene_ids,omitempty"`
	LocationsFound int      `json:"locations_found,omitempty"`
}

func (SearchStartedEvent) streamEvent()   {}
func (LocationFoundEvent) streamEvent()   {}
func (LocationScoredEvent) streamEvent()  {}
func (SearchCompletedEvent) streamEvent() {}
