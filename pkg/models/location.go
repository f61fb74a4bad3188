package models

import (
	"encoding/json"
	"time"

	"github.com/locationscout/scout-engine/pkg/jsonutil"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Contact holds reachability details scraped alongside a location.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Location is a candidate filming location discovered by a search agent.
// Locations arrive incrementally over the event stream and are never mutated
// after insertion.
type Location struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	SourceID    string       `json:"source_id,omitempty"`
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Description string       `json:"description,omitempty"`
	Images      []string     `json:"images,omitempty"`
	Price       string       `json:"price,omitempty"`
	Amenities   []string     `json:"amenities,omitempty"`
	Contact     *Contact     `json:"contact,omitempty"`
	SourceURL   string       `json:"source_url,omitempty"`
	ScrapedAt   time.Time    `json:"scraped_at"`
}

// UnmarshalJSON tolerates scraped price values that arrive as numbers
// instead of strings (listing scrapers are not consistent about this).
func (l *Location) UnmarshalJSON(data []byte) error {
	type alias Location
	aux := struct {
		*alias
		Price json.RawMessage `json:"price,omitempty"`
	}{alias: (*alias)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	l.Price = jsonutil.FlexibleStringValue(aux.Price)
	return nil
}
