// Package models contains domain types for scout-engine.
package models

import "time"

// Script is an uploaded screenplay. At most one script is active per session;
// installing a new one supersedes all state derived from the previous one.
type Script struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Scene is one script-derived filming unit with its location requirements.
// Scenes are produced in bulk by script analysis and are immutable afterwards.
type Scene struct {
	ID           string    `json:"id"`
	ScriptID     string    `json:"script_id"`
	Slugline     string    `json:"slugline,omitempty"`
	IntExt       string    `json:"int_ext,omitempty"`
	TimeOfDay    string    `json:"time_of_day,omitempty"`
	Description  string    `json:"description,omitempty"`
	Mood         string    `json:"mood,omitempty"`
	Period       string    `json:"period,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	SceneNumber  int       `json:"scene_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
