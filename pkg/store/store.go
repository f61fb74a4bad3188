// Package store owns the canonical client-side state for a location search
// session: the current script, its scenes, incrementally arriving candidate
// locations and match scores, and the user's scene selection. All reads and
// writes serialize through one mutex, so the stream goroutine and callers
// always observe consistent state, and two events delivered back-to-back
// apply atomically with respect to each other.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/locationscout/scout-engine/pkg/api"
	"github.com/locationscout/scout-engine/pkg/apperrors"
	"github.com/locationscout/scout-engine/pkg/models"
)

// User-facing error messages surfaced in state. The wrapped cause is
// returned to the caller separately.
const (
	msgEmptySelection = "Please select at least one scene"
	msgUploadFailed   = "Failed to upload script"
	msgSearchFailed   = "Failed to start search"
)

// API is the backend surface the store orchestrates. *api.Client satisfies it.
type API interface {
	SubmitScript(ctx context.Context, title, content string) (*api.ScriptAnalysis, error)
	StartSearch(ctx context.Context, sceneIDs []string, location string, opts api.SearchOptions) error
}

// Option configures a Store.
type Option func(*Store)

// WithDedupByID makes AddLocation and AddMatchScore drop entries whose id is
// already present. The default is append-only with no uniqueness check,
// matching the server's at-least-once delivery expectations.
func WithDedupByID() Option {
	return func(s *Store) { s.dedup = true }
}

// WithSearchOptions sets the sources/max-results sent with StartSearch.
func WithSearchOptions(opts api.SearchOptions) Option {
	return func(s *Store) { s.searchOpts = opts }
}

// Store is the single source of truth for the in-flight search. Construct
// one per session; it holds no global state.
type Store struct {
	api        API
	logger     *zap.Logger
	dedup      bool
	searchOpts api.SearchOptions

	mu          sync.Mutex
	script      *models.Script
	scenes      []models.Scene
	locations   []models.Location
	matchScores []models.MatchScore
	selected    map[string]struct{}
	loading     bool
	searching   bool
	errMsg      string

	// busy guards the two async actions against overlapping invocations.
	busy bool
}

// New creates a Store backed by the given API client.
func New(apiClient API, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		api:        apiClient,
		logger:     logger.Named("store"),
		searchOpts: api.DefaultSearchOptions(),
		selected:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetScript replaces the current script. Callers pair this with SetScenes;
// UploadScript does both atomically.
func (s *Store) SetScript(script *models.Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// SetScenes replaces the scene collection wholesale.
func (s *Store) SetScenes(scenes []models.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = append([]models.Scene(nil), scenes...)
}

// AddLocation appends a candidate location. Arrival order is preserved; no
// uniqueness check unless WithDedupByID was set.
func (s *Store) AddLocation(loc models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dedup {
		for _, existing := range s.locations {
			if existing.ID == loc.ID {
				return
			}
		}
	}
	s.locations = append(s.locations, loc)
}

// AddMatchScore appends a match score with the same ordering and uniqueness
// policy as AddLocation. A score may reference a location that has not
// arrived yet; that resolves itself once the location_found event lands.
func (s *Store) AddMatchScore(score models.MatchScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dedup {
		for _, existing := range s.matchScores {
			if existing.ID == score.ID {
				return
			}
		}
	}
	s.matchScores = append(s.matchScores, score)
}

// ToggleSceneSelection adds the scene id to the selection if absent, removes
// it if present. Applying it twice restores the original selection.
func (s *Store) ToggleSceneSelection(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[sceneID]; ok {
		delete(s.selected, sceneID)
	} else {
		s.selected[sceneID] = struct{}{}
	}
}

// SelectAllScenes sets the selection to exactly the ids of all current
// scenes, discarding any prior selection.
func (s *Store) SelectAllScenes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectAllLocked()
}

func (s *Store) selectAllLocked() {
	s.selected = make(map[string]struct{}, len(s.scenes))
	for _, sc := range s.scenes {
		s.selected[sc.ID] = struct{}{}
	}
}

// ClearSelections empties the selection set.
func (s *Store) ClearSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// SetLoading overwrites the loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

// SetSearching overwrites the searching flag.
func (s *Store) SetSearching(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searching = v
}

// SetError overwrites the error message. Empty string clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// Reset restores all session state to initial empty values. It does not
// touch any open stream; closing the channel is its owner's job.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = nil
	s.scenes = nil
	s.locations = nil
	s.matchScores = nil
	s.selected = make(map[string]struct{})
	s.loading = false
	s.searching = false
	s.errMsg = ""
}

// UploadScript submits the script for analysis and, on success, atomically
// installs the returned script and scenes, resets search results from any
// prior session, and selects every returned scene. On failure the store
// keeps its previous session state, records a user-facing message, and the
// wrapped cause is returned so the caller can react.
func (s *Store) UploadScript(ctx context.Context, title, content string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return apperrors.ErrActionInFlight
	}
	s.busy = true
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	analysis, err := s.api.SubmitScript(ctx, title, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.loading = false

	if err != nil {
		s.errMsg = msgUploadFailed
		return fmt.Errorf("upload script: %w", err)
	}

	script := analysis.Script
	s.script = &script
	s.scenes = append([]models.Scene(nil), analysis.Scenes...)
	s.locations = nil
	s.matchScores = nil
	s.selectAllLocked()
	s.searching = false

	s.logger.Info("Script installed",
		zap.String("script_id", script.ID),
		zap.Int("scene_count", len(s.scenes)))

	return nil
}

// StartSearch asks the backend to search locations for the selected scenes.
// Selected ids without a matching current scene are excluded from the
// request. When nothing usable is selected it records a message and returns
// apperrors.ErrEmptySelection without any network call. On success the
// searching flag stays true until a search_completed stream event clears it;
// the request's own response does not.
func (s *Store) StartSearch(ctx context.Context, locationQuery string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return apperrors.ErrActionInFlight
	}
	sceneIDs := s.knownSelectedSceneIDsLocked()
	if len(sceneIDs) == 0 {
		s.errMsg = msgEmptySelection
		s.mu.Unlock()
		return apperrors.ErrEmptySelection
	}
	s.busy = true
	s.searching = true
	s.errMsg = ""
	s.mu.Unlock()

	err := s.api.StartSearch(ctx, sceneIDs, locationQuery, s.searchOpts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.searching = false
		s.errMsg = msgSearchFailed
		return fmt.Errorf("start search: %w", err)
	}

	return nil
}

// Apply is the stream sink: it dispatches one decoded event into the
// matching mutator. Events apply in the order delivered.
func (s *Store) Apply(ev models.StreamEvent) {
	switch e := ev.(type) {
	case models.SearchStartedEvent:
		s.logger.Debug("Search running",
			zap.Strings("scene_ids", e.SceneIDs),
			zap.String("location", e.Location))
	case models.LocationFoundEvent:
		s.AddLocation(e.Location)
	case models.LocationScoredEvent:
		s.AddMatchScore(e.Score)
	case models.SearchCompletedEvent:
		s.SetSearching(false)
		s.logger.Info("Search completed",
			zap.Int("locations_found", e.LocationsFound))
	default:
		s.logger.Warn("Unhandled stream event", zap.Any("event", ev))
	}
}

// Script returns the current script, or nil.
func (s *Store) Script() *models.Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.script == nil {
		return nil
	}
	script := *s.script
	return &script
}

// Scenes returns a copy of the scene collection.
func (s *Store) Scenes() []models.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Scene(nil), s.scenes...)
}

// Locations returns a copy of the location collection in arrival order.
func (s *Store) Locations() []models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Location(nil), s.locations...)
}

// MatchScores returns a copy of the match-score collection in arrival order.
func (s *Store) MatchScores() []models.MatchScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MatchScore(nil), s.matchScores...)
}

// SelectedSceneIDs returns the selection in scene order. Ids that no longer
// match a current scene sort after them lexicographically.
func (s *Store) SelectedSceneIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedSceneIDsLocked()
}

func (s *Store) selectedSceneIDsLocked() []string {
	ids := s.knownSelectedSceneIDsLocked()

	var stale []string
	for id := range s.selected {
		known := false
		for _, sc := range s.scenes {
			if sc.ID == id {
				known = true
				break
			}
		}
		if !known {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)

	return append(ids, stale...)
}

// knownSelectedSceneIDsLocked returns the selected ids that match a current
// scene, in scene order. This is what StartSearch sends: the server rejects
// ids it has never issued, so stale selections stay client-side.
func (s *Store) knownSelectedSceneIDsLocked() []string {
	ids := make([]string, 0, len(s.selected))
	for _, sc := range s.scenes {
		if _, ok := s.selected[sc.ID]; ok {
			ids = append(ids, sc.ID)
		}
	}
	return ids
}

// IsLoading reports whether an upload is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsSearching reports whether a search is running. Set by a successful
// StartSearch, cleared only by a search_completed event or a failed start.
func (s *Store) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Error returns the current user-facing error message, empty if none.
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Snapshot is a point-in-time copy of all session state.
type Snapshot struct {
	Script           *models.Script
	Scenes           []models.Scene
	Locations        []models.Location
	MatchScores      []models.MatchScore
	SelectedSceneIDs []string
	IsLoading        bool
	IsSearching      bool
	Error            string
}

// Snapshot returns a consistent copy of all fields, taken under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var script *models.Script
	if s.script != nil {
		copied := *s.script
		script = &copied
	}

	return Snapshot{
		Script:           script,
		Scenes:           append([]models.Scene(nil), s.scenes...),
		Locations:        append([]models.Location(nil), s.locations...),
		MatchScores:      append([]models.MatchScore(nil), s.matchScores...),
		SelectedSceneIDs: s.selectedSceneIDsLocked(),
		IsLoading:        s.loading,
		IsSearching:      s.searching,
		Error:            s.errMsg,
	}
}
