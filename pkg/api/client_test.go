package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, zap.NewNop())
}

func TestSubmitScript_Success(t *testing.T) {
	var gotTitle, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/scripts/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotTitle = r.FormValue("title")
		gotContent = r.FormValue("content")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"script": {"id": "s1", "title": "Pilot", "content": "INT. OFFICE", "created_at": "2026-03-14T12:00:00Z"},
			"scenes": [
				{"id": "c1", "script_id": "s1", "slugline": "INT. OFFICE - DAY", "scene_number": 1, "created_at": "2026-03-14T12:00:00Z"},
				{"id": "c2", "script_id": "s1", "slugline": "EXT. STREET - NIGHT", "scene_number": 2, "created_at": "2026-03-14T12:00:00Z"}
			]
		}`))
	}))
	defer srv.Close()

	analysis, err := newTestClient(srv.URL).SubmitScript(context.Background(), "Pilot", "INT. OFFICE")
	require.NoError(t, err)

	assert.Equal(t, "Pilot", gotTitle)
	assert.Equal(t, "INT. OFFICE", gotContent)
	assert.Equal(t, "s1", analysis.Script.ID)
	require.Len(t, analysis.Scenes, 2)
	assert.Equal(t, "c1", analysis.Scenes[0].ID)
	assert.Equal(t, 2, analysis.Scenes[1].SceneNumber)
}

func TestSubmitScript_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Either content or file must be provided"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SubmitScript(context.Background(), "Pilot", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "content or file")
}

func TestSubmitScript_MissingScriptID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"script": {}, "scenes": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SubmitScript(context.Background(), "Pilot", "INT. OFFICE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing script id")
}

func TestSubmitScript_ConnectionRefused(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").SubmitScript(context.Background(), "Pilot", "INT. OFFICE")
	require.Error(t, err)
}

func TestStartSearch_Success(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/search/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "started", "message": "Searching for locations in Los Angeles"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).StartSearch(context.Background(), []string{"c1", "c2"}, "Los Angeles", SearchOptions{
		Sources:    []string{"google"},
		MaxResults: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2"}, got.SceneIDs)
	assert.Equal(t, "Los Angeles", got.Location)
	assert.Equal(t, []string{"google"}, got.Sources)
	assert.Equal(t, 10, got.MaxResults)
}

func TestStartSearch_AppliesDefaults(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status": "started"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).StartSearch(context.Background(), []string{"c1"}, "Los Angeles", SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"airbnb", "google"}, got.Sources)
	assert.Equal(t, 20, got.MaxResults)
}

func TestStartSearch_SceneNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Scene c9 not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).StartSearch(context.Background(), []string{"c9"}, "Los Angeles", SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
