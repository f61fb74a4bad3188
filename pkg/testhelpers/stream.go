// Package testhelpers provides an in-process SSE server and model fixtures
// for stream and store tests.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type frame struct {
	event string
	data  string
}

type conn struct {
	frames chan frame
	kill   chan struct{}
}

// StreamServer is an httptest server speaking text/event-stream. Tests push
// named events to all connected clients and can drop connections to exercise
// reconnect behavior.
type StreamServer struct {
	t      *testing.T
	server *httptest.Server

	mu    sync.Mutex
	conns map[int]*conn
	next  int
	total int
}

// NewStreamServer starts the server and registers cleanup with t.
func NewStreamServer(t *testing.T) *StreamServer {
	s := &StreamServer{
		t:     t,
		conns: make(map[int]*conn),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// URL returns the server's base URL.
func (s *StreamServer) URL() string {
	return s.server.URL
}

// Close shuts the server down, dropping all connections first.
func (s *StreamServer) Close() {
	s.DropConnections()
	s.server.Close()
}

func (s *StreamServer) handle(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.t.Error("response writer does not support flushing")
		return
	}

	c := &conn{
		frames: make(chan frame, 64),
		kill:   make(chan struct{}),
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.total++
	s.conns[id] = c
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case f := <-c.frames:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.event, f.data)
			flusher.Flush()
		case <-c.kill:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Send marshals payload as JSON and delivers it as a named event to every
// connected client.
func (s *StreamServer) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.t.Fatalf("marshal %s payload: %v", event, err)
	}
	s.SendRaw(event, string(data))
}

// SendRaw delivers a named event with a preformatted data string.
func (s *StreamServer) SendRaw(event, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.frames <- frame{event: event, data: data}
	}
}

// Keepalive sends the server's idle heartbeat.
func (s *StreamServer) Keepalive() {
	s.SendRaw("keepalive", "{}")
}

// DropConnections severs every active connection without stopping the
// server, simulating a network blip.
func (s *StreamServer) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		close(c.kill)
		delete(s.conns, id)
	}
}

// ConnectionCount returns the number of currently connected clients.
func (s *StreamServer) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// TotalConnections returns the cumulative number of connections accepted.
func (s *StreamServer) TotalConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
