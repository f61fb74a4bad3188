// Package stream consumes the server's SSE event stream and forwards decoded
// domain events, in delivery order, to a single sink. A Client owns exactly
// one channel at a time: open, deliver, close. It never reconnects on its
// own; Supervisor adds that on top.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/locationscout/scout-engine/pkg/apperrors"
	"github.com/locationscout/scout-engine/pkg/models"
)

// State is the lifecycle state of a stream channel.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateErrored
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Sink receives decoded stream events. The store implements this.
type Sink interface {
	Apply(ev models.StreamEvent)
}

// Option configures a Client.
type Option func(*Client)

// WithErrorHandler installs a callback invoked when the channel fails at the
// transport level. Transport errors are reported here, never written into
// search-domain state.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Client) { c.onError = fn }
}

// WithHTTPClient overrides the HTTP client used to dial the stream. The
// default has no timeout; the channel is long-lived by design.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client maintains one server-to-client push channel and decodes its events
// into the sink.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	sink       Sink
	logger     *zap.Logger
	onError    func(error)

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	closing bool
	closed  bool
	err     error
}

// NewClient creates a stream client addressed by clientID. Events decode into
// sink in delivery order.
func NewClient(baseURL, clientID string, sink Sink, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		httpClient: &http.Client{}, // no timeout: the stream stays open across searches
		sink:       sink,
		logger:     logger.Named("stream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the channel's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the transport error that moved the channel to StateErrored,
// or nil.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done returns a channel closed when the current channel instance stops
// delivering, for any reason.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Open dials the stream endpoint. It returns once the channel is established
// (or fails); decoding and delivery then continue on a background goroutine
// until Close, context cancellation, or a transport failure. Opening an
// already-open channel returns apperrors.ErrStreamOpen; opening after the
// owner called Close returns apperrors.ErrStreamClosed.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apperrors.ErrStreamClosed
	}
	if c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return apperrors.ErrStreamOpen
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.closing = false
	c.err = nil
	c.state = StateConnecting
	done := c.done
	c.mu.Unlock()

	resp, err := c.dial(runCtx)
	if err != nil {
		cancel()
		c.mu.Lock()
		if c.closing {
			c.state = StateClosed
			err = apperrors.ErrStreamClosed
		} else {
			c.state = StateErrored
			c.err = err
		}
		close(done)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = StateOpen
	c.mu.Unlock()
	c.logger.Info("Stream connected", zap.String("client_id", c.clientID))

	go c.consume(runCtx, resp.Body, done)
	return nil
}

func (c *Client) dial(ctx context.Context) (*http.Response, error) {
	url := fmt.Sprintf("%s/api/events/?client_id=%s", c.baseURL, c.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("connect stream: status %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("connect stream: unexpected content type %q", ct)
	}

	return resp, nil
}

// Close tears the channel down. It is unconditional, immediate and final:
// no in-flight event is guaranteed to be delivered after Close is issued,
// and the client cannot be reopened. Closing an already-closed channel is a
// no-op.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	done := c.done
	if c.state != StateClosed {
		c.closing = true
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
}

// consume reads SSE frames until the channel dies, then records the final
// state: Closed if the owner asked for it, Errored on transport failure.
func (c *Client) consume(ctx context.Context, body io.ReadCloser, done chan struct{}) {
	defer body.Close()

	err := c.readEvents(body)

	c.mu.Lock()
	var report error
	if c.closing || ctx.Err() != nil {
		c.state = StateClosed
	} else {
		c.state = StateErrored
		c.err = err
		report = err
	}
	onError := c.onError
	close(done)
	c.mu.Unlock()

	if report != nil {
		c.logger.Warn("Stream transport failure", zap.Error(report))
		if onError != nil {
			onError(report)
		}
	}
}

// readEvents parses the text/event-stream wire format: "event:" and "data:"
// fields accumulate until a blank line dispatches the frame. Comment lines
// (leading ':') and unknown fields (id, retry) are skipped.
func (c *Client) readEvents(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var eventName string
	var dataLines []string

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			if eventName != "" || len(dataLines) > 0 {
				c.dispatch(eventName, strings.Join(dataLines, "\n"))
			}
			eventName = ""
			dataLines = nil
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			eventName = value
		case "data":
			dataLines = append(dataLines, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("read stream: %w", io.ErrUnexpectedEOF)
}

// dispatch decodes one SSE frame and applies it to the sink. Events are
// applied strictly in delivery order; the sink sees no reordering.
func (c *Client) dispatch(name, data string) {
	ev, err := decodeEvent(name, []byte(data))
	if err != nil {
		c.logger.Warn("Dropping undecodable stream event",
			zap.String("event", name),
			zap.Error(err))
		return
	}
	if ev == nil {
		if name != "keepalive" {
			c.logger.Debug("Ignoring unknown stream event", zap.String("event", name))
		}
		return
	}
	c.sink.Apply(ev)
}

// decodeEvent maps an SSE event name and JSON payload to the typed event
// union. Returns (nil, nil) for keepalives and unknown event names.
func decodeEvent(name string, data []byte) (models.StreamEvent, error) {
	switch name {
	case "search_started":
		var ev models.SearchStartedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "location_found":
		var ev models.LocationFoundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "location_scored":
		var ev models.LocationScoredEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "search_completed":
		var ev models.SearchCompletedEvent
		if len(data) > 0 {
			if err := json.Unmarshal(data, &ev); err != nil {
				return nil, err
			}
		}
		return ev, nil
	default:
		return nil, nil
	}
}
