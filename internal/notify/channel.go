// ABOUTME: Long-lived server-push notification channel over SSE
// ABOUTME: Opens per authentication epoch, dispatches typed events, tears down cleanly

package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loco-dev/loco-client/internal/api"
	"github.com/loco-dev/loco-client/internal/dedupe"
	"github.com/loco-dev/loco-client/internal/session"
)

// State is the channel's connection lifecycle.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Handler receives one decoded notification event.
type Handler func(api.NotificationEvent)

// Redelivered events within this window are dropped instead of re-dispatched.
const (
	dedupeTTL     = 5 * time.Minute
	dedupeMaxSize = 256
)

// Channel maintains at most one open push connection, bound to the session
// epoch it was created under. It opens (after a short debounce) when the
// session becomes authenticated and closes when it goes anonymous.
//
// There is no automatic reconnect on transport error: the stream end is
// recorded and observable via State/LastError, and callers may call Connect
// again. This mirrors the platform's browser client, where reconnection is
// the transport's concern.
type Channel struct {
	baseURL  string
	http     *http.Client
	session  *session.Store
	debounce time.Duration
	logger   *slog.Logger
	seen     *dedupe.Cache

	mu         sync.Mutex
	state      State
	epoch      uint64
	cancel     context.CancelFunc
	lastErr    error
	closed     bool
	listenerID string
	handlers   map[string]map[string]Handler // event type -> handler id -> handler
	handlerIDs map[string]string             // handler id -> event type
}

// Options configures a Channel.
type Options struct {
	BaseURL  string
	HTTP     *http.Client // must carry the auth cookie jar (gateway.HTTPClient)
	Session  *session.Store
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewChannel creates a notification channel in the Closed state. Nothing
// connects until Connect is called.
func NewChannel(opts Options) *Channel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = time.Second
	}
	return &Channel{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       httpClient,
		session:    opts.Session,
		debounce:   debounce,
		logger:     logger.With("component", "notify"),
		seen:       dedupe.New(dedupeTTL, dedupeMaxSize),
		handlers:   make(map[string]map[string]Handler),
		handlerIDs: make(map[string]string),
	}
}

// Subscribe registers a handler for an event type and returns an ID for
// Unsubscribe. Handlers for api.EventAchievementUnlocked receive achievement
// toasts; other types are dispatched by their tag.
func (c *Channel) Subscribe(eventType string, fn Handler) string {
	id := uuid.New().String()
	c.mu.Lock()
	if _, ok := c.handlers[eventType]; !ok {
		c.handlers[eventType] = make(map[string]Handler)
	}
	c.handlers[eventType][id] = fn
	c.handlerIDs[id] = eventType
	c.mu.Unlock()
	return id
}

// Unsubscribe removes a handler. Unknown IDs are ignored.
func (c *Channel) Unsubscribe(id string) {
	c.mu.Lock()
	if eventType, ok := c.handlerIDs[id]; ok {
		delete(c.handlers[eventType], id)
		if len(c.handlers[eventType]) == 0 {
			delete(c.handlers, eventType)
		}
		delete(c.handlerIDs, id)
	}
	c.mu.Unlock()
}

// Connect ties the channel to the session store: it opens a connection for
// the current epoch if already authenticated and follows every later
// transition. Calling Connect on an already-connected channel is a no-op.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.listenerID == "" {
		c.listenerID = c.session.Subscribe(c.onSessionChange)
	}
	c.mu.Unlock()

	snap := c.session.Read()
	c.onSessionChange(snap)
}

// Close tears the channel down: stops following the session, cancels any
// debounce timer or open connection, and guarantees no handler fires
// afterwards. Safe to call from any state, multiple times.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	listenerID := c.listenerID
	c.listenerID = ""
	c.teardownLocked()
	c.mu.Unlock()

	if listenerID != "" {
		c.session.Unsubscribe(listenerID)
	}
	c.logger.Debug("channel closed")
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent transport or protocol error, for
// diagnostics. It does not imply the channel is closed.
func (c *Channel) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// onSessionChange reacts to authentication transitions: authenticated opens
// a connection for the new epoch, anonymous closes the current one.
func (c *Channel) onSessionChange(snap session.Session) {
	if snap.Authenticated {
		c.open(snap.Epoch)
		return
	}

	c.mu.Lock()
	c.teardownLocked()
	c.mu.Unlock()
}

// open starts a connection attempt for the given epoch. A connection already
// live for the same epoch is left alone; one from an older epoch is closed
// first, so no two connections ever coexist.
func (c *Channel) open(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.epoch == epoch && c.state != StateClosed {
		return
	}

	c.teardownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.epoch = epoch
	c.state = StateConnecting

	c.logger.Debug("channel connecting", "epoch", epoch, "debounce", c.debounce)
	go c.run(ctx, epoch)
}

// teardownLocked cancels the active connection (or pending debounce) and
// moves to Closed. Idempotent. Must be called with mu held.
func (c *Channel) teardownLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateClosed
}

// run waits out the debounce, opens the stream, and pumps events until the
// context is cancelled or the transport ends the stream.
func (c *Channel) run(ctx context.Context, epoch uint64) {
	// Debounce: avoid connecting against a not-yet-stable client state
	select {
	case <-time.After(c.debounce):
	case <-ctx.Done():
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+api.EndpointNotificationStream, nil)
	if err != nil {
		c.fail(epoch, fmt.Errorf("building stream request: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(epoch, fmt.Errorf("opening stream: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.fail(epoch, fmt.Errorf("stream returned status %d", resp.StatusCode))
		return
	}

	if !c.markOpen(epoch) {
		return
	}
	c.logger.Info("notification stream open", "epoch", epoch)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			// Comments, event ids, and blank keep-alive lines
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		c.dispatch(ctx, epoch, payload)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.fail(epoch, fmt.Errorf("stream read: %w", err))
		return
	}

	// Server ended the stream cleanly
	c.markClosed(epoch, nil)
}

// dispatch decodes one event payload and routes it to subscribed handlers.
// Malformed payloads are logged and dropped; they never escape as errors and
// never tear down the connection.
func (c *Channel) dispatch(ctx context.Context, epoch uint64, payload string) {
	var event api.NotificationEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logger.Warn("dropping malformed notification", "error", err)
		return
	}
	if event.Type == "" {
		c.logger.Warn("dropping notification without type")
		return
	}

	if c.seen.Seen(event.Type + ":" + string(event.Data)) {
		c.logger.Debug("dropping redelivered notification", "type", event.Type)
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil || c.epoch != epoch {
		// Torn down (or superseded) while the event was in flight
		c.mu.Unlock()
		return
	}
	targets := make([]Handler, 0, len(c.handlers[event.Type]))
	for _, fn := range c.handlers[event.Type] {
		targets = append(targets, fn)
	}
	c.mu.Unlock()

	if len(targets) == 0 {
		c.logger.Debug("no handler for notification", "type", event.Type)
		return
	}

	for _, fn := range targets {
		fn(event)
	}
}

// markOpen transitions Connecting -> Open if this connection is still the
// current one. Returns false when superseded or torn down.
func (c *Channel) markOpen(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateConnecting {
		return false
	}
	c.state = StateOpen
	return true
}

// markClosed records the end of the current connection.
func (c *Channel) markClosed(epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	if err != nil {
		c.lastErr = err
	}
	c.state = StateClosed
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// fail records a transport error and closes the connection state.
func (c *Channel) fail(epoch uint64, err error) {
	c.logger.Warn("notification stream error", "epoch", epoch, "error", err)
	c.markClosed(epoch, err)
}
