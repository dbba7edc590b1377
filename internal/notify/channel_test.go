// ABOUTME: Tests for the notification channel lifecycle and dispatch
// ABOUTME: Uses an SSE httptest server; covers open, malformed drop, teardown, dedupe

package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loco-dev/loco-client/internal/api"
	"github.com/loco-dev/loco-client/internal/session"
)

// sseServer streams scripted payload lines to each connected client.
type sseServer struct {
	*httptest.Server

	mu       sync.Mutex
	clients  int
	payloads chan string
}

func newSSEServer(t *testing.T) *sseServer {
	t.Helper()

	s := &sseServer{payloads: make(chan string, 16)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.EndpointNotificationStream {
			http.NotFound(w, r)
			return
		}

		s.mu.Lock()
		s.clients++
		s.mu.Unlock()

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case payload := <-s.payloads:
				fmt.Fprintf(w, "data: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *sseServer) send(payload string) {
	s.payloads <- payload
}

func (s *sseServer) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients
}

func achievementJSON(slug string) string {
	data, _ := json.Marshal(api.NotificationEvent{
		Type: api.EventAchievementUnlocked,
		Data: json.RawMessage(fmt.Sprintf(`{"slug":%q,"name":"First Blood","xp_reward":50}`, slug)),
	})
	return string(data)
}

func newTestChannel(t *testing.T, srv *sseServer) (*Channel, *session.Store) {
	t.Helper()

	store := session.NewStore(nil)
	ch := NewChannel(Options{
		BaseURL:  srv.URL,
		Session:  store,
		Debounce: 10 * time.Millisecond,
	})
	t.Cleanup(ch.Close)
	return ch, store
}

func waitForState(t *testing.T, ch *Channel, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return ch.State() == want },
		2*time.Second, 5*time.Millisecond, "channel never reached %v", want)
}

func TestChannel_LoginOpensLogoutCloses(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	ch.Connect()
	assert.Equal(t, StateClosed, ch.State()) // anonymous: nothing to open

	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	events := make(chan api.NotificationEvent, 4)
	ch.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) { events <- e })

	srv.send(achievementJSON("first-blood"))
	select {
	case e := <-events:
		var got api.AchievementUnlocked
		require.NoError(t, json.Unmarshal(e.Data, &got))
		assert.Equal(t, "first-blood", got.Slug)
		assert.Equal(t, 50, got.XPReward)
	case <-time.After(2 * time.Second):
		t.Fatal("achievement event never dispatched")
	}

	store.Clear()
	waitForState(t, ch, StateClosed)

	// Messages after logout must not reach handlers
	srv.send(achievementJSON("post-logout"))
	select {
	case e := <-events:
		t.Fatalf("handler fired after logout: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannel_MalformedPayloadDroppedStreamStaysOpen(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	events := make(chan api.NotificationEvent, 4)
	ch.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) { events <- e })

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	srv.send("not json")
	srv.send(achievementJSON("after-garbage"))

	select {
	case e := <-events:
		assert.Equal(t, api.EventAchievementUnlocked, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("valid event after malformed one never dispatched")
	}
	assert.Equal(t, StateOpen, ch.State())
}

func TestChannel_UnknownTypeIsDropped(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	events := make(chan api.NotificationEvent, 4)
	ch.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) { events <- e })

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	srv.send(`{"type":"leaderboard_moved","data":{}}`)
	srv.send(achievementJSON("known"))

	e := <-events
	assert.Equal(t, api.EventAchievementUnlocked, e.Type)
	assert.Len(t, events, 0)
}

func TestChannel_DuplicateEventDispatchedOnce(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	events := make(chan api.NotificationEvent, 4)
	ch.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) { events <- e })

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	srv.send(achievementJSON("dup"))
	srv.send(achievementJSON("dup"))
	srv.send(achievementJSON("other"))

	first := <-events
	assert.Equal(t, api.EventAchievementUnlocked, first.Type)

	var second api.AchievementUnlocked
	e := <-events
	require.NoError(t, json.Unmarshal(e.Data, &second))
	assert.Equal(t, "other", second.Slug) // the duplicate was swallowed
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	ch.Close()
	ch.Close()
	ch.Close()
	assert.Equal(t, StateClosed, ch.State())
}

func TestChannel_NewEpochReplacesConnection(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)
	require.Equal(t, 1, srv.clientCount())

	store.Clear()
	waitForState(t, ch, StateClosed)

	store.SetIdentity(api.User{ID: 2, Username: "grace"})
	waitForState(t, ch, StateOpen)
	require.Eventually(t, func() bool { return srv.clientCount() == 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestChannel_ConnectWhileAuthenticatedOpens(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	// Already logged in before the channel exists
	store.SetIdentity(api.User{ID: 1, Username: "ada"})

	ch.Connect()
	waitForState(t, ch, StateOpen)
}

func TestChannel_SubscribeUnsubscribe(t *testing.T) {
	srv := newSSEServer(t)
	ch, store := newTestChannel(t, srv)

	events := make(chan api.NotificationEvent, 4)
	id := ch.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) { events <- e })

	ch.Connect()
	store.SetIdentity(api.User{ID: 1, Username: "ada"})
	waitForState(t, ch, StateOpen)

	ch.Unsubscribe(id)
	srv.send(achievementJSON("nobody-listening"))

	select {
	case e := <-events:
		t.Fatalf("unsubscribed handler fired: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}
