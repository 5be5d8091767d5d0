package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjiri1684/teacheron/metrics"
)

type fakeStore struct {
	mu        sync.Mutex
	online    map[uuid.UUID]bool
	refreshed int
}

func (s *fakeStore) SetPresence(_ context.Context, id uuid.UUID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[id] = online
	return nil
}

func (s *fakeStore) RefreshPresence(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) > 0 {
		s.refreshed++
	}
	return nil
}

func (s *fakeStore) isOnline(id uuid.UUID) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.online[id]
	return v, ok
}

type fakeConn struct {
	mu      sync.Mutex
	written []any
	fail    bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.written)
}

// fakeSocket flags overlapping WriteJSON calls and blocks reads until closed.
type fakeSocket struct {
	inflight  atomic.Int32
	overlaps  atomic.Int32
	writes    atomic.Int32
	first     atomic.Value
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{closed: make(chan struct{})}
}

func (s *fakeSocket) WriteJSON(v any) error {
	if s.inflight.Add(1) > 1 {
		s.overlaps.Add(1)
	}
	defer s.inflight.Add(-1)
	if s.writes.Add(1) == 1 {
		s.first.Store(v)
	}
	time.Sleep(time.Millisecond)
	return nil
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	<-s.closed
	return 0, nil, io.EOF
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func startHub(t *testing.T, refresh time.Duration) (*Hub, *fakeStore) {
	t.Helper()
	store := &fakeStore{online: map[uuid.UUID]bool{}}
	hub := NewHub(store, refresh, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, store
}

func TestHubPresenceFollowsConnections(t *testing.T) {
	hub, store := startHub(t, time.Hour)
	user := uuid.New()

	before := promtest.ToFloat64(metrics.OnlineUsers)

	first := &Client{UserID: user, Conn: &fakeConn{}}
	second := &Client{UserID: user, Conn: &fakeConn{}}
	hub.Register(first)
	hub.Register(second)
	assert.Equal(t, []uuid.UUID{user}, hub.OnlineUsers())
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.OnlineUsers), "gauge counts users, not sockets")

	online, _ := store.isOnline(user)
	assert.True(t, online)

	hub.Unregister(first)
	assert.Len(t, hub.OnlineUsers(), 1)
	online, _ = store.isOnline(user)
	assert.True(t, online, "still connected from a second socket")

	hub.Unregister(second)
	assert.Empty(t, hub.OnlineUsers())
	assert.Equal(t, before, promtest.ToFloat64(metrics.OnlineUsers))
	online, _ = store.isOnline(user)
	assert.False(t, online)
}

func TestHubSend(t *testing.T) {
	hub, store := startHub(t, time.Hour)
	user := uuid.New()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(&Client{UserID: user, Conn: good})
	hub.Register(&Client{UserID: user, Conn: bad})

	hub.Send(user, map[string]string{"type": "message"})
	hub.Send(uuid.New(), "nobody listening")

	require.Eventually(t, func() bool { return good.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 1 }, time.Second, 5*time.Millisecond)
	online, _ := store.isOnline(user)
	assert.True(t, online)
}

func TestHubRefreshesConnectedUsers(t *testing.T) {
	hub, store := startHub(t, 10*time.Millisecond)
	hub.Register(&Client{UserID: uuid.New(), Conn: &fakeConn{}})

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.refreshed > 0
	}, time.Second, 5*time.Millisecond)
}

func TestHubServeHasSingleWriter(t *testing.T) {
	hub, _ := startHub(t, time.Hour)
	user := uuid.New()
	sock := newFakeSocket()

	stop := make(chan struct{})
	var pushers sync.WaitGroup
	pushers.Add(1)
	go func() {
		defer pushers.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Send(user, map[string]string{"type": "bid.submitted"})
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()

	served := make(chan struct{})
	go func() {
		hub.serve(user, sock)
		close(served)
	}()

	require.Eventually(t, func() bool { return sock.writes.Load() > 5 }, 2*time.Second, 5*time.Millisecond)
	close(stop)
	pushers.Wait()

	assert.Zero(t, sock.overlaps.Load(), "writes to one socket must never overlap")
	assert.Equal(t, fiber.Map{"type": "presence", "online": true}, sock.first.Load())

	sock.Close()
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after the socket closed")
	}
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopsCleanly(t *testing.T) {
	store := &fakeStore{online: map[uuid.UUID]bool{}}
	hub := NewHub(store, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	sock := newFakeSocket()
	served := make(chan struct{})
	go func() {
		hub.serve(uuid.New(), sock)
		close(served)
	}()
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		<-served
		client := &Client{UserID: uuid.New(), Conn: &fakeConn{}}
		assert.False(t, hub.Register(client))
		hub.Unregister(client)
		assert.Nil(t, hub.OnlineUsers())
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}
}
