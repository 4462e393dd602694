package application_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/statpanel/internal/application"
	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockKVStore struct {
	mu     sync.Mutex
	values map[string]string
	down   bool
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{values: map[string]string{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return "", false, driven.ErrStoreUnavailable
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockKVStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return driven.ErrStoreUnavailable
	}
	m.values[key] = value
	return nil
}

func (m *mockKVStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return driven.ErrStoreUnavailable
	}
	delete(m.values, key)
	return nil
}

func (m *mockKVStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockKVStore) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *mockKVStore) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// fakeClock is a settable clock source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockQueryTransport struct {
	calls  atomic.Int32
	resp   *driven.Response
	err    error
	block  bool
	bearer atomic.Value
	body   atomic.Value
}

func (m *mockQueryTransport) PostQuery(ctx context.Context, bearer string, body []byte) (*driven.Response, error) {
	m.calls.Add(1)
	m.bearer.Store(bearer)
	m.body.Store(body)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.resp, m.err
}

type mockIdentityTransport struct {
	calls    int
	username string
	password string
	resp     *driven.Response
	err      error
}

func (m *mockIdentityTransport) SignIn(_ context.Context, username, password string) (*driven.Response, error) {
	m.calls++
	m.username = username
	m.password = password
	return m.resp, m.err
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// fixture wires a SessionContext over an in-memory store and fake clock.
type fixture struct {
	store *mockKVStore
	clock *fakeClock
	sc    *application.SessionContext
}

func newFixture() *fixture {
	store := newMockKVStore()
	clock := newFakeClock()
	return &fixture{
		store: store,
		clock: clock,
		sc:    application.NewSessionContext(store, application.WithClock(clock.Now)),
	}
}

// login stores a credential and marks activity as a successful signin would.
func (f *fixture) login(token string) {
	ctx := context.Background()
	if err := application.NewCredentialStore(f.sc).Save(ctx, token); err != nil {
		panic(err)
	}
	if err := application.NewActivityClock(f.sc).MarkActivity(ctx); err != nil {
		panic(err)
	}
}
