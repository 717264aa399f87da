package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/pagepulse/internal/store"
	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned documents per URL and counts calls.
type fakeProvider struct {
	mu    sync.Mutex
	docs  map[string]string
	errs  map[string]error
	calls atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{docs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeProvider) respond(url, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[url] = doc
}

func (f *fakeProvider) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

func (f *fakeProvider) Fetch(_ context.Context, url string, _ schema.Strategy) (*schema.RawResponse, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	raw, ok := f.docs[url]
	if !ok {
		raw = `{"lighthouseResult":{"categories":{"performance":{"score":0.5}}}}`
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return &schema.RawResponse{Raw: json.RawMessage(raw), Doc: doc}, nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequentialIDs returns deterministic, sortable IDs.
func sequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s-%04d", prefix, n.Add(1)) }
}

type fixture struct {
	auditor  *Auditor
	store    *store.SQLStore
	provider *fakeProvider
	clock    *testClock
	user     schema.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s, err := store.NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := &testClock{now: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)}
	provider := newFakeProvider()
	all := append([]Option{WithClock(clock.Now), WithIDGenerator(sequentialIDs("id"))}, opts...)
	return &fixture{
		auditor:  NewAuditor(provider, s, all...),
		store:    s,
		provider: provider,
		clock:    clock,
		user:     schema.User{ID: "user-1"},
	}
}

func (f *fixture) addSite(t *testing.T, url string) *schema.Site {
	t.Helper()
	site, err := f.auditor.AddSite(context.Background(), f.user, url, "")
	require.NoError(t, err)
	return site
}
