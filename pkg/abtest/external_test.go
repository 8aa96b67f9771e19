package abtest_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_ab_runner/pkg/abtest"
)

// recordingSink is an analytics integration written against the public API only.
type recordingSink struct {
	mu     sync.Mutex
	events []abtest.AnalyticsEvent
}

func (s *recordingSink) Available() bool { return true }

func (s *recordingSink) SendEvent(_ context.Context, event abtest.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// loadedDocument is a Document that is never loading.
type loadedDocument struct{}

func (loadedDocument) Loading() bool          { return false }
func (loadedDocument) OnContentLoaded(func()) {}

const externalConfig = `[
  {"id": "hero", "status": "active", "type": "edits", "sendEvent": true,
   "gaEventName": "hero_test", "variants": [{"name": "blue", "value": "#00f"}]}
]`

func TestCustomSinkAndDocument(t *testing.T) {
	sink := &recordingSink{}
	var _ abtest.AnalyticsSink = sink
	var _ abtest.Document = loadedDocument{}

	r, err := abtest.New("https://example.com/",
		abtest.WithPortsLogger(discard{}),
		abtest.WithSeed(1),
		abtest.WithAnalytics(abtest.PreferAnalytics(
			abtest.NewUniversalAnalytics(nil, "", "visitor"),
			sink,
		)),
	)
	require.NoError(t, err)

	report := <-r.RunWhenReady(context.Background(), loadedDocument{}, []byte(externalConfig))
	require.NoError(t, report.Err)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].EventSent)
	assert.Equal(t, []abtest.AnalyticsEvent{{Category: "ABTest", Action: "hero_test", Label: "blue"}}, sink.events)
}

func TestSQLiteStoreFromPublicAPI(t *testing.T) {
	store, err := abtest.OpenSQLiteStore(filepath.Join(t.TempDir(), "ab.db"))
	require.NoError(t, err)
	defer store.Close()

	scope := abtest.NewScopeID()
	require.True(t, abtest.ValidScopeID(scope))

	var first abtest.Variant
	for i := 0; i < 3; i++ {
		r, err := abtest.New("https://example.com/",
			abtest.WithPortsLogger(discard{}),
			abtest.WithSeed(uint64(i)),
			abtest.WithLocalStore(store.Scope(scope)),
		)
		require.NoError(t, err)
		report := r.RunConfig(context.Background(), []byte(`[
  {"id": "hero", "status": "active", "type": "edits",
   "variants": [{"name": "a", "value": "1"}, {"name": "b", "value": "2"}, {"name": "c", "value": "3"}]}
]`))
		require.Len(t, report.Outcomes, 1)
		v, ok := r.Result("hero")
		require.True(t, ok)
		if i == 0 {
			first = v
			continue
		}
		assert.Equal(t, first, v)
	}
}

func TestDeferredDocumentFromPublicAPI(t *testing.T) {
	r, err := abtest.New("https://example.com/", abtest.WithPortsLogger(discard{}))
	require.NoError(t, err)

	doc := abtest.NewDocument(true)
	done := r.RunWhenReady(context.Background(), doc, []byte(externalConfig))
	_, ok := r.Result("hero")
	assert.False(t, ok)

	doc.MarkLoaded()
	<-done
	v, ok := r.Result("hero")
	require.True(t, ok)
	assert.Equal(t, "blue", v.Name)
}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
func (discard) Close() error                 { return nil }
