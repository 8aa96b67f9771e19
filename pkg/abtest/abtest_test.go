package abtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_ab_runner/internal/testutil"
)

const pageConfig = `[
  {
    "id": "pricing",
    "status": "active",
    "path": "/",
    "storage": "cookie",
    "cookieExpiration": 1,
    "type": "redirect",
    "variants": [{"name": "new", "value": "/pricing"}],
    "sendEvent": true
  },
  {
    "id": "hero",
    "status": "active",
    "type": "edits",
    "variants": [{"name": "blue", "value": "#00f"}]
  }
]`

func TestRunnerEndToEnd(t *testing.T) {
	log := &testutil.Logger{}
	jar := NewCookieJar()
	r, err := New("https://example.com/", WithPortsLogger(log), WithSeed(1), WithCookieStore(jar))
	require.NoError(t, err)

	var seen []Notification
	r.Subscribe(func(n Notification) { seen = append(seen, n) })

	start := time.Now()
	report := r.RunConfig(context.Background(), []byte(pageConfig))
	require.NoError(t, report.Err)
	require.Len(t, report.Outcomes, 2)

	target, ok := r.Navigation()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/pricing", target)

	exp, ok := jar.Expiry("abTest_pricing")
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(24*time.Hour), exp, 5*time.Second)

	v, ok := r.Result("hero")
	require.True(t, ok)
	assert.Equal(t, "#00f", v.Value)
	assert.Equal(t, map[string]Variant{"hero": v}, r.Results())
	require.Len(t, seen, 1)
	assert.Equal(t, "hero", seen[0].ExperimentID)

	// No analytics integration configured: the event is logged instead.
	assert.False(t, report.Outcomes[0].EventSent)
	assert.Equal(t, 1, countMessages(log, "GA Event"))
}

func countMessages(log *testutil.Logger, msg string) int {
	n := 0
	for _, e := range log.Entries {
		if e.Msg == msg {
			n++
		}
	}
	return n
}

func TestRunnerSharesScopeAcrossPageViews(t *testing.T) {
	local := NewMemoryStore()
	exps := []Experiment{{
		ID:       "hero",
		Status:   "active",
		Type:     TypeEdits,
		Variants: []Variant{{Name: "a"}, {Name: "b"}, {Name: "c"}},
	}}

	first, err := New("https://example.com/", WithPortsLogger(&testutil.Logger{}), WithLocalStore(local))
	require.NoError(t, err)
	want := first.Run(context.Background(), exps).Outcomes[0].Assignment.Variant

	for i := 0; i < 10; i++ {
		next, err := New("https://example.com/", WithPortsLogger(&testutil.Logger{}), WithLocalStore(local))
		require.NoError(t, err)
		got := next.Run(context.Background(), exps).Outcomes[0].Assignment
		assert.Equal(t, want, got.Variant)
		assert.False(t, got.Fresh)
	}
}

func TestRunWhenReady(t *testing.T) {
	r, err := New("https://example.com/", WithPortsLogger(&testutil.Logger{}))
	require.NoError(t, err)

	doc := NewDocument(true)
	done := r.RunWhenReady(context.Background(), doc, []byte(pageConfig))
	_, ok := r.Result("hero")
	assert.False(t, ok)

	doc.MarkLoaded()
	report := <-done
	assert.Len(t, report.Outcomes, 2)
	_, ok = r.Result("hero")
	assert.True(t, ok)
}

func TestNewRejectsRelativePageURL(t *testing.T) {
	_, err := New("/pricing", WithPortsLogger(&testutil.Logger{}))
	assert.Error(t, err)
}

func TestCustomNavigatorDisablesRecording(t *testing.T) {
	nav := &testutil.Navigator{}
	r, err := New("https://example.com/", WithPortsLogger(&testutil.Logger{}), WithNavigator(nav))
	require.NoError(t, err)

	r.RunConfig(context.Background(), []byte(pageConfig))
	assert.Equal(t, []string{"https://example.com/pricing"}, nav.Targets)
	_, ok := r.Navigation()
	assert.False(t, ok)
}
