package abtest

import (
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ab_runner/internal/adapters/analytics"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/document"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/storage"
	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
)

// Capabilities a host can implement to plug into the runner.
type (
	AnalyticsEvent = domain.AnalyticsEvent
	AnalyticsSink  = ports.AnalyticsSink
	KeyValueStore  = ports.KeyValueStore
	Document       = ports.Document
	Navigator      = ports.Navigator
	Location       = ports.LocationProvider
	RandomSource   = ports.RandomSource
	Logger         = ports.Logger
)

// Bundled adapters.
type (
	UniversalAnalytics   = analytics.Universal
	MeasurementAnalytics = analytics.Measurement
	CookieJar            = storage.CookieJar
	MemoryStore          = storage.MemoryStore
	SQLiteStore          = storage.SQLiteStore
	ScopedStore          = storage.ScopedStore
	DocumentState        = document.State
)

// ErrAnalyticsUnavailable is returned by sinks with no backend configured.
var ErrAnalyticsUnavailable = domain.ErrAnalyticsUnavailable

// NewUniversalAnalytics reports to the classic collect endpoint. A nil client
// uses a default fasthttp.Client.
func NewUniversalAnalytics(client *fasthttp.Client, trackingID, clientID string) *UniversalAnalytics {
	return analytics.NewUniversal(defaultClient(client), trackingID, clientID)
}

// NewMeasurementAnalytics reports through the GA4 measurement protocol.
// A nil client uses a default fasthttp.Client.
func NewMeasurementAnalytics(client *fasthttp.Client, measurementID, apiSecret, clientID string) *MeasurementAnalytics {
	return analytics.NewMeasurement(defaultClient(client), measurementID, apiSecret, clientID)
}

func defaultClient(client *fasthttp.Client) *fasthttp.Client {
	if client == nil {
		return &fasthttp.Client{}
	}
	return client
}

// PreferAnalytics sends each event to the first available sink.
func PreferAnalytics(sinks ...AnalyticsSink) AnalyticsSink {
	return analytics.Prefer(sinks...)
}

// NewCookieJar returns an in-memory cookie store that honors expiry.
func NewCookieJar() *CookieJar {
	return storage.NewCookieJar()
}

// NewMemoryStore returns an in-memory local store.
func NewMemoryStore() *MemoryStore {
	return storage.NewMemoryStore()
}

// OpenSQLiteStore opens durable local storage at path. Use Scope with a
// visitor id from NewScopeID to get a KeyValueStore.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	return storage.NewSQLiteStore(path)
}

// NewScopeID returns a fresh visitor scope id.
func NewScopeID() string {
	return storage.NewScopeID()
}

// ValidScopeID reports whether id looks like a scope id from NewScopeID.
func ValidScopeID(id string) bool {
	return storage.ValidScopeID(id)
}

// NewDocument returns a document that is still loading when loading is true.
// Call MarkLoaded to fire deferred evaluations.
func NewDocument(loading bool) *DocumentState {
	return document.New(loading)
}
