// Package abtest is the embeddable experiment runner: it assigns visitors to
// persistent variants, reports assignments and dispatches redirects or edits.
package abtest

import (
	"context"

	"github.com/baditaflorin/go_ab_runner/internal/adapters/analytics"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/location"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/logger"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/random"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/storage"
	"github.com/baditaflorin/go_ab_runner/internal/core/assignment"
	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/core/results"
	"github.com/baditaflorin/go_ab_runner/internal/core/runner"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
	"github.com/baditaflorin/l"
)

// Public names for the domain types.
type (
	Experiment   = domain.ExperimentDefinition
	Variant      = domain.Variant
	Report       = domain.Report
	Outcome      = domain.Outcome
	Notification = domain.Notification
	Listener     = results.Listener
)

// Experiment types and storage modes.
const (
	TypeRedirect  = domain.TypeRedirect
	TypeEdits     = domain.TypeEdits
	StorageCookie = domain.StorageCookie
	StorageLocal  = domain.StorageLocal
)

// Runner evaluates experiments for one page view.
type Runner struct {
	core      *runner.Runner
	registry  *results.Registry
	bus       *results.Bus
	navigator *location.Recorder
	logger    ports.Logger
}

// Option defines a functional option for configuring a Runner.
type Option func(*runnerConfig)

type runnerConfig struct {
	Logger    ports.Logger
	Random    ports.RandomSource
	Analytics ports.AnalyticsSink
	Cookie    ports.KeyValueStore
	Local     ports.KeyValueStore
	Navigator ports.Navigator
	Location  ports.LocationProvider
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *runnerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortsLogger sets a logger that already satisfies the module's logger port.
func WithPortsLogger(lg Logger) Option {
	return func(cfg *runnerConfig) {
		cfg.Logger = lg
	}
}

// WithRandomSource sets the source variant indexes are drawn from.
func WithRandomSource(src RandomSource) Option {
	return func(cfg *runnerConfig) {
		cfg.Random = src
	}
}

// WithSeed makes variant selection deterministic.
func WithSeed(seed uint64) Option {
	return func(cfg *runnerConfig) {
		cfg.Random = random.NewSource(seed)
	}
}

// WithAnalytics sets the analytics integration.
func WithAnalytics(sink AnalyticsSink) Option {
	return func(cfg *runnerConfig) {
		cfg.Analytics = sink
	}
}

// WithCookieStore sets the backend for `storage: cookie` experiments.
func WithCookieStore(store KeyValueStore) Option {
	return func(cfg *runnerConfig) {
		cfg.Cookie = store
	}
}

// WithLocalStore sets the durable backend for every other experiment.
func WithLocalStore(store KeyValueStore) Option {
	return func(cfg *runnerConfig) {
		cfg.Local = store
	}
}

// WithNavigator replaces the recording navigator.
func WithNavigator(nav Navigator) Option {
	return func(cfg *runnerConfig) {
		cfg.Navigator = nav
	}
}

// WithLocation replaces the location parsed from the page URL.
func WithLocation(loc Location) Option {
	return func(cfg *runnerConfig) {
		cfg.Location = loc
	}
}

// New creates a runner for the page at pageURL. Unless overridden it keeps
// assignments in memory, records navigation instead of performing it and
// logs analytics events locally.
func New(pageURL string, opts ...Option) (*Runner, error) {
	config := &runnerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}
	if config.Location == nil {
		loc, err := location.Parse(pageURL)
		if err != nil {
			return nil, err
		}
		config.Location = loc
	}
	if config.Random == nil {
		config.Random = random.NewTimeSeeded()
	}
	if config.Analytics == nil {
		config.Analytics = analytics.None{}
	}
	if config.Cookie == nil {
		config.Cookie = storage.NewCookieJar()
	}
	if config.Local == nil {
		config.Local = storage.NewMemoryStore()
	}

	r := &Runner{
		registry: results.NewRegistry(),
		bus:      results.NewBus(),
		logger:   config.Logger,
	}
	if config.Navigator == nil {
		r.navigator = &location.Recorder{}
		config.Navigator = r.navigator
	}

	core, err := runner.New(runner.Dependencies{
		Location:  config.Location,
		Navigator: config.Navigator,
		Stores:    assignment.Stores{Cookie: config.Cookie, Local: config.Local},
		Analytics: config.Analytics,
		Results:   r.registry,
		Events:    r.bus,
		Random:    config.Random,
		Logger:    config.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.core = core
	return r, nil
}

// Run evaluates experiments in order.
func (r *Runner) Run(ctx context.Context, experiments []Experiment) Report {
	return r.core.Run(ctx, experiments)
}

// RunConfig evaluates a raw JSON or YAML experiment list.
func (r *Runner) RunConfig(ctx context.Context, raw []byte) Report {
	return r.core.RunConfig(ctx, raw)
}

// RunWhenReady evaluates raw configuration once doc has loaded. The
// returned channel receives the report.
func (r *Runner) RunWhenReady(ctx context.Context, doc Document, raw []byte) <-chan Report {
	return r.core.RunWhenReady(ctx, doc, raw)
}

// Subscribe registers a listener for edits notifications.
func (r *Runner) Subscribe(fn Listener) (unsubscribe func()) {
	return r.bus.Subscribe(fn)
}

// Result returns the variant resolved for an edits experiment.
func (r *Runner) Result(experimentID string) (Variant, bool) {
	return r.registry.Get(experimentID)
}

// Results returns every edits result of the page view.
func (r *Runner) Results() map[string]Variant {
	return r.registry.Snapshot()
}

// Navigation returns the last navigation target when the default recording
// navigator is in use.
func (r *Runner) Navigation() (string, bool) {
	if r.navigator == nil {
		return "", false
	}
	return r.navigator.Last()
}

// Close releases the logger.
func (r *Runner) Close() error {
	return r.logger.Close()
}
