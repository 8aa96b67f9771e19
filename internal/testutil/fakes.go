// Package testutil provides fakes for the ports used in tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level string
	Msg   string
	KV    []interface{}
}

// Logger records every call.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func (l *Logger) add(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, KV: kv})
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.add("debug", msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.add("info", msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.add("warn", msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.add("error", msg, kv) }
func (l *Logger) Close() error                        { return nil }

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Random replays a fixed sequence of indexes, wrapping around.
type Random struct {
	Seq   []int
	calls int
}

func (r *Random) IntN(n int) int {
	if len(r.Seq) == 0 {
		return 0
	}
	v := r.Seq[r.calls%len(r.Seq)] % n
	r.calls++
	return v
}

// Calls returns how many draws were made.
func (r *Random) Calls() int { return r.calls }

// Write is one recorded Set call.
type Write struct {
	Key   string
	Value string
	TTL   time.Duration
}

// Store is an in-memory store that counts reads and writes and can fail.
type Store struct {
	Data     map[string]string
	Reads    int
	Writes   []Write
	ReadErr  error
	WriteErr error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{Data: make(map[string]string)}
}

func (s *Store) Get(key string) (string, bool, error) {
	s.Reads++
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	v, ok := s.Data[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string, ttl time.Duration) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Writes = append(s.Writes, Write{Key: key, Value: value, TTL: ttl})
	s.Data[key] = value
	return nil
}

// Touched reports whether the store saw any access.
func (s *Store) Touched() bool {
	return s.Reads > 0 || len(s.Writes) > 0
}

// Location is a fixed page location.
type Location struct {
	HrefValue string
	OriginURL string
	Path      string
}

// NewLocation builds a location from origin and path.
func NewLocation(origin, path string) *Location {
	return &Location{HrefValue: origin + path, OriginURL: origin, Path: path}
}

func (l *Location) Href() string     { return l.HrefValue }
func (l *Location) Origin() string   { return l.OriginURL }
func (l *Location) Pathname() string { return l.Path }

// Navigator records navigation targets.
type Navigator struct {
	Targets []string
}

func (n *Navigator) Navigate(target string) { n.Targets = append(n.Targets, target) }

// Analytics records sent events.
type Analytics struct {
	Unavailable bool
	Err         error
	Events      []domain.AnalyticsEvent
}

func (a *Analytics) Available() bool { return !a.Unavailable }

func (a *Analytics) SendEvent(_ context.Context, event domain.AnalyticsEvent) error {
	if a.Unavailable {
		return domain.ErrAnalyticsUnavailable
	}
	if a.Err != nil {
		return a.Err
	}
	a.Events = append(a.Events, event)
	return nil
}

// ErrBroken is a generic failure for fakes.
var ErrBroken = errors.New("broken")

// Experiment builds an active experiment with the named variants.
func Experiment(id string, typ domain.ExperimentType, names ...string) domain.ExperimentDefinition {
	variants := make([]domain.Variant, 0, len(names))
	for _, n := range names {
		variants = append(variants, domain.Variant{Name: n, Value: fmt.Sprintf("/%s", n)})
	}
	return domain.ExperimentDefinition{
		ID:       id,
		Status:   domain.StatusActive,
		Type:     typ,
		Variants: variants,
	}
}

// Discard is a logger that drops every entry.
type Discard struct{}

func (Discard) Debug(string, ...interface{}) {}
func (Discard) Info(string, ...interface{})  {}
func (Discard) Warn(string, ...interface{})  {}
func (Discard) Error(string, ...interface{}) {}
func (Discard) Close() error                 { return nil }
