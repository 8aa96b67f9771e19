package domain

import (
	"fmt"
	"math"
	"time"
)

// StorageMode selects where an assignment is persisted.
type StorageMode string

const (
	// StorageCookie keeps the assignment in a cookie with an expiry.
	StorageCookie StorageMode = "cookie"
	// StorageLocal keeps the assignment in durable local storage with no expiry.
	// Any mode other than StorageCookie is treated as local.
	StorageLocal StorageMode = "local"
)

// ExperimentType decides what happens after a variant is resolved.
type ExperimentType string

const (
	// TypeRedirect navigates to the variant value.
	TypeRedirect ExperimentType = "redirect"
	// TypeEdits publishes the variant for page code to apply.
	TypeEdits ExperimentType = "edits"
)

// StatusActive is the only status that enables evaluation.
const StatusActive = "active"

// Fixed names used by storage, reporting and notification.
const (
	StorageKeyPrefix        = "abTest_"
	AnalyticsCategory       = "ABTest"
	EditsNotificationName   = "abTestEditsTriggered"
	DefaultCookieExpiryDays = 7
)

// Variant is one arm of an experiment.
type Variant struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// ExperimentDefinition is one entry of the experiment configuration list.
type ExperimentDefinition struct {
	ID               string         `yaml:"id" json:"id"`
	Status           string         `yaml:"status" json:"status"`
	Path             string         `yaml:"path,omitempty" json:"path,omitempty"`
	Storage          StorageMode    `yaml:"storage,omitempty" json:"storage,omitempty"`
	CookieExpiration Days           `yaml:"cookieExpiration,omitempty" json:"cookieExpiration,omitempty"`
	Type             ExperimentType `yaml:"type" json:"type"`
	Variants         []Variant      `yaml:"variants" json:"variants"`
	SendEvent        bool           `yaml:"sendEvent,omitempty" json:"sendEvent,omitempty"`
	GAEventName      string         `yaml:"gaEventName,omitempty" json:"gaEventName,omitempty"`
}

// StorageKey returns the namespaced key the assignment is stored under.
func (e ExperimentDefinition) StorageKey() string {
	return StorageKeyPrefix + e.ID
}

// Active reports whether the experiment should be evaluated at all.
func (e ExperimentDefinition) Active() bool {
	return e.Status == StatusActive
}

// MatchesPath reports whether the experiment applies to the given page path.
// An empty path filter matches every page.
func (e ExperimentDefinition) MatchesPath(path string) bool {
	return e.Path == "" || e.Path == path
}

// EffectiveStorage folds every unknown mode into StorageLocal.
func (e ExperimentDefinition) EffectiveStorage() StorageMode {
	if e.Storage == StorageCookie {
		return StorageCookie
	}
	return StorageLocal
}

// CookieLifetime returns how long a cookie assignment lives, falling back to
// the default when the configured value is missing or not positive.
// Fractional days are kept.
func (e ExperimentDefinition) CookieLifetime() time.Duration {
	days := float64(e.CookieExpiration)
	if days <= 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		days = DefaultCookieExpiryDays
	}
	return time.Duration(days * float64(24*time.Hour))
}

// EventAction is the analytics action name: the override or the id.
func (e ExperimentDefinition) EventAction() string {
	if e.GAEventName != "" {
		return e.GAEventName
	}
	return e.ID
}

// FindVariant looks up a declared variant by name.
func (e ExperimentDefinition) FindVariant(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Assignment maps one experiment to the variant chosen for the current scope.
type Assignment struct {
	ExperimentID string
	Variant      Variant
	Storage      StorageMode
	// Fresh is true when the variant was drawn and persisted on this pass.
	Fresh bool
}

// Notification is broadcast when an edits experiment resolves.
type Notification struct {
	Name         string  `json:"name"`
	ExperimentID string  `json:"experimentId"`
	Variant      Variant `json:"variant"`
}

// AnalyticsEvent is the single event reported per evaluated experiment.
type AnalyticsEvent struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label"`
}

// Validate checks the fields evaluation depends on.
func (e ExperimentDefinition) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidExperiment)
	}
	if len(e.Variants) == 0 {
		return fmt.Errorf("%w: experiment %s declares no variants", ErrInvalidExperiment, e.ID)
	}
	return nil
}
