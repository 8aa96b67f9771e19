package domain

import "errors"

var (
	// ErrConfigurationMissing disables a whole runner pass.
	ErrConfigurationMissing = errors.New("AB test configuration not found")
	// ErrInvalidExperiment marks a single configuration entry that cannot be evaluated.
	ErrInvalidExperiment = errors.New("invalid experiment definition")
	// ErrStorageRead is returned when a stored assignment cannot be read.
	ErrStorageRead = errors.New("assignment storage read failed")
	// ErrStorageWrite is returned when a new assignment cannot be persisted.
	ErrStorageWrite = errors.New("assignment storage write failed")
	// ErrAnalyticsUnavailable is returned by sinks that have no backend configured.
	ErrAnalyticsUnavailable = errors.New("analytics integration unavailable")
)
