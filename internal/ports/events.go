package ports

import "github.com/baditaflorin/go_ab_runner/internal/core/domain"

// ResultsSink receives resolved variants of edits experiments.
type ResultsSink interface {
	Record(experimentID string, variant domain.Variant)
}

// Broadcaster delivers notifications to every registered listener.
type Broadcaster interface {
	Publish(n domain.Notification)
}
