package ports

import (
	"context"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// AnalyticsSink sends named events to an analytics backend.
type AnalyticsSink interface {
	// Available reports whether the backend is configured.
	Available() bool
	SendEvent(ctx context.Context, event domain.AnalyticsEvent) error
}
