package analytics

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// DefaultUniversalEndpoint is the classic collect endpoint.
const DefaultUniversalEndpoint = "https://www.google-analytics.com/collect"

// Universal sends classic `send event` hits.
type Universal struct {
	Client     doer
	Endpoint   string
	TrackingID string
	ClientID   string
	Timeout    time.Duration
}

// NewUniversal creates a classic integration. An empty tracking id leaves it
// unavailable.
func NewUniversal(client *fasthttp.Client, trackingID, clientID string) *Universal {
	s := &Universal{
		Endpoint:   DefaultUniversalEndpoint,
		TrackingID: trackingID,
		ClientID:   clientID,
		Timeout:    DefaultTimeout,
	}
	if client != nil {
		s.Client = client
	}
	return s
}

func (u *Universal) Available() bool {
	return u.TrackingID != "" && u.Client != nil
}

// SendEvent posts a form-encoded event hit.
func (u *Universal) SendEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if !u.Available() {
		return domain.ErrAnalyticsUnavailable
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("v", "1")
	args.Set("tid", u.TrackingID)
	args.Set("cid", u.ClientID)
	args.Set("t", "event")
	args.Set("ec", event.Category)
	args.Set("ea", event.Action)
	args.Set("el", event.Label)

	return post(ctx, u.Client, u.Timeout, u.Endpoint, "application/x-www-form-urlencoded", args.QueryString())
}
