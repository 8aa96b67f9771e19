// Package analytics reports experiment assignments to Google Analytics,
// preferring the classic collect integration over gtag measurement.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
)

// DefaultTimeout bounds a single event delivery.
const DefaultTimeout = 5 * time.Second

// Preferred sends to the first available sink.
type Preferred struct {
	sinks []ports.AnalyticsSink
}

// Prefer builds a sink that tries integrations in order.
func Prefer(sinks ...ports.AnalyticsSink) *Preferred {
	return &Preferred{sinks: sinks}
}

func (p *Preferred) pick() ports.AnalyticsSink {
	for _, s := range p.sinks {
		if s != nil && s.Available() {
			return s
		}
	}
	return nil
}

// Available reports whether any integration is configured.
func (p *Preferred) Available() bool {
	return p.pick() != nil
}

// SendEvent delivers to the first available integration.
func (p *Preferred) SendEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	s := p.pick()
	if s == nil {
		return domain.ErrAnalyticsUnavailable
	}
	return s.SendEvent(ctx, event)
}

// None is a sink with no backend.
type None struct{}

func (None) Available() bool { return false }

func (None) SendEvent(context.Context, domain.AnalyticsEvent) error {
	return domain.ErrAnalyticsUnavailable
}

// doer is the subset of fasthttp.Client the sinks use.
type doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

func timeoutFor(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < fallback {
			return left, nil
		}
	}
	return fallback, nil
}

func post(ctx context.Context, client doer, timeout time.Duration, uri, contentType string, body []byte) error {
	wait, err := timeoutFor(ctx, timeout)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	if err := client.DoTimeout(req, resp, wait); err != nil {
		return fmt.Errorf("send analytics event: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("send analytics event: unexpected status %d", code)
	}
	return nil
}
