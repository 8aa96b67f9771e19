package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// DefaultMeasurementEndpoint is the gtag measurement endpoint.
const DefaultMeasurementEndpoint = "https://www.google-analytics.com/mp/collect"

// Measurement sends gtag-style events: the action is the event name and the
// category and label travel as parameters.
type Measurement struct {
	Client        doer
	Endpoint      string
	MeasurementID string
	APISecret     string
	ClientID      string
	Timeout       time.Duration
}

// NewMeasurement creates a gtag integration. Missing credentials leave it
// unavailable.
func NewMeasurement(client *fasthttp.Client, measurementID, apiSecret, clientID string) *Measurement {
	s := &Measurement{
		Endpoint:      DefaultMeasurementEndpoint,
		MeasurementID: measurementID,
		APISecret:     apiSecret,
		ClientID:      clientID,
		Timeout:       DefaultTimeout,
	}
	if client != nil {
		s.Client = client
	}
	return s
}

func (m *Measurement) Available() bool {
	return m.MeasurementID != "" && m.APISecret != "" && m.Client != nil
}

type measurementPayload struct {
	ClientID string             `json:"client_id"`
	Events   []measurementEvent `json:"events"`
}

type measurementEvent struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// SendEvent posts a JSON measurement payload.
func (m *Measurement) SendEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if !m.Available() {
		return domain.ErrAnalyticsUnavailable
	}

	body, err := json.Marshal(measurementPayload{
		ClientID: m.ClientID,
		Events: []measurementEvent{{
			Name: event.Action,
			Params: map[string]string{
				"event_category": event.Category,
				"event_label":    event.Label,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal measurement payload: %w", err)
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("measurement_id", m.MeasurementID)
	args.Set("api_secret", m.APISecret)

	return post(ctx, m.Client, m.Timeout, m.Endpoint+"?"+args.String(), "application/json", body)
}
