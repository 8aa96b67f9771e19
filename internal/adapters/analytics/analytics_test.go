package analytics

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

type captured struct {
	path        string
	query       string
	contentType string
	body        []byte
}

type collector struct {
	mu     sync.Mutex
	hits   []captured
	status int
}

func startCollector(t *testing.T, status int) (*fasthttp.Client, *collector) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	c := &collector{status: status}
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		c.mu.Lock()
		c.hits = append(c.hits, captured{
			path:        string(ctx.Path()),
			query:       string(ctx.QueryArgs().QueryString()),
			contentType: string(ctx.Request.Header.ContentType()),
			body:        append([]byte(nil), ctx.PostBody()...),
		})
		c.mu.Unlock()
		ctx.SetStatusCode(c.status)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return client, c
}

var event = domain.AnalyticsEvent{Category: "ABTest", Action: "pricing_test", Label: "new"}

func TestUniversalSendsEventHit(t *testing.T) {
	client, c := startCollector(t, fasthttp.StatusOK)
	u := NewUniversal(client, "UA-1", "visitor-1")
	u.Endpoint = "http://collector/collect"

	require.True(t, u.Available())
	require.NoError(t, u.SendEvent(context.Background(), event))

	require.Len(t, c.hits, 1)
	hit := c.hits[0]
	assert.Equal(t, "/collect", hit.path)
	assert.Equal(t, "application/x-www-form-urlencoded", hit.contentType)

	var args fasthttp.Args
	args.ParseBytes(hit.body)
	assert.Equal(t, "event", string(args.Peek("t")))
	assert.Equal(t, "UA-1", string(args.Peek("tid")))
	assert.Equal(t, "visitor-1", string(args.Peek("cid")))
	assert.Equal(t, "ABTest", string(args.Peek("ec")))
	assert.Equal(t, "pricing_test", string(args.Peek("ea")))
	assert.Equal(t, "new", string(args.Peek("el")))
}

func TestMeasurementSendsGtagEvent(t *testing.T) {
	client, c := startCollector(t, fasthttp.StatusNoContent)
	m := NewMeasurement(client, "G-1", "secret", "visitor-1")
	m.Endpoint = "http://collector/mp/collect"

	require.NoError(t, m.SendEvent(context.Background(), event))

	require.Len(t, c.hits, 1)
	hit := c.hits[0]
	assert.Equal(t, "/mp/collect", hit.path)
	assert.Contains(t, hit.query, "measurement_id=G-1")
	assert.Contains(t, hit.query, "api_secret=secret")

	var payload measurementPayload
	require.NoError(t, json.Unmarshal(hit.body, &payload))
	assert.Equal(t, "visitor-1", payload.ClientID)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "pricing_test", payload.Events[0].Name)
	assert.Equal(t, "ABTest", payload.Events[0].Params["event_category"])
	assert.Equal(t, "new", payload.Events[0].Params["event_label"])
}

func TestSendFailsOnErrorStatus(t *testing.T) {
	client, _ := startCollector(t, fasthttp.StatusInternalServerError)
	u := NewUniversal(client, "UA-1", "v")
	u.Endpoint = "http://collector/collect"

	err := u.SendEvent(context.Background(), event)
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	client, c := startCollector(t, fasthttp.StatusOK)
	u := NewUniversal(client, "UA-1", "v")
	u.Endpoint = "http://collector/collect"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, u.SendEvent(ctx, event), context.Canceled)
	assert.Empty(t, c.hits)
}

func TestUnconfiguredSinksAreUnavailable(t *testing.T) {
	assert.False(t, NewUniversal(&fasthttp.Client{}, "", "v").Available())
	assert.False(t, NewUniversal(nil, "UA-1", "v").Available())
	assert.False(t, NewMeasurement(&fasthttp.Client{}, "G-1", "", "v").Available())
	assert.ErrorIs(t, NewMeasurement(nil, "", "", "").SendEvent(context.Background(), event), domain.ErrAnalyticsUnavailable)
}

func TestPreferPicksFirstAvailable(t *testing.T) {
	client, c := startCollector(t, fasthttp.StatusOK)
	classic := NewUniversal(client, "UA-1", "v")
	classic.Endpoint = "http://collector/collect"
	gtag := NewMeasurement(client, "G-1", "secret", "v")
	gtag.Endpoint = "http://collector/mp/collect"

	require.NoError(t, Prefer(classic, gtag).SendEvent(context.Background(), event))
	classic.TrackingID = ""
	require.NoError(t, Prefer(classic, gtag).SendEvent(context.Background(), event))

	require.Len(t, c.hits, 2)
	assert.Equal(t, "/collect", c.hits[0].path)
	assert.Equal(t, "/mp/collect", c.hits[1].path)
}

func TestPreferWithoutIntegrations(t *testing.T) {
	p := Prefer(None{}, nil)
	assert.False(t, p.Available())
	assert.ErrorIs(t, p.SendEvent(context.Background(), event), domain.ErrAnalyticsUnavailable)
}

func TestTimeoutForUsesDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := timeoutFor(ctx, time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, d, time.Second)

	d, err = timeoutFor(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}
