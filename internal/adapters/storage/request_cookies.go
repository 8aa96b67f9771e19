package storage

import (
	"time"

	"github.com/valyala/fasthttp"
)

// RequestCookies is a cookie store bound to one fasthttp exchange: reads
// come from the request, writes become Set-Cookie headers on the response.
type RequestCookies struct {
	ctx *fasthttp.RequestCtx
	now func() time.Time
	// written shadows the request so a write is visible to later reads.
	written map[string]string
}

// NewRequestCookies binds a store to the request.
func NewRequestCookies(ctx *fasthttp.RequestCtx) *RequestCookies {
	return &RequestCookies{ctx: ctx, now: time.Now, written: make(map[string]string)}
}

// Get returns the cookie value sent by the client or written earlier.
func (r *RequestCookies) Get(key string) (string, bool, error) {
	if v, ok := r.written[key]; ok {
		return v, true, nil
	}
	raw := r.ctx.Request.Header.Cookie(key)
	if raw == nil {
		return "", false, nil
	}
	return string(raw), true, nil
}

// Set adds a Set-Cookie header for the assignment.
func (r *RequestCookies) Set(key, value string, ttl time.Duration) error {
	c := NewAssignmentCookie(key, value, ttl, r.now())
	defer fasthttp.ReleaseCookie(c)
	r.ctx.Response.Header.SetCookie(c)
	r.written[key] = value
	return nil
}
