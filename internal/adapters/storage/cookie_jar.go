package storage

import (
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// CookieJar is an in-memory cookie jar for one visitor. Expired cookies
// read as absent.
type CookieJar struct {
	mu      sync.Mutex
	cookies map[string]*fasthttp.Cookie
	now     func() time.Time
}

// NewCookieJar creates an empty jar using the wall clock.
func NewCookieJar() *CookieJar {
	return NewCookieJarWithClock(time.Now)
}

// NewCookieJarWithClock creates an empty jar using the given clock.
func NewCookieJarWithClock(now func() time.Time) *CookieJar {
	return &CookieJar{cookies: make(map[string]*fasthttp.Cookie), now: now}
}

// Get returns the cookie value if present and not expired.
func (j *CookieJar) Get(key string) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[key]
	if !ok {
		return "", false, nil
	}
	if exp := c.Expire(); exp != fasthttp.CookieExpireUnlimited && !j.now().Before(exp) {
		delete(j.cookies, key)
		fasthttp.ReleaseCookie(c)
		return "", false, nil
	}
	return string(c.Value()), true, nil
}

// Set writes a site-wide cookie. A positive ttl sets an expiry.
func (j *CookieJar) Set(key, value string, ttl time.Duration) error {
	c := NewAssignmentCookie(key, value, ttl, j.now())

	j.mu.Lock()
	defer j.mu.Unlock()
	if old, ok := j.cookies[key]; ok {
		fasthttp.ReleaseCookie(old)
	}
	j.cookies[key] = c
	return nil
}

// Expiry returns the expiry of a stored cookie.
func (j *CookieJar) Expiry(key string) (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cookies[key]
	if !ok || c.Expire() == fasthttp.CookieExpireUnlimited {
		return time.Time{}, false
	}
	return c.Expire(), true
}

// Header returns the document.cookie style view of the jar.
func (j *CookieJar) Header() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	parts := make([]string, 0, len(j.cookies))
	for k, c := range j.cookies {
		parts = append(parts, k+"="+string(c.Value()))
	}
	return strings.Join(parts, "; ")
}

// SetCookie returns the serialized Set-Cookie value of a stored cookie.
func (j *CookieJar) SetCookie(key string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cookies[key]
	if !ok {
		return "", false
	}
	return c.String(), true
}

// NewAssignmentCookie builds the cookie an assignment is stored in: path=/
// and, for a positive ttl, an expiry of now+ttl.
func NewAssignmentCookie(key, value string, ttl time.Duration, now time.Time) *fasthttp.Cookie {
	c := fasthttp.AcquireCookie()
	c.SetKey(key)
	c.SetValue(value)
	c.SetPath("/")
	if ttl > 0 {
		c.SetExpire(now.Add(ttl))
	}
	return c
}
