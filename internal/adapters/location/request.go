package location

import (
	"net/url"

	"github.com/valyala/fasthttp"
)

// Request exposes the location of a fasthttp request and turns navigation
// into a redirect response.
type Request struct {
	ctx      *fasthttp.RequestCtx
	scheme   string
	path     string
	redirect string
}

// FromRequest binds a location to the request. forwardedProto, when set,
// overrides the scheme seen by the server.
func FromRequest(ctx *fasthttp.RequestCtx, forwardedProto string) *Request {
	scheme := "http"
	if ctx.IsTLS() {
		scheme = "https"
	}
	if forwardedProto == "http" || forwardedProto == "https" {
		scheme = forwardedProto
	}
	return &Request{ctx: ctx, scheme: scheme}
}

// WithPath evaluates the request as if it had been made for path.
// The path is normalized to its escaped form.
func (r *Request) WithPath(path string) *Request {
	u, err := url.Parse(path)
	if err != nil || u.Path == "" {
		r.path = "/"
		return r
	}
	r.path = u.EscapedPath()
	return r
}

func (r *Request) Origin() string {
	return r.scheme + "://" + string(r.ctx.Host())
}

// Pathname is the escaped request path, in the same form Parse yields for
// a page URL, so percent-encoded experiment paths match.
func (r *Request) Pathname() string {
	if r.path != "" {
		return r.path
	}
	if u, err := url.ParseRequestURI(string(r.ctx.Request.Header.RequestURI())); err == nil && u.Path != "" {
		return u.EscapedPath()
	}
	if p := r.ctx.URI().PathOriginal(); len(p) > 0 {
		return string(p)
	}
	return "/"
}

func (r *Request) Href() string {
	if r.path != "" {
		return r.Origin() + r.path
	}
	return r.Origin() + string(r.ctx.Request.Header.RequestURI())
}

// Navigate records the target; the last call wins. Apply writes it.
func (r *Request) Navigate(target string) {
	r.redirect = target
}

// Redirected reports whether a navigation was requested.
func (r *Request) Redirected() (string, bool) {
	return r.redirect, r.redirect != ""
}

// Apply answers the request with a temporary redirect if one was requested.
func (r *Request) Apply() bool {
	if r.redirect == "" {
		return false
	}
	r.ctx.Redirect(r.redirect, fasthttp.StatusFound)
	return true
}
