// Package location provides page locations and navigators.
package location

import (
	"fmt"
	"net/url"
)

// Static is a fixed page location parsed from a URL.
type Static struct {
	href   string
	origin string
	path   string
}

// Parse builds a location from an absolute URL.
func Parse(raw string) (*Static, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("page url %q must be absolute", raw)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
		u.Path = "/"
	}
	return &Static{href: u.String(), origin: u.Scheme + "://" + u.Host, path: path}, nil
}

func (s *Static) Href() string     { return s.href }
func (s *Static) Origin() string   { return s.origin }
func (s *Static) Pathname() string { return s.path }

// Recorder is a navigator that remembers the last target instead of leaving
// the page.
type Recorder struct {
	targets []string
}

// Navigate records the target.
func (r *Recorder) Navigate(target string) {
	r.targets = append(r.targets, target)
}

// Last returns the most recent target.
func (r *Recorder) Last() (string, bool) {
	if len(r.targets) == 0 {
		return "", false
	}
	return r.targets[len(r.targets)-1], true
}
