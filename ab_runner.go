// ab_runner.go
// Package abrunner assigns page visitors to persistent experiment variants.
// Each active experiment whose path filter matches the page gets a variant
// that is drawn uniformly at random once per storage scope and reused on
// every later page view. The variant is optionally reported to analytics and
// then dispatched by experiment type:
//
//	redirect  navigate to the variant value, unless already there
//	edits     publish the variant for page code and notify listeners
//
// RunPage is the one-call entry point; pkg/abtest exposes the configurable
// runner and cmd/server hosts it over HTTP.
package abrunner

import (
	"context"

	"github.com/baditaflorin/go_ab_runner/pkg/abtest"
)

// PageResult is the outcome of evaluating one page view.
type PageResult struct {
	Report abtest.Report
	// Results holds the variants of edits experiments.
	Results map[string]abtest.Variant
	// Redirect is the navigation target, empty when the page stays.
	Redirect string
}

// RunPage evaluates a raw JSON or YAML experiment list for pageURL using
// in-memory storage and no analytics integration.
func RunPage(pageURL string, raw []byte) (PageResult, error) {
	lg, err := createDefaultLogger()
	if err != nil {
		return PageResult{}, err
	}

	r, err := abtest.New(pageURL, abtest.WithLogger(lg))
	if err != nil {
		lg.Close()
		return PageResult{}, err
	}
	defer r.Close()

	report := r.RunConfig(context.Background(), raw)
	target, _ := r.Navigation()
	return PageResult{
		Report:   report,
		Results:  r.Results(),
		Redirect: target,
	}, nil
}
