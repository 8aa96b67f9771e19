// Package runner evaluates experiment lists: it resolves persistent variant
// assignments, reports them to analytics and dispatches by experiment type.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/baditaflorin/go_ab_runner/internal/config"
	"github.com/baditaflorin/go_ab_runner/internal/core/assignment"
	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
)

// Dependencies are the capabilities a runner needs from its host.
type Dependencies struct {
	Location  ports.LocationProvider
	Navigator ports.Navigator
	Stores    assignment.Stores
	Analytics ports.AnalyticsSink
	Results   ports.ResultsSink
	Events    ports.Broadcaster
	Random    ports.RandomSource
	Logger    ports.Logger
}

func (d Dependencies) validate() error {
	switch {
	case d.Location == nil:
		return errors.New("location provider is required")
	case d.Navigator == nil:
		return errors.New("navigator is required")
	case d.Analytics == nil:
		return errors.New("analytics sink is required")
	case d.Results == nil:
		return errors.New("results sink is required")
	case d.Events == nil:
		return errors.New("broadcaster is required")
	case d.Logger == nil:
		return errors.New("logger is required")
	}
	return nil
}

// Runner processes experiment definitions for one page view.
type Runner struct {
	deps     Dependencies
	resolver *assignment.Resolver
}

// New creates a runner over the given dependencies.
func New(deps Dependencies) (*Runner, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	resolver, err := assignment.NewResolver(deps.Stores, deps.Random, deps.Logger)
	if err != nil {
		return nil, err
	}
	return &Runner{deps: deps, resolver: resolver}, nil
}

// RunConfig decodes raw configuration and evaluates it. Missing or non-list
// configuration disables the pass with a single warning.
func (r *Runner) RunConfig(ctx context.Context, raw []byte) domain.Report {
	list, err := config.Parse(raw)
	if err != nil {
		return r.disabled(err)
	}
	return r.RunList(ctx, list)
}

// RunList evaluates a decoded list in list order. Entries that failed to
// decode are reported as invalid at their own position.
func (r *Runner) RunList(ctx context.Context, list config.ExperimentList) domain.Report {
	report := domain.Report{Outcomes: make([]domain.Outcome, 0, len(list.Entries))}
	for _, entry := range list.Entries {
		if entry.Rejected() {
			r.deps.Logger.Warn("Skipping malformed experiment entry", "index", entry.Index, "error", entry.Err)
			report.Outcomes = append(report.Outcomes, domain.Outcome{
				Index:   entry.Index,
				Skipped: domain.SkipInvalid,
				Action:  domain.ActionNone,
				Err:     entry.Err,
			})
			continue
		}
		report.Outcomes = append(report.Outcomes, r.process(ctx, entry.Index, entry.Experiment))
	}
	return report
}

// Run evaluates every experiment in order. One experiment never affects
// the evaluation of another.
func (r *Runner) Run(ctx context.Context, experiments []domain.ExperimentDefinition) domain.Report {
	report := domain.Report{Outcomes: make([]domain.Outcome, 0, len(experiments))}
	for i, exp := range experiments {
		report.Outcomes = append(report.Outcomes, r.process(ctx, i, exp))
	}
	return report
}

// RunWhenReady evaluates raw configuration once the document has loaded.
// The returned channel receives the report.
func (r *Runner) RunWhenReady(ctx context.Context, doc ports.Document, raw []byte) <-chan domain.Report {
	out := make(chan domain.Report, 1)
	run := func() {
		out <- r.RunConfig(ctx, raw)
		close(out)
	}
	if doc.Loading() {
		r.deps.Logger.Debug("Document still loading, deferring experiment evaluation")
		doc.OnContentLoaded(run)
		return out
	}
	run()
	return out
}

func (r *Runner) disabled(err error) domain.Report {
	r.deps.Logger.Warn("AB Test configuration not found. Skipping AB Test execution.", "error", err)
	return domain.Report{Err: fmt.Errorf("runner disabled: %w", err)}
}

func (r *Runner) process(ctx context.Context, index int, exp domain.ExperimentDefinition) domain.Outcome {
	out := domain.Outcome{Index: index, ExperimentID: exp.ID, Action: domain.ActionNone}

	if !exp.Active() {
		out.Skipped = domain.SkipInactive
		return out
	}
	if !exp.MatchesPath(r.deps.Location.Pathname()) {
		out.Skipped = domain.SkipPathMismatch
		return out
	}
	if err := exp.Validate(); err != nil {
		r.deps.Logger.Warn("Skipping invalid experiment", "experiment", exp.ID, "error", err)
		out.Skipped = domain.SkipInvalid
		out.Err = err
		return out
	}

	a, err := r.resolver.Resolve(exp)
	if err != nil {
		r.deps.Logger.Error("Failed to resolve assignment", "experiment", exp.ID, "error", err)
		out.Skipped = domain.SkipStorageFailed
		out.Err = err
		return out
	}
	out.Assignment = &a

	if exp.SendEvent {
		out.EventSent = r.report(ctx, exp, a.Variant)
	}

	r.dispatch(exp, a.Variant, &out)
	return out
}

// report sends the assignment event. Missing or failing analytics falls
// back to a diagnostic log entry and never blocks dispatch.
func (r *Runner) report(ctx context.Context, exp domain.ExperimentDefinition, v domain.Variant) bool {
	event := domain.AnalyticsEvent{
		Category: domain.AnalyticsCategory,
		Action:   exp.EventAction(),
		Label:    v.Name,
	}

	if !r.deps.Analytics.Available() {
		r.deps.Logger.Info("GA Event", "category", event.Category, "action", event.Action, "label", event.Label)
		return false
	}
	if err := r.deps.Analytics.SendEvent(ctx, event); err != nil {
		r.deps.Logger.Warn("Analytics event failed",
			"category", event.Category,
			"action", event.Action,
			"label", event.Label,
			"error", err,
		)
		return false
	}
	return true
}
