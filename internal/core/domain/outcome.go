package domain

// SkipReason explains why an experiment was not evaluated.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipInactive      SkipReason = "inactive"
	SkipPathMismatch  SkipReason = "path_mismatch"
	SkipInvalid       SkipReason = "invalid"
	SkipStorageFailed SkipReason = "storage_failed"
)

// DispatchAction records the side effect performed for an experiment.
type DispatchAction string

const (
	ActionNone         DispatchAction = "none"
	ActionRedirect     DispatchAction = "redirect"
	ActionAlreadyThere DispatchAction = "already_on_target"
	ActionEdits        DispatchAction = "edits"
	ActionUnknownType  DispatchAction = "unknown_type"
)

// Outcome is the per-experiment record of a runner pass.
type Outcome struct {
	// Index is the position of the experiment in the configured list.
	Index        int
	ExperimentID string
	Skipped      SkipReason
	Assignment   *Assignment
	EventSent    bool
	Action       DispatchAction
	// Target is the resolved redirect URL, if any.
	Target string
	Err    error
}

// Report collects the outcomes of one runner pass in configuration order.
type Report struct {
	Outcomes []Outcome
	// Err is set when the whole pass was disabled.
	Err error
}

// Outcome returns the first outcome recorded for the experiment id.
func (r Report) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.ExperimentID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// Redirect returns the navigation target of the pass, if an experiment navigated.
// A later navigation supersedes an earlier one.
func (r Report) Redirect() (string, bool) {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].Action == ActionRedirect {
			return r.Outcomes[i].Target, true
		}
	}
	return "", false
}
