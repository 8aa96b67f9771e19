package runner

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

func (r *Runner) dispatch(exp domain.ExperimentDefinition, v domain.Variant, out *domain.Outcome) {
	switch exp.Type {
	case domain.TypeRedirect:
		target := ResolveTarget(r.deps.Location.Origin(), v.Value)
		out.Target = target
		if target == r.deps.Location.Href() {
			out.Action = domain.ActionAlreadyThere
			return
		}
		r.deps.Logger.Info("Redirecting to variant", "experiment", exp.ID, "variant", v.Name, "target", target)
		r.deps.Navigator.Navigate(target)
		out.Action = domain.ActionRedirect

	case domain.TypeEdits:
		r.deps.Results.Record(exp.ID, v)
		r.deps.Events.Publish(domain.Notification{
			Name:         domain.EditsNotificationName,
			ExperimentID: exp.ID,
			Variant:      v,
		})
		out.Action = domain.ActionEdits

	default:
		out.Action = domain.ActionUnknownType
	}
}

// ResolveTarget turns a variant value into an absolute URL. Values that
// already carry an http(s) scheme are returned unchanged; anything else is
// resolved against the origin root.
func ResolveTarget(origin, value string) string {
	if absoluteURL.MatchString(value) {
		return value
	}
	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err != nil {
		return origin + value
	}
	ref, err := url.Parse(value)
	if err != nil {
		return origin + value
	}
	return base.ResolveReference(ref).String()
}
