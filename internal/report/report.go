// Package report turns a validation result into workflow log output, step
// outputs, and the run's pass/fail decision.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/aatx/aatx-action/internal/plan"
)

// Reporter writes a result to the workflow run. It never mutates the result.
type Reporter struct {
	action *githubactions.Action
}

func New(action *githubactions.Action) *Reporter {
	return &Reporter{action: action}
}

// SetOutputs publishes the seven step outputs. Called before anything that
// can fail, so downstream steps always see them.
func (r *Reporter) SetOutputs(res *plan.Result) {
	r.action.SetOutput("valid", strconv.FormatBool(res.Valid))
	r.action.SetOutput("total_events", strconv.Itoa(res.Summary.TotalEvents))
	r.action.SetOutput("valid_events", strconv.Itoa(res.Summary.ValidEvents))
	r.action.SetOutput("invalid_events", strconv.Itoa(res.Summary.InvalidEvents))
	r.action.SetOutput("missing_events", strconv.Itoa(res.Summary.MissingEvents))
	r.action.SetOutput("new_events", strconv.Itoa(res.Summary.NewEvents))
	r.action.SetOutput("tracking_plan_updated", strconv.FormatBool(res.TrackingPlanUpdated))
}

// Log writes the human-readable run report. Invalid and missing events come
// out as warning annotations, new events as plain info lines.
func (r *Reporter) Log(res *plan.Result) {
	r.action.Infof("Tracking plan validation complete: valid=%t", res.Valid)
	r.action.Infof("Total events: %d", res.Summary.TotalEvents)
	r.action.Infof("Valid events: %d", res.Summary.ValidEvents)
	r.action.Infof("Invalid events: %d", res.Summary.InvalidEvents)
	r.action.Infof("Missing events: %d", res.Summary.MissingEvents)
	r.action.Infof("New events: %d", res.Summary.NewEvents)
	if res.TrackingPlanUpdated {
		r.action.Infof("Tracking plan was updated during validation")
	}

	parts := plan.Partition(res.Events)
	r.logPartition("Invalid events", parts.Invalid, r.action.Warningf)
	r.logPartition("Missing events", parts.Missing, r.action.Warningf)
	r.logPartition("New events", parts.New, r.action.Infof)
}

func (r *Reporter) logPartition(label string, events []plan.Event, logf func(string, ...any)) {
	if len(events) == 0 {
		return
	}
	r.action.Group(fmt.Sprintf("%s (%d)", label, len(events)))
	defer r.action.EndGroup()
	for _, ev := range events {
		logf("%s", describe(ev))
	}
}

// describe renders one event as a single log line.
func describe(ev plan.Event) string {
	var sb strings.Builder
	sb.WriteString(ev.Name)
	if ev.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(ev.Message)
	}
	if loc, ok := ev.FirstLocation(); ok {
		fmt.Fprintf(&sb, " (%s:%d)", loc.Path, loc.Line)
		if code := strings.TrimSpace(loc.Code); code != "" {
			fmt.Fprintf(&sb, " `%s`", code)
		}
	}
	if ev.Properties.Len() > 0 {
		fmt.Fprintf(&sb, " properties: %s", strings.Join(ev.Properties.Names(), ", "))
	}
	return sb.String()
}

// FailureMessage composes the fail-on-invalid message, listing only the
// nonzero sections. Empty when the result is valid.
func FailureMessage(res *plan.Result) string {
	if res.Valid {
		return ""
	}
	parts := plan.Partition(res.Events)
	var sections []string
	if len(parts.Invalid) > 0 {
		sections = append(sections, "invalid events: "+strings.Join(plan.Names(parts.Invalid), ", "))
	}
	if len(parts.Missing) > 0 {
		sections = append(sections, "missing events: "+strings.Join(plan.Names(parts.Missing), ", "))
	}
	msg := "tracking plan validation failed"
	if len(sections) > 0 {
		msg += " (" + strings.Join(sections, "; ") + ")"
	}
	return msg
}
