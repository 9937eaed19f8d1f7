// Package review publishes validation findings as a pull-request review with
// inline comments.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/aatx/aatx-action/internal/plan"
)

// Missing events have no implementation to anchor a comment to; the
// aggregate comment lands on a fixed location instead.
const (
	fallbackPath = "README.md"
	fallbackLine = 1
)

// Comment is one inline review comment before it is handed to the GitHub API.
type Comment struct {
	Path string
	Line int
	Body string
}

// Publisher submits pull-request reviews for one repository.
type Publisher struct {
	client *github.Client
	owner  string
	repo   string
}

// NewPublisher builds a publisher authenticated with the repository token.
func NewPublisher(ctx context.Context, token, owner, repo string) *Publisher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Publisher{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// BuildComments derives the inline comments for a result: one per invalid
// and per new event with a known implementation location (only the first
// location is used), plus a single aggregate comment covering every missing
// event.
func BuildComments(res *plan.Result) []Comment {
	parts := plan.Partition(res.Events)
	var comments []Comment

	for _, ev := range parts.Invalid {
		loc, ok := ev.FirstLocation()
		if !ok {
			continue
		}
		comments = append(comments, Comment{
			Path: loc.Path,
			Line: loc.Line,
			Body: eventBody("❌", "Invalid event", ev, "This event does not match the tracking plan."),
		})
	}
	for _, ev := range parts.New {
		loc, ok := ev.FirstLocation()
		if !ok {
			continue
		}
		comments = append(comments, Comment{
			Path: loc.Path,
			Line: loc.Line,
			Body: eventBody("🆕", "New event", ev, "This event is not in the tracking plan yet."),
		})
	}
	if len(parts.Missing) > 0 {
		comments = append(comments, Comment{
			Path: fallbackPath,
			Line: fallbackLine,
			Body: missingBody(parts.Missing),
		})
	}
	return comments
}

func eventBody(marker, kind string, ev plan.Event, fallbackMsg string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **%s: `%s`**\n\n", marker, kind, ev.Name)
	msg := ev.Message
	if msg == "" {
		msg = fallbackMsg
	}
	sb.WriteString(msg)
	sb.WriteString("\n\nProperties: ")
	if ev.Properties.Len() == 0 {
		sb.WriteString("none")
	} else {
		sb.WriteString(strings.Join(ev.Properties.Names(), ", "))
	}
	return sb.String()
}

func missingBody(events []plan.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ **%d tracking plan event(s) were not found in this repository:**\n\n", len(events))
	for _, ev := range events {
		fmt.Fprintf(&sb, "- `%s`\n", ev.Name)
	}
	return sb.String()
}

// SummaryBody renders the review's top-level markdown summary. The workflow
// step summary reuses it verbatim.
func SummaryBody(res *plan.Result) string {
	var sb strings.Builder
	sb.WriteString("## Tracking Plan Validation\n\n")
	if res.Valid {
		sb.WriteString("✅ All events match the tracking plan.\n\n")
	} else {
		sb.WriteString("❌ Some events do not match the tracking plan.\n\n")
	}
	fmt.Fprintf(&sb, "| Total | Valid | Invalid | Missing | New |\n")
	fmt.Fprintf(&sb, "|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d |\n",
		res.Summary.TotalEvents,
		res.Summary.ValidEvents,
		res.Summary.InvalidEvents,
		res.Summary.MissingEvents,
		res.Summary.NewEvents,
	)
	if res.TrackingPlanUpdated {
		sb.WriteString("\nThe tracking plan was updated during this run.\n")
	}
	if res.Metadata != nil {
		sb.WriteString("\n")
		if res.Metadata.ValidationDuration > 0 {
			fmt.Fprintf(&sb, "Validation took %.0f ms.\n", res.Metadata.ValidationDuration)
		}
		if res.Metadata.AgentVersion != "" {
			fmt.Fprintf(&sb, "Agent version: %s\n", res.Metadata.AgentVersion)
		}
	}
	return sb.String()
}

// Publish submits one review containing the summary body and every comment.
// The review requests changes when the result reports invalid events,
// otherwise it is a plain comment. Publishing is best effort; the caller
// logs the returned error as a warning and moves on.
func (p *Publisher) Publish(ctx context.Context, prNumber int, res *plan.Result, comments []Comment) error {
	draft := make([]*github.DraftReviewComment, 0, len(comments))
	for _, c := range comments {
		draft = append(draft, &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Side: github.Ptr("RIGHT"),
			Body: github.Ptr(c.Body),
		})
	}

	event := "COMMENT"
	if res.Summary.InvalidEvents > 0 {
		event = "REQUEST_CHANGES"
	}
	reviewReq := &github.PullRequestReviewRequest{
		Body:     github.Ptr(SummaryBody(res)),
		Event:    github.Ptr(event),
		Comments: draft,
	}

	_, _, err := p.client.PullRequests.CreateReview(ctx, p.owner, p.repo, prNumber, reviewReq)
	if err != nil {
		return fmt.Errorf("creating pull request review: %w", err)
	}
	return nil
}
