// Package config collects the action's inputs and the triggering PR context.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/aatx/aatx-action/internal/validate"
)

// Inputs are the recognized action inputs, parsed and validated. Boolean
// inputs default to false when absent.
type Inputs struct {
	APIKey         string
	TrackingPlanID string
	APIURL         string

	Holistic      bool
	Delta         bool
	AutoUpdate    bool
	Overwrite     bool
	Comment       bool
	FailOnInvalid bool
}

// Repo identifies the repository the action runs in.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) URL() string {
	return "https://github.com/" + r.Owner + "/" + r.Name
}

// Context is everything the run needs from the environment: parsed inputs,
// repository identity, and PR details when a pull request triggered the run.
type Context struct {
	Inputs        Inputs
	Repo          Repo
	PR            validate.PRDetails
	IsPullRequest bool
}

// Load reads and validates all inputs before any network call is made, so a
// bad configuration fails the run immediately.
func Load(action *githubactions.Action) (*Context, error) {
	var cfg Context

	cfg.Inputs.APIKey = strings.TrimSpace(action.GetInput("api-key"))
	if cfg.Inputs.APIKey == "" {
		return nil, fmt.Errorf("input api-key is required")
	}
	action.AddMask(cfg.Inputs.APIKey)

	cfg.Inputs.TrackingPlanID = strings.TrimSpace(action.GetInput("tracking-plan-id"))
	if cfg.Inputs.TrackingPlanID == "" {
		return nil, fmt.Errorf("input tracking-plan-id is required")
	}

	cfg.Inputs.APIURL = strings.TrimSpace(action.GetInput("api-url"))
	if cfg.Inputs.APIURL == "" {
		cfg.Inputs.APIURL = validate.DefaultBaseURL
	}

	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"holistic", &cfg.Inputs.Holistic},
		{"delta", &cfg.Inputs.Delta},
		{"auto-update", &cfg.Inputs.AutoUpdate},
		{"overwrite", &cfg.Inputs.Overwrite},
		{"comment", &cfg.Inputs.Comment},
		{"fail-on-invalid", &cfg.Inputs.FailOnInvalid},
	} {
		v, err := boolInput(action, b.name)
		if err != nil {
			return nil, err
		}
		*b.dst = v
	}

	ghCtx, err := action.Context()
	if err != nil {
		return nil, fmt.Errorf("reading github context: %w", err)
	}
	cfg.Repo.Owner, cfg.Repo.Name = ghCtx.Repo()
	if cfg.Repo.Owner == "" || cfg.Repo.Name == "" {
		return nil, fmt.Errorf("repository identity is not available; GITHUB_REPOSITORY is unset")
	}

	if ghCtx.EventName == "pull_request" || ghCtx.EventName == "pull_request_target" {
		cfg.PR, cfg.IsPullRequest = prDetails(ghCtx.Event)
	}
	return &cfg, nil
}

func boolInput(action *githubactions.Action, name string) (bool, error) {
	raw := strings.TrimSpace(action.GetInput(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("input %s: %q is not a boolean", name, raw)
	}
	return v, nil
}

// prDetails digs the PR number and commit SHAs out of the event payload.
func prDetails(event map[string]any) (validate.PRDetails, bool) {
	pr, ok := event["pull_request"].(map[string]any)
	if !ok {
		return validate.PRDetails{}, false
	}
	var details validate.PRDetails
	if n, ok := pr["number"].(float64); ok {
		details.PRNumber = int(n)
	}
	if head, ok := pr["head"].(map[string]any); ok {
		details.HeadSHA, _ = head["sha"].(string)
	}
	if base, ok := pr["base"].(map[string]any); ok {
		details.BaseSHA, _ = base["sha"].(string)
	}
	return details, details.PRNumber != 0
}
