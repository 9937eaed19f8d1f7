package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sethvargo/go-githubactions"

	"github.com/aatx/aatx-action/internal/config"
	"github.com/aatx/aatx-action/internal/plan"
	"github.com/aatx/aatx-action/internal/report"
	"github.com/aatx/aatx-action/internal/review"
	"github.com/aatx/aatx-action/internal/validate"
)

func main() {
	action := githubactions.New()
	if err := run(context.Background(), action); err != nil {
		action.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, action *githubactions.Action) error {
	cfg, err := config.Load(action)
	if err != nil {
		return err
	}

	client := validate.NewClient(cfg.Inputs.APIURL, cfg.Inputs.APIKey)
	req := &validate.Request{
		RepositoryURL:  cfg.Repo.URL(),
		TrackingPlanID: cfg.Inputs.TrackingPlanID,
		Options: validate.Options{
			Holistic:               cfg.Inputs.Holistic,
			Delta:                  cfg.Inputs.Delta,
			AutoUpdateTrackingPlan: cfg.Inputs.AutoUpdate,
			OverwriteExisting:      cfg.Inputs.Overwrite,
			Comment:                cfg.Inputs.Comment,
		},
		PRDetails: cfg.PR,
	}

	action.Infof("Validating %s against tracking plan %s", cfg.Repo.URL(), cfg.Inputs.TrackingPlanID)
	result, err := client.Validate(ctx, req)
	if err != nil {
		return fmt.Errorf("tracking plan validation failed: %w", err)
	}

	// Outputs are set before anything that can still fail, so downstream
	// steps see them even on a fail-on-invalid run.
	reporter := report.New(action)
	reporter.SetOutputs(result)
	reporter.Log(result)
	action.AddStepSummary(review.SummaryBody(result))

	if cfg.Inputs.Comment && cfg.IsPullRequest {
		publishReview(ctx, action, cfg, result)
	}

	if !result.Valid && cfg.Inputs.FailOnInvalid {
		return errors.New(report.FailureMessage(result))
	}
	return nil
}

// publishReview is best effort: every failure in here degrades to a warning
// and never affects the run's exit status.
func publishReview(ctx context.Context, action *githubactions.Action, cfg *config.Context, result *plan.Result) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		action.Warningf("GITHUB_TOKEN is not set; skipping pull request review comments")
		return
	}

	comments := review.BuildComments(result)
	if len(comments) == 0 {
		action.Infof("No review comments to publish")
		return
	}

	publisher := review.NewPublisher(ctx, token, cfg.Repo.Owner, cfg.Repo.Name)
	if err := publisher.Publish(ctx, cfg.PR.PRNumber, result, comments); err != nil {
		action.Warningf("Failed to publish pull request review: %v", err)
		return
	}
	action.Infof("Published pull request review with %d comment(s)", len(comments))
}
