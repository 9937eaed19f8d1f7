// Package validate calls the AATX tracking-plan validation API.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aatx/aatx-action/internal/plan"
)

// DefaultBaseURL is used when the api-url input is unset.
const DefaultBaseURL = "https://app.aatx.ai"

const (
	validatePath = "/api/github-action/validate"
	userAgent    = "AATX-GitHub-Action"
)

// Options mirror the action's validation flags.
type Options struct {
	Holistic               bool `json:"holistic"`
	Delta                  bool `json:"delta"`
	AutoUpdateTrackingPlan bool `json:"autoUpdateTrackingPlan"`
	OverwriteExisting      bool `json:"overwriteExisting"`
	Comment                bool `json:"comment"`
}

// PRDetails identify the pull request that triggered the run. All fields are
// zero for non-PR triggers, which serializes as an empty object.
type PRDetails struct {
	PRNumber int    `json:"prNumber,omitempty"`
	HeadSHA  string `json:"headSha,omitempty"`
	BaseSHA  string `json:"baseSha,omitempty"`
}

// Request is the validation call's payload. Built once per run, never reused.
type Request struct {
	RepositoryURL  string    `json:"repositoryUrl"`
	TrackingPlanID string    `json:"trackingPlanId"`
	Options        Options   `json:"options"`
	PRDetails      PRDetails `json:"prDetails"`
}

// APIError is a non-success response from the validation endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("validation API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("validation API returned status %d: %s", e.StatusCode, e.Body)
}

// ErrMalformedResponse reports a success response whose body is not a JSON object.
var ErrMalformedResponse = errors.New("validation API returned a malformed response")

// Client talks to the validation endpoint. It performs exactly one call per
// run, with no retries and no timeout beyond the transport default.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// Validate issues the single validation call for this run.
func (c *Client) Validate(ctx context.Context, req *Request) (*plan.Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding validation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+validatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building validation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling validation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading validation response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	// The response must be a JSON object; "null", arrays, and scalars are
	// rejected before any field is read.
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedResponse
	}
	var result plan.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}
