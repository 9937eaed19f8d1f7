package validate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSuccess(t *testing.T) {
	var got *http.Request
	var gotBody Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"valid": true,
			"summary": {"totalEvents": 5, "validEvents": 5, "invalidEvents": 0, "missingEvents": 0, "newEvents": 0},
			"events": []
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	req := &Request{
		RepositoryURL:  "https://github.com/acme/web",
		TrackingPlanID: "tp_123",
		Options:        Options{Delta: true, Comment: true},
		PRDetails:      PRDetails{PRNumber: 7, HeadSHA: "abc", BaseSHA: "def"},
	}

	res, err := client.Validate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 5, res.Summary.TotalEvents)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/github-action/validate", got.URL.Path)
	assert.Equal(t, "Bearer secret-key", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "AATX-GitHub-Action", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get("X-Request-Id"))

	assert.Equal(t, "https://github.com/acme/web", gotBody.RepositoryURL)
	assert.Equal(t, "tp_123", gotBody.TrackingPlanID)
	assert.True(t, gotBody.Options.Delta)
	assert.Equal(t, 7, gotBody.PRDetails.PRNumber)
}

func TestValidateNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.Validate(context.Background(), &Request{TrackingPlanID: "tp"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad request")
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "bad request")
}

func TestValidateMalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"null":   `null`,
		"array":  `[1,2,3]`,
		"scalar": `42`,
		"empty":  ``,
		"broken": `{"valid": tru`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "k")
			_, err := client.Validate(context.Background(), &Request{TrackingPlanID: "tp"})
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestValidateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient(srv.URL, "k")
	_, err := client.Validate(context.Background(), &Request{TrackingPlanID: "tp"})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestNewClientDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("", "k").baseURL)
	assert.Equal(t, "https://example.com", NewClient("https://example.com/", "k").baseURL)
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "validation API returned status 503", (&APIError{StatusCode: 503}).Error())
	assert.Equal(t, "validation API returned status 400: nope", (&APIError{StatusCode: 400, Body: "nope"}).Error())
}
