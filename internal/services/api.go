// Raw HTTP access shared by the upstream clients
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// UpstreamError reports a non-200 response from a third-party API.
//
// The status and raw body are surfaced to the browser for diagnostics.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: status %d", e.Service, e.StatusCode)
}

// AsUpstreamError unwraps err to an [UpstreamError] if it holds one.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the upstream answered 200.
func (r *APIResponse) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIClient performs GET requests against one upstream base URL.
type APIClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the named service. A nil client uses [http.DefaultClient].
func NewAPIClient(service, baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithHTTPClient returns a copy of the client that sends requests through c.
func (a *APIClient) WithHTTPClient(c *http.Client) *APIClient {
	clone := *a
	clone.httpClient = c
	return &clone
}

// Get performs a GET request to baseURL+path with the encoded query and returns the raw response.
//
// A non-200 response is not an error here; see [APIClient.GetJSON].
func (a *APIClient) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", a.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// GetJSON performs [APIClient.Get] and decodes a 200 body into v.
//
// Any other status is returned as an [UpstreamError].
func (a *APIClient) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := a.Get(ctx, path, query)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return &UpstreamError{Service: a.service, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	return resp.Decode(v)
}
