// Package client provides a Go client for the errdex API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is an errdex API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a new errdex client
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Record is one custom error definition in a published database
type Record struct {
	Name       string   `json:"name"`
	Signature  string   `json:"signature"`
	Inputs     []string `json:"inputs"`
	InputTypes []string `json:"inputTypes"`
	Source     string   `json:"source"`
	Selector   string   `json:"selector"`
}

// Database represents a published error database
type Database struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	RecordCount int      `json:"recordCount,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	Versions    []string `json:"versions,omitempty"`
}

// PublishRequest is the request for publishing a database
type PublishRequest struct {
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Records     []Record `json:"records"`
}

// PublishResult is the server's response to a publish
type PublishResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	RecordCount int    `json:"recordCount"`
}

// VersionsResponse lists the published versions of a database name
type VersionsResponse struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
	Latest   string   `json:"latest"`
}

// ListResponse is the response for listing databases
type ListResponse struct {
	Data       []Database `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// SourceCount is the number of errors contributed by one source file
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// List lists databases in the registry
func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := c.get(ctx, "/api/v1/databases", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetVersions gets the published versions of a database name
func (c *Client) GetVersions(ctx context.Context, name string) (*VersionsResponse, error) {
	var resp VersionsResponse
	if err := c.get(ctx, "/api/v1/databases/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get gets one database version. Version may be "latest".
func (c *Client) Get(ctx context.Context, name, version string) (*Database, error) {
	var resp Database
	path := fmt.Sprintf("/api/v1/databases/%s/%s", url.PathEscape(name), url.PathEscape(version))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecords fetches all records of a database version, sorted by selector
func (c *Client) GetRecords(ctx context.Context, name, version string) ([]Record, error) {
	var resp struct {
		Records []Record `json:"records"`
	}
	path := fmt.Sprintf("/api/v1/databases/%s/%s/records", url.PathEscape(name), url.PathEscape(version))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// LookupSelector resolves a 4-byte selector to its error record. The
// selector may be given with or without the 0x prefix and in any case.
func (c *Client) LookupSelector(ctx context.Context, name, version, selector string) (*Record, error) {
	var resp Record
	path := fmt.Sprintf("/api/v1/databases/%s/%s/selectors/%s",
		url.PathEscape(name), url.PathEscape(version), url.PathEscape(selector))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search finds records whose error name contains the query, case-insensitive
func (c *Client) Search(ctx context.Context, name, version, query string) ([]Record, error) {
	var resp struct {
		Records []Record `json:"records"`
	}
	path := fmt.Sprintf("/api/v1/databases/%s/%s/search?q=%s",
		url.PathEscape(name), url.PathEscape(version), url.QueryEscape(query))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// Sources summarizes a database version by source file
func (c *Client) Sources(ctx context.Context, name, version string) ([]SourceCount, error) {
	var resp struct {
		Sources []SourceCount `json:"sources"`
	}
	path := fmt.Sprintf("/api/v1/databases/%s/%s/sources", url.PathEscape(name), url.PathEscape(version))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

// Publish publishes a new database version. With an empty req.Version the
// server picks the next patch version.
func (c *Client) Publish(ctx context.Context, name string, req PublishRequest) (*PublishResult, error) {
	var resp PublishResult
	if err := c.post(ctx, "/api/v1/databases/"+url.PathEscape(name), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes one database version
func (c *Client) Delete(ctx context.Context, name, version string) error {
	path := fmt.Sprintf("/api/v1/databases/%s/%s", url.PathEscape(name), url.PathEscape(version))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return &errResp.Error
}
