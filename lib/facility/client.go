// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package facility

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parknow/parkwatch/lib/frame"
	"github.com/parknow/parkwatch/lib/netutil"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/slot"
)

// ErrLocationNotFound is returned by Slots when the backend does not
// know the requested location.
var ErrLocationNotFound = errors.New("location not found")

// Summary is one entry of the /locations directory.
type Summary struct {
	Name       string `json:"name"`
	TotalSlots int    `json:"totalSlots"`
	Available  int    `json:"available"`
	Occupied   int    `json:"occupied"`
}

// Client performs metadata lookups against the backend's HTTP API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

const defaultRequestTimeout = 10 * time.Second

// NewClient returns a client for baseURL. A ws or wss base is mapped
// to http or https so one configured server address serves both the
// push channel and these lookups. A nil httpClient gets a default
// with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing facility base URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	default:
		return nil, fmt.Errorf("facility base URL %q must use http, https, ws, or wss", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("facility base URL %q has no host", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// BaseURL returns the normalized HTTP base.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Locations fetches the facility directory keyed by location ID.
func (c *Client) Locations(ctx context.Context) (map[string]Summary, error) {
	response, err := c.get(ctx, "locations")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var locations map[string]Summary
	if err := netutil.DecodeResponse(response.Body, &locations); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}
	if locations == nil {
		locations = map[string]Summary{}
	}
	return locations, nil
}

// Slots fetches the current snapshot for target once. The global
// scope reads the legacy /slots listing. The backend answers an
// unknown location with an {"error": ...} body, which maps to
// ErrLocationNotFound.
func (c *Client) Slots(ctx context.Context, target scope.Scope) (slot.Snapshot, error) {
	path := "slots"
	if !target.IsGlobal() {
		if target.LocationID() == "" {
			return slot.Snapshot{}, fmt.Errorf("slots for %s: empty location id", target)
		}
		path = "slots/" + url.PathEscape(target.LocationID())
	}

	response, err := c.get(ctx, path)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return slot.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrLocationNotFound, target, err)
		}
		return slot.Snapshot{}, err
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return slot.Snapshot{}, fmt.Errorf("reading slots for %s: %w", target, err)
	}
	decoded, err := frame.DecodeJSON(body)
	if err != nil {
		return slot.Snapshot{}, fmt.Errorf("decoding slots for %s: %w", target, err)
	}
	if decoded.Kind == frame.KindScopeError {
		return slot.Snapshot{}, fmt.Errorf("%w: %s: %s", ErrLocationNotFound, target, decoded.ScopeError)
	}
	return decoded.Snapshot, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	endpoint := c.baseURL.JoinPath(path)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body := netutil.ErrorBody(response.Body)
		response.Body.Close()
		return nil, &HTTPError{
			URL:        endpoint.String(),
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(body),
		}
	}
	return response, nil
}

// HTTPError is a non-2xx reply from the backend.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}
