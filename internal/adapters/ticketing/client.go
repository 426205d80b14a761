// Package ticketing is the HTTP client for the ticketing provider: it
// exchanges the configured credentials for an access token and fetches the
// full participant collection for one event. There is no pagination; the
// provider returns the collection wholesale.
package ticketing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pakafest/dashboard/internal/domain/model"
)

// Default client configuration constants.
const (
	defaultBaseURL = "https://api.weezevent.com"
	defaultTimeout = 30 * time.Second
)

// ListResponse is the provider envelope around the participant collection.
type ListResponse struct {
	Participants   []model.Participant `json:"participants"`
	ServerTime     string              `json:"server_time"`
	Counter        int                 `json:"counter"`
	CounterDeleted int                 `json:"counter_deleted"`
	CounterTotal   int                 `json:"counter_total"`
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// Client calls the ticketing provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	username   string
	password   string
	eventID    string
}

// NewClient creates a provider client for one event.
func NewClient(apiKey, username, password, eventID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		username:   username,
		password:   password,
		eventID:    eventID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authResponse is the token envelope from the auth endpoint.
type authResponse struct {
	AccessToken string `json:"accessToken"`
}

// Authenticate exchanges the configured credentials for an access token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrAuthFailed, err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}
	return auth.AccessToken, nil
}

// Participants fetches the full participant collection for the configured
// event using a previously obtained access token.
func (c *Client) Participants(ctx context.Context, token string) (*ListResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("access_token", token)
	q.Set("id_event[]", c.eventID)
	q.Set("full", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/participant/list?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetchFailed, err)
	}
	return &list, nil
}
