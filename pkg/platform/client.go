// Package platform implements the HTTP client for the remote commerce
// platform. It provides the location, order search, and catalog lookup
// operations behind the collector interfaces, with throttling, retry, and
// budget tracking on every outbound call.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/merchantkit/order-sync/pkg/budget"
	"github.com/merchantkit/order-sync/pkg/catalogcache"
	"github.com/merchantkit/order-sync/pkg/throttle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production API base URL of the commerce platform.
const DefaultBaseURL = "https://connect.commerce-platform.example.com"

// Client talks to the remote commerce platform. It implements the
// collector.LocationSource, collector.OrderSearcher, and
// collector.CatalogLookup interfaces.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	throttler  *throttle.Throttler
	budget     *budget.Tracker
	cache      *catalogcache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the platform API. Defaults to DefaultBaseURL.
	BaseURL string

	// AccessToken authenticates every request (Bearer scheme). Required.
	AccessToken string

	// User-Agent header sent on every request. Required.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout for a single HTTP attempt.
	Timeout time.Duration

	// Throttle configures the shared outbound rate budget.
	Throttle throttle.Config

	// Budget optionally tracks the platform's advertised request budget
	// across workers. Nil disables tracking.
	Budget *budget.Tracker

	// Cache optionally caches catalog lookups. Nil disables the cache and
	// every Resolve call goes to the platform.
	Cache *catalogcache.Manager
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(accessToken, userAgent string) Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		AccessToken: accessToken,
		UserAgent:   userAgent,
		Timeout:     30 * time.Second,
		Throttle:    throttle.DefaultConfig(),
	}
}

// New creates a new platform client.
func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "platform-client").Logger()

	throttleCfg := cfg.Throttle
	throttleCfg.Budget = cfg.Budget

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		token:     cfg.AccessToken,
		userAgent: cfg.UserAgent,
		throttler: throttle.New(throttleCfg),
		budget:    cfg.Budget,
		cache:     cfg.Cache,
		config:    cfg,
		logger:    logger,
	}, nil
}

// do issues one throttled platform call. The request body is JSON-encoded
// when non-nil; a 2xx response body is decoded into out when non-nil. Error
// responses come back as throttle.RemoteError with the platform's error
// payload attached.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	return c.throttler.Call(ctx, endpoint, func(ctx context.Context) error {
		var reqBody io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("encode request body: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if c.budget != nil {
			if err := c.budget.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update budget state from response")
			}
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &throttle.RemoteError{
				StatusCode: resp.StatusCode,
				Payload:    errorDetail(payload),
			}
		}

		if out != nil {
			if err := json.Unmarshal(payload, out); err != nil {
				return fmt.Errorf("decode response body: %w", err)
			}
		}

		return nil
	})
}

// errorDetail extracts a readable detail string from the platform's error
// envelope, falling back to the raw body.
func errorDetail(payload []byte) string {
	var envelope struct {
		Errors []struct {
			Category string `json:"category"`
			Code     string `json:"code"`
			Detail   string `json:"detail"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(payload, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return fmt.Sprintf("%s/%s: %s", first.Category, first.Code, first.Detail)
	}

	return string(payload)
}
