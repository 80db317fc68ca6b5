package provider

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = anthropic.ModelClaudeSonnet4_5
	DefaultMaxTokens = 1024
	APIVersion       = "2023-06-01"
)

// ClientConfig carries what the client needs beyond the SDK's own environment lookup.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// HTTPClient replaces the default transport; tests use it to serve canned streams.
	HTTPClient *http.Client
}

// NewAnthropicClient returns a client with retries disabled. Empty fields fall back to
// the SDK defaults (ANTHROPIC_API_KEY, ANTHROPIC_BASE_URL).
func NewAnthropicClient(cfg ClientConfig) *anthropic.Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	c := anthropic.NewClient(opts...)
	return &c
}
