// Package psiclient talks to the PageSpeed Insights v5 API.
package psiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// Categories requested on every audit.
var Categories = []string{"performance", "seo", "accessibility", "best-practices"}

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 32 << 20

// Client fetches raw audit documents.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
}

var _ contract.AuditProvider = &Client{} // Compile-time check

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for endpoint using apiKey.
func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  schema.ProviderTimeoutSeconds * time.Second,
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestURL builds the provider URL for a target and strategy.
func (c *Client) RequestURL(target string, strategy schema.Strategy) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid provider endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	q.Set("strategy", string(strategy))
	for _, category := range Categories {
		q.Add("category", category)
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch calls the provider and returns the parsed document unmodified.
// The call is bounded by the client timeout and by ctx.
func (c *Client) Fetch(ctx context.Context, target string, strategy schema.Strategy) (*schema.RawResponse, error) {
	reqURL, err := c.RequestURL(target, strategy)
	if err != nil {
		return nil, schema.WrapError(schema.KindProviderError, "build provider request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, schema.WrapError(schema.KindProviderError, "build provider request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, schema.WrapError(schema.KindProviderTimeout, "provider timed out", err)
		}
		return nil, schema.WrapError(schema.KindProviderError, "provider request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, schema.WrapError(schema.KindProviderTimeout, "provider timed out", err)
		}
		return nil, schema.WrapError(schema.KindProviderError, "read provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schema.AuditError{
			Kind:    schema.KindProviderError,
			Message: fmt.Sprintf("provider returned status %d", resp.StatusCode),
			Detail:  snippet(body),
		}
	}

	doc, err := decodeObject(body)
	if err != nil {
		return nil, &schema.AuditError{
			Kind:    schema.KindProviderBadResponse,
			Message: "provider returned non-JSON",
			Detail:  snippet(body),
			Err:     err,
		}
	}
	return &schema.RawResponse{Raw: json.RawMessage(body), Doc: doc}, nil
}

// decodeObject parses body as a single JSON object.
func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("response is not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	return doc, nil
}

// snippet keeps the first characters of a body for diagnostics.
func snippet(body []byte) string {
	runes := []rune(string(body))
	if len(runes) > schema.ProviderBodySnippetLen {
		runes = runes[:schema.ProviderBodySnippetLen]
	}
	return string(runes)
}
