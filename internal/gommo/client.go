package gommo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultBaseURL is the production endpoint of the Gommo API
const DefaultBaseURL = "https://api.gommo.net"

// defaultDomain is the domain parameter the API expects with every call
const defaultDomain = "api.gommo.net"

// defaultUserAgent is used when the account does not override it
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	requestTimeout = 30 * time.Second
	maxTries       = 3
)

// ErrUpstream is the single error kind returned for any failed provider
// call: network errors, non-2xx responses and provider-reported error
// payloads all collapse into it. Callers only need to know the call failed.
var ErrUpstream = errors.New("gommo: upstream call failed")

// Client is a stateless client for the Gommo generation API. Account
// configuration travels with each call in CallOptions.
type Client struct {
	baseURL string
	domain  string
}

// NewClient creates a client against the production API
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint
func NewClientWithBaseURL(baseURL string) *Client {
	u, err := url.Parse(baseURL)
	domain := defaultDomain
	if err == nil && u.Host != "" {
		domain = u.Host
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		domain:  domain,
	}
}

// CreateImage submits a new generation job and returns the provider's
// correlation ID and initial status.
func (c *Client) CreateImage(ctx context.Context, opts CallOptions, req CreateImageRequest) (*ImageInfo, error) {
	params := map[string]string{
		"action_type": "create",
		"model":       req.Model,
		"prompt":      req.Prompt,
	}
	if req.NegativePrompt != "" {
		params["negative_prompt"] = req.NegativePrompt
	}
	if req.Width > 0 {
		params["width"] = strconv.Itoa(req.Width)
	}
	if req.Height > 0 {
		params["height"] = strconv.Itoa(req.Height)
	}
	if req.Ratio != "" {
		params["ratio"] = req.Ratio
	}

	body, err := c.postForm(ctx, opts, "/ai/generateImage", params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		ImageInfo *rawImageInfo `json:"imageInfo"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.ImageInfo == nil {
		return nil, fmt.Errorf("%w: malformed create response", ErrUpstream)
	}
	return envelope.ImageInfo.normalize()
}

// CheckImage fetches the current status of a generation job. The response
// body is a flat job object rather than an envelope.
func (c *Client) CheckImage(ctx context.Context, opts CallOptions, idBase string) (*ImageInfo, error) {
	body, err := c.postForm(ctx, opts, "/ai/image", map[string]string{"id_base": idBase})
	if err != nil {
		return nil, err
	}

	var raw rawImageInfo
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed status response", ErrUpstream)
	}
	return raw.normalize()
}

// ListModels fetches the image models the provider currently offers
func (c *Client) ListModels(ctx context.Context, opts CallOptions) ([]Model, error) {
	body, err := c.postForm(ctx, opts, "/ai/models", map[string]string{"type": "image"})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed models response", ErrUpstream)
	}
	return envelope.Data, nil
}

// rawImageInfo is the provider's wire shape for a job
type rawImageInfo struct {
	IDBase string `json:"id_base"`
	Status string `json:"status"`
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

func (r *rawImageInfo) normalize() (*ImageInfo, error) {
	status, err := normalizeStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &ImageInfo{
		IDBase: r.IDBase,
		Status: status,
		URL:    r.URL,
		Prompt: r.Prompt,
	}, nil
}

// postForm sends one form-encoded call and returns the response body after
// checking both the HTTP status and the provider's error payload. Network
// failures are retried a bounded number of times; everything the provider
// actually answered is terminal.
func (c *Client) postForm(ctx context.Context, opts CallOptions, endpoint string, params map[string]string) ([]byte, error) {
	form := url.Values{}
	form.Set("access_token", opts.APIKey)
	form.Set("domain", c.domain)
	for key, value := range params {
		form.Set(key, value)
	}
	encoded := form.Encode()

	httpClient, err := c.httpClientFor(opts)
	if err != nil {
		return nil, err
	}

	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrUpstream, err))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.userAgentFor(opts))

		resp, err := httpClient.Do(req)
		if err != nil {
			// Transient network failure, eligible for retry.
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(body)))
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	if err != nil {
		return nil, err
	}

	if msg, failed := providerError(body); failed {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	return body, nil
}

// providerError inspects the response payload for the provider's in-band
// error signal (a non-zero "error" field).
func providerError(body []byte) (string, bool) {
	var envelope struct {
		Error   interface{} `json:"error"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}

	failed := false
	switch v := envelope.Error.(type) {
	case float64:
		failed = v != 0
	case string:
		failed = v != "" && v != "0"
	}
	if !failed {
		return "", false
	}
	if envelope.Message != "" {
		return envelope.Message, true
	}
	return "provider error", true
}

func (c *Client) userAgentFor(opts CallOptions) string {
	if opts.UserAgent != "" {
		return opts.UserAgent
	}
	return defaultUserAgent
}

// httpClientFor builds the HTTP client for one call, honoring the
// account's egress proxy when configured.
func (c *Client) httpClientFor(opts CallOptions) (*http.Client, error) {
	client := &http.Client{Timeout: requestTimeout}
	if opts.ProxyURL == "" {
		return client, nil
	}

	proxyURL, err := url.Parse(opts.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid proxy url: %v", ErrUpstream, err)
	}
	client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return client, nil
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
