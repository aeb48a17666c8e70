package grocy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grocer/pkg/logging"

	"github.com/cenkalti/backoff/v4"
)

// TokenProvider supplies the ingress session token attached to every Grocy
// request. Implemented by homeassistant.SessionManager; substitutable in
// tests.
type TokenProvider interface {
	// Token returns a valid ingress session token, renewing it if needed.
	Token(ctx context.Context) (string, error)

	// Invalidate marks the cached token stale so the next call renews it.
	Invalidate()
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the Grocy API root, e.g. the ingress URL ending in /api.
	BaseURL string

	// APIKey is sent as the GROCY-API-KEY header on every request.
	APIKey string

	// Tokens provides the ingress session cookie value.
	Tokens TokenProvider

	// RequestTimeout bounds each individual HTTP attempt.
	RequestTimeout time.Duration

	// RetryAttempts is the total attempt budget per logical call.
	RetryAttempts int

	// RetryInterval is the fixed pause between attempts. Zero means
	// immediate retry.
	RetryInterval time.Duration
}

// Client dispatches calls to the Grocy API through the ingress proxy. It
// attaches the session cookie and API key, bounds every attempt with a
// timeout, and retries transient faults (5xx, network errors) up to the
// configured budget. Client errors (4xx) are never retried.
type Client struct {
	baseURL       string
	apiKey        string
	tokens        TokenProvider
	httpClient    *http.Client
	retryAttempts int
	retryInterval time.Duration
}

// NewClient creates a Grocy API client. The attempt budget is clamped to at
// least 1 so a zero-value RetryAttempts cannot underflow the retry counter.
func NewClient(options ClientOptions) *Client {
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(options.BaseURL, "/"),
		apiKey:  options.APIKey,
		tokens:  options.Tokens,
		httpClient: &http.Client{
			Timeout: options.RequestTimeout,
		},
		retryAttempts: options.RetryAttempts,
		retryInterval: options.RetryInterval,
	}
}

// Do performs one logical Grocy API call and returns the raw JSON response
// body. The session token is fetched once, before the attempt loop; payload
// and response pass through this layer untouched.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not obtain ingress session: %w", err)
	}

	requestURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("could not encode request body: %w", err)
		}
	}

	var result json.RawMessage
	attempts := 0

	operation := func() error {
		attempts++
		raw, err := c.attempt(ctx, method, requestURL, token, payload)
		if err != nil {
			var upstreamErr *UpstreamError
			if errors.As(err, &upstreamErr) && !upstreamErr.Transient {
				if upstreamErr.StatusCode == http.StatusUnauthorized {
					// The ingress session was rejected; renew on the next
					// logical call instead of retrying this one.
					c.tokens.Invalidate()
				}
				return backoff.Permanent(err)
			}
			return err
		}
		result = raw
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), uint64(c.retryAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		logging.Error("GrocyClient", err, "%s %s failed after %d attempt(s)", method, requestURL, attempts)
		return nil, err
	}

	return result, nil
}

// attempt performs a single HTTP round-trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, method, requestURL, token string, payload []byte) (json.RawMessage, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("could not build request: %w", err))
	}

	req.Header.Set("Cookie", "ingress_session="+token)
	req.Header.Set("GROCY-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Method: method, URL: requestURL, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	responseBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		responseBody = []byte("<unable to read response body>")
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &UpstreamError{
			Method: method, URL: requestURL,
			StatusCode: resp.StatusCode, Body: string(responseBody), Transient: true,
		}
	case resp.StatusCode >= 400:
		return nil, &UpstreamError{
			Method: method, URL: requestURL,
			StatusCode: resp.StatusCode, Body: string(responseBody), Transient: false,
		}
	}

	trimmed := bytes.TrimSpace(responseBody)
	if len(trimmed) == 0 {
		// Grocy answers some mutations (e.g. DELETE) with an empty body.
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, &UpstreamError{
			Method: method, URL: requestURL,
			StatusCode: resp.StatusCode, Body: string(responseBody), Transient: false,
		}
	}

	return json.RawMessage(trimmed), nil
}
