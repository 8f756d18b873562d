package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Authenticator supplies bearer credentials for outgoing requests and the
// renewal sequence used when the backend answers 401. Renew must attempt
// exactly one token renewal, tearing the session down and returning a
// terminal error when renewal is impossible. Expire tears the session down
// and returns the terminal error to surface to the caller.
type Authenticator interface {
	AccessToken() string
	Renew(ctx context.Context) (string, error)
	Expire(ctx context.Context) error
}

// Client is a typed HTTP client for the LinguaHub REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
	auth    Authenticator
}

// New creates a Client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// SetAuthenticator wires the session that signs requests. Requests sent
// without an authenticator are unauthenticated.
func (c *Client) SetAuthenticator(auth Authenticator) {
	c.auth = auth
}

// APIError is a non-2xx backend response normalized into an error. Message
// holds the backend-provided text when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// APIMessage returns the backend-provided message for error normalization
// at the service layer.
func (e *APIError) APIMessage() string { return e.Message }

type requestOptions struct {
	headers       map[string]string
	authenticated bool
}

// do sends one JSON request and decodes a JSON response into out (when out
// is non-nil). Authenticated requests carry the current bearer token; on the
// first 401 the authenticator renews once and the request is replayed once
// with the new token. A second 401 expires the session. The replay bound
// keeps a permanently invalid refresh token from looping.
func (c *Client) do(ctx context.Context, method, path string, opts requestOptions, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	token := ""
	if opts.authenticated && c.auth != nil {
		token = c.auth.AccessToken()
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, path, opts.headers, payload, token)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return decodeBody(resp, out)
		}

		apiErr := readAPIError(resp)

		if resp.StatusCode != http.StatusUnauthorized || !opts.authenticated || c.auth == nil {
			return apiErr
		}

		if attempt > 0 {
			// The replayed request was rejected again.
			return c.auth.Expire(ctx)
		}

		renewed, err := c.auth.Renew(ctx)
		if err != nil {
			return err
		}
		token = renewed
	}
}

func (c *Client) send(ctx context.Context, method, path string, headers map[string]string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// readAPIError drains the response and extracts the backend error message
// from an {"error": "..."} body, falling back to the bare status.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: wire.Error}
	}
	return &APIError{Status: resp.StatusCode}
}
