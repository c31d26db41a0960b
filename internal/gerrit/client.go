// Package gerrit provides an authenticated HTTP client for the Gerrit REST API.
package gerrit

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MagicPrefix is the anti-XSSI string Gerrit prepends to JSON responses.
// It must be stripped before parsing. Responses without it parse as-is.
const MagicPrefix = ")]}'"

// requestTimeout bounds each REST call independently of the caller's context.
const requestTimeout = 30 * time.Second

// Credentials holds the connection settings for one Gerrit server.
// Immutable for the lifetime of a client.
type Credentials struct {
	// BaseURL is the server root, e.g. "https://gerrit.example.com/".
	BaseURL string

	// Username and Password form the HTTP Basic pair. Both must be set for
	// Basic auth to be attached.
	Username string
	Password string

	// SessionCookie is a raw Cookie header value (e.g. "GerritAccount=...").
	// May be combined with Basic auth; either alone also works.
	SessionCookie string

	// AuthPathPrefix is the path segment for authenticated requests.
	// Defaults to "a/". Ignored for anonymous clients.
	AuthPathPrefix string

	// InsecureSkipVerify disables TLS certificate validation. Explicit
	// opt-in for self-signed internal servers, never a default.
	InsecureSkipVerify bool
}

// Authenticated reports whether any credential is configured.
func (c Credentials) Authenticated() bool {
	return (c.Username != "" && c.Password != "") || c.SessionCookie != ""
}

// Client issues authenticated requests against the Gerrit REST API.
// Paths passed to Get/GetRaw/Put are relative to the server root and must be
// pre-encoded by the caller; the client does not re-encode them.
type Client struct {
	creds      Credentials
	httpClient *http.Client
}

// NewClient creates a Gerrit REST client from credentials.
func NewClient(creds Credentials) *Client {
	if creds.AuthPathPrefix == "" {
		creds.AuthPathPrefix = "a/"
	}

	transport := http.DefaultTransport
	if creds.InsecureSkipVerify {
		t, ok := http.DefaultTransport.(*http.Transport)
		if ok {
			clone := t.Clone()
			// #nosec G402 - relaxed TLS is an explicit per-deployment opt-in
			clone.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			transport = clone
		}
	}

	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

// BaseURL returns the configured server root.
func (c *Client) BaseURL() string {
	return c.creds.BaseURL
}

// Get performs an authenticated GET and returns the response body as JSON
// bytes with the magic prefix stripped.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.parseJSON("GET", path, body)
}

// GetRaw performs an authenticated GET and returns the response body
// verbatim. Used for endpoints that return non-JSON payloads, such as
// base64 file content.
func (c *Client) GetRaw(ctx context.Context, path string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Put marshals body as JSON, performs an authenticated PUT, and returns the
// response body as JSON bytes with the magic prefix stripped.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &GatewayError{Op: "PUT " + path, Message: fmt.Sprintf("failed to encode request body: %v", err)}
	}

	respBody, err := c.do(ctx, http.MethodPut, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return c.parseJSON("PUT", path, respBody)
}

// do builds, authenticates, and executes one request. Non-2xx responses and
// network failures surface as *GatewayError. No retries.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, &GatewayError{Op: op, Message: fmt.Sprintf("failed to build request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds.Username != "" && c.creds.Password != "" {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}
	if c.creds.SessionCookie != "" {
		req.Header.Set("Cookie", c.creds.SessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: op, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Op: op, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{
			Status:  resp.StatusCode,
			Op:      op,
			Message: bodySnippet(respBody),
		}
	}

	return respBody, nil
}

// parseJSON strips the magic prefix and validates that the remainder is JSON.
func (c *Client) parseJSON(method, path string, body []byte) ([]byte, error) {
	stripped := StripMagicPrefix(body)
	if !json.Valid(stripped) {
		return nil, &GatewayError{Op: method + " " + path, Message: "response is not valid JSON"}
	}
	return stripped, nil
}

// endpoint joins the base URL, the auth path prefix (for authenticated
// clients), and the pre-encoded path.
func (c *Client) endpoint(path string) string {
	base := strings.TrimSuffix(c.creds.BaseURL, "/")
	path = strings.TrimPrefix(path, "/")
	if c.creds.Authenticated() {
		return base + "/" + c.creds.AuthPathPrefix + path
	}
	return base + "/" + path
}

// StripMagicPrefix removes Gerrit's anti-XSSI prefix from a response body.
// The prefix is treated as optional: bodies without it are returned
// unchanged. A newline directly after the prefix is removed with it.
func StripMagicPrefix(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte(MagicPrefix)) {
		return body
	}
	rest := body[len(MagicPrefix):]
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	return rest
}

// bodySnippet reduces an error response body to a short single-line message.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(StripMagicPrefix(body)))
	s = strings.Join(strings.Fields(s), " ")
	const maxLen = 200
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	if s == "" {
		s = "request failed"
	}
	return s
}
