// Package api is the HTTP client for the Telegram file server: one method per
// endpoint, sharing a cookie-carrying session for the life of the process.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

// DefaultBaseURL is where the file server listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the file server. It is not safe for concurrent use; the
// server's auth flow is stateful and requests are meant to be sequential.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     ratelimit.Limiter
	timeout     time.Duration
	logRequests bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is added if
// the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimiter paces requests; every call takes one slot before dialing.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithTimeout sets an overall per-request timeout. It is applied after every
// option has run, so it also covers a client given by WithHTTPClient. Zero
// keeps the http.Client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestLogging logs every request and response through the standard logger.
func WithRequestLogging(enabled bool) Option {
	return func(c *Client) {
		c.logRequests = enabled
	}
}

// New creates a client for baseURL. Trailing slashes are stripped.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		limiter:    ratelimit.NewUnlimited(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	if c.logRequests {
		c.httpClient.Transport = newLoggingTransport(c.httpClient.Transport)
	}
	return c, nil
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckStatus fetches GET /auth/status. Any failure is logged and reported as
// a nil status, meaning the server is unreachable or unusable.
func (c *Client) CheckStatus(ctx context.Context) *ServerStatus {
	var status ServerStatus
	if err := c.doJSON(ctx, http.MethodGet, "/auth/status", nil, &status); err != nil {
		log.Printf("Error checking status: %v", err)
		return nil
	}
	return &status
}

// SetupAPI stores the Telegram API credentials on the server.
func (c *Client) SetupAPI(ctx context.Context, apiID, apiHash string) (Response, error) {
	var out Response
	payload := map[string]string{"apiId": apiID, "apiHash": apiHash}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/setup", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendCode asks the server to send a login code to phoneNumber.
func (c *Client) SendCode(ctx context.Context, phoneNumber string) (Response, error) {
	var out Response
	payload := map[string]string{"phoneNumber": phoneNumber}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/send-code", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCode submits the login code.
func (c *Client) VerifyCode(ctx context.Context, code string) (*VerifyCodeResult, error) {
	var out Response
	payload := map[string]string{"code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/verify-code", payload, &out); err != nil {
		return nil, err
	}

	if truthy(out["needsPassword"]) {
		hint, _ := out["hint"].(string)
		return &VerifyCodeResult{NeedsPassword: true, Hint: hint}, nil
	}
	return &VerifyCodeResult{Raw: out}, nil
}

// VerifyPassword submits the two-step verification password.
func (c *Client) VerifyPassword(ctx context.Context, password string) (Response, error) {
	var out Response
	payload := map[string]string{"password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/verify-password", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetGroups lists the chats visible to the authenticated account.
func (c *Client) GetGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.doJSON(ctx, http.MethodGet, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup fetches details of a single chat.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*GroupDetails, error) {
	var group GroupDetails
	if err := c.doJSON(ctx, http.MethodGet, "/groups/"+groupID, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroupFiles lists media files posted in a chat. A response without a
// files field yields an empty list.
func (c *Client) GetGroupFiles(ctx context.Context, groupID string) ([]RemoteFile, error) {
	path := "/files/group/" + groupID
	logPrefix := fmt.Sprintf("[GroupFiles Group:%s]", groupID)
	log.Printf("%s Requesting: %s", logPrefix, c.baseURL+path)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		log.Printf("%s Error getting group files: %v", logPrefix, err)
		return nil, err
	}
	defer resp.Body.Close()
	log.Printf("%s Response status: %d", logPrefix, resp.StatusCode)

	body, err := readBody(resp)
	if err != nil {
		log.Printf("%s Error getting group files: %v", logPrefix, err)
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("%s Response content: %s", logPrefix, body)
	}
	if err := checkStatus(resp, body); err != nil {
		log.Printf("%s Error getting group files: %v", logPrefix, err)
		return nil, err
	}

	var payload struct {
		Files []RemoteFile `json:"files"`
	}
	if err := decode(resp, body, &payload); err != nil {
		log.Printf("%s Error getting group files: %v", logPrefix, err)
		return nil, err
	}
	if payload.Files == nil {
		payload.Files = []RemoteFile{}
	}
	log.Printf("%s Found %d files", logPrefix, len(payload.Files))
	return payload.Files, nil
}

// CheckFileAccess probes the stream endpoint with HEAD and reports whether it
// answered 200. Failures to reach the server count as no access.
func (c *Client) CheckFileAccess(ctx context.Context, fileID string) bool {
	path := "/files/" + fileID + "/stream"
	logPrefix := fmt.Sprintf("[FileAccess File:%s]", fileID)
	log.Printf("%s Testing access to: %s", logPrefix, c.baseURL+path)

	resp, err := c.do(ctx, http.MethodHead, path, nil)
	if err != nil {
		log.Printf("%s Error checking file access: %v", logPrefix, err)
		return false
	}
	defer resp.Body.Close()

	log.Printf("%s Response status: %d", logPrefix, resp.StatusCode)
	log.Printf("%s Response headers: %v", logPrefix, resp.Header)
	return resp.StatusCode == http.StatusOK
}

// StreamURL builds the stream location of a file without touching the
// network. A non-empty groupID selects the group-scoped path.
func (c *Client) StreamURL(fileID, groupID string) string {
	if groupID != "" {
		return fmt.Sprintf("%s/files/group/%s/file/%s/stream", c.baseURL, groupID, fileID)
	}
	return fmt.Sprintf("%s/files/%s/stream", c.baseURL, fileID)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return err
	}
	if err := checkStatus(resp, body); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(resp, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	c.limiter.Take()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	return resp, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w: %w",
			resp.Request.Method, resp.Request.URL, ErrTransport, err)
	}
	return body, nil
}

func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func decode(resp *http.Response, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", resp.Request.Method, resp.Request.URL, ErrDecode, err)
	}
	return nil
}
