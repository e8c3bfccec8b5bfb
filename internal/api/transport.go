package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxLoggedBody = 1000
	redacted      = "[REDACTED]"
)

// Headers and JSON body fields that carry credentials are never logged.
var (
	sensitiveHeaders = []string{"Cookie", "Authorization"}
	sensitiveFields  = []string{"password", "apiHash"}
)

// requestLogEntry is one request/response exchange as written to the log.
type requestLogEntry struct {
	ID           string
	Method       string
	URL          string
	Headers      http.Header
	RequestBody  string
	StatusCode   int
	ResponseBody string
	Duration     time.Duration
	Error        string
}

// loggingTransport records every exchange. Bodies are buffered so they can be
// logged and still read by the caller.
type loggingTransport struct {
	next http.RoundTripper
}

func newLoggingTransport(next http.RoundTripper) *loggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	entry := requestLogEntry{
		ID:      uuid.NewString(),
		Method:  req.Method,
		URL:     req.URL.String(),
		Headers: redactHeaders(req.Header),
	}

	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(body)
			body.Close()
			entry.RequestBody = redactBody(string(data))
		}
	}

	resp, err := t.next.RoundTrip(req)
	entry.Duration = time.Since(start)
	if err != nil {
		entry.Error = err.Error()
		logExchange(entry)
		return nil, err
	}

	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	entry.StatusCode = resp.StatusCode
	entry.ResponseBody = string(data)
	if readErr != nil {
		entry.Error = readErr.Error()
		logExchange(entry)
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}
	logExchange(entry)

	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func redactHeaders(h http.Header) http.Header {
	headers := h.Clone()
	for _, key := range sensitiveHeaders {
		if headers.Get(key) != "" {
			headers.Set(key, redacted)
		}
	}
	return headers
}

// redactBody masks credential fields of a JSON object body. Anything that is
// not a JSON object is returned unchanged.
func redactBody(body string) string {
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return body
	}
	changed := false
	for _, key := range sensitiveFields {
		if _, ok := fields[key]; ok {
			fields[key] = redacted
			changed = true
		}
	}
	if !changed {
		return body
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return redacted
	}
	return string(data)
}

func logExchange(entry requestLogEntry) {
	var b strings.Builder
	fmt.Fprintf(&b, "[HTTP %s] %s %s", entry.ID, entry.Method, entry.URL)
	if entry.StatusCode > 0 {
		fmt.Fprintf(&b, " -> %d", entry.StatusCode)
	}
	fmt.Fprintf(&b, " (%dms)", entry.Duration.Milliseconds())

	for key, values := range entry.Headers {
		fmt.Fprintf(&b, "\n  > %s: %s", key, strings.Join(values, ", "))
	}
	if entry.RequestBody != "" {
		fmt.Fprintf(&b, "\n  request: %s", compactBody(entry.RequestBody))
	}
	if entry.ResponseBody != "" {
		fmt.Fprintf(&b, "\n  response: %s", compactBody(entry.ResponseBody))
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, "\n  error: %s", entry.Error)
	}
	log.Print(b.String())
}

// compactBody re-encodes JSON bodies on one line and truncates anything long.
func compactBody(body string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err == nil {
		body = buf.String()
	}
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "... [truncated]"
	}
	return body
}
