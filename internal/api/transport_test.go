package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type failingBody struct {
	closed bool
}

func (b *failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func (b *failingBody) Close() error {
	b.closed = true
	return nil
}

func TestLoggingTransport_BodyReadError(t *testing.T) {
	captureLog(t)
	body := &failingBody{}
	transport := newLoggingTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: body, Header: http.Header{}, Request: req}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "http://localhost:8000/groups", nil)
	resp, err := transport.RoundTrip(req)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.True(t, body.closed)
}

func TestLoggingTransport_KeepsResponseReadable(t *testing.T) {
	logs := captureLog(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, WithRequestLogging(true))
	require.NoError(t, err)

	resp, err := client.SendCode(context.Background(), "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, logs.String(), "POST "+srv.URL+"/auth/send-code -> 200")
	assert.Contains(t, logs.String(), `request: {"phoneNumber":"+15550001111"}`)
	assert.Contains(t, logs.String(), `response: {"success":true}`)
}

func TestLoggingTransport_RedactsCredentials(t *testing.T) {
	logs := captureLog(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/status" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cr3t-session"})
		}
		w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, WithRequestLogging(true))
	require.NoError(t, err)
	ctx := context.Background()

	require.NotNil(t, client.CheckStatus(ctx))
	_, err = client.VerifyPassword(ctx, "hunter2")
	require.NoError(t, err)
	_, err = client.SetupAPI(ctx, "12345", "0123456789abcdef")
	require.NoError(t, err)

	out := logs.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "s3cr3t-session")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "> Cookie: "+redacted)
	assert.Contains(t, out, `"password":"`+redacted+`"`)
	assert.Contains(t, out, `"apiId":"12345"`)
}

func TestRedactBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Password", `{"password":"pw"}`, `{"password":"[REDACTED]"}`},
		{"NoSecrets", `{"code": "42"}`, `{"code": "42"}`},
		{"NotJSON", `password=pw`, `password=pw`},
		{"Array", `["password"]`, `["password"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redactBody(tt.in))
		})
	}
}

func TestRedactHeaders_LeavesOriginalUntouched(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", "session=abc")
	h.Set("Accept", "application/json")

	got := redactHeaders(h)

	assert.Equal(t, redacted, got.Get("Cookie"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "session=abc", h.Get("Cookie"))
	assert.Empty(t, got.Get("Authorization"))
}
