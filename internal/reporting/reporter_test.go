package reporting

import (
	"errors"
	"sync"
	"testing"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventSink struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (s *eventSink) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func newTestReporter(t *testing.T) (*SentryReporter, *eventSink) {
	t.Helper()
	sink := &eventSink{}
	client, err := sentry.NewClient(sentry.ClientOptions{BeforeSend: sink.beforeSend})
	require.NoError(t, err)
	return NewHubReporter(sentry.NewHub(client, sentry.NewScope())), sink
}

func TestSentryReporter_CaptureException(t *testing.T) {
	r, sink := newTestReporter(t)

	r.CaptureException(errors.New("decode output document"))

	require.Len(t, sink.events, 1)
	require.NotEmpty(t, sink.events[0].Exception)
	assert.Equal(t, "decode output document", sink.events[0].Exception[len(sink.events[0].Exception)-1].Value)
}

func TestSentryReporter_Recover(t *testing.T) {
	r, sink := newTestReporter(t)

	r.Recover("index out of range")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "index out of range", sink.events[0].Message)
	assert.True(t, r.Flush(time.Second))
}

func TestNewSentryReporter_WithoutDSN(t *testing.T) {
	r, err := NewSentryReporter(Options{Environment: "test"})
	require.NoError(t, err)
	assert.NotPanics(t, func() { r.CaptureException(errors.New("ignored")) })
}
