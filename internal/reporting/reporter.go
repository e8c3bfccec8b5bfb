// Package reporting forwards unexpected errors and panics to Sentry.
package reporting

import (
	"fmt"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

// Reporter receives failures the run could not handle.
type Reporter interface {
	CaptureException(err error)
	Recover(r any)
	Flush(timeout time.Duration) bool
}

// Options configures the Sentry client. An empty DSN disables sending while
// keeping the reporter usable.
type Options struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
}

// SentryReporter reports through a Sentry hub.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter initialises the global Sentry client and reports through
// its hub.
func NewSentryReporter(opts Options) (*SentryReporter, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		Debug:       opts.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry.Init: %w", err)
	}
	return &SentryReporter{hub: sentry.CurrentHub()}, nil
}

// NewHubReporter reports through an existing hub.
func NewHubReporter(hub *sentry.Hub) *SentryReporter {
	return &SentryReporter{hub: hub}
}

func (r *SentryReporter) CaptureException(err error) {
	r.hub.CaptureException(err)
}

func (r *SentryReporter) Recover(rec any) {
	r.hub.Recover(rec)
}

func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}
