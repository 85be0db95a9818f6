package observes

import (
	"github.com/getsentry/sentry-go"
	"github.com/skillconnect/jobcore/internal/config"
)

// NewSentry registers the Sentry client. It reports false without error when
// no DSN is configured.
func NewSentry(c *config.Sentry, serverName string) (bool, error) {
	if c == nil || c.Endpoint == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              c.Endpoint,
		AttachStacktrace: true,
		SampleRate:       c.SampleRate,
		TracesSampleRate: c.SampleRate,
		ServerName:       serverName,
		Release:          c.Release,
		Environment:      c.Environment,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
