package txcache

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultFreshnessWindow is how long a dashboard snapshot is served
	// without a network round-trip.
	DefaultFreshnessWindow = 30 * time.Second
	// DefaultDashboardLimit is how many recent records the dashboard requests.
	DefaultDashboardLimit = 50
)

// Option mutates cache configuration.
type Option func(*Cache)

// WithClock injects the time source used by the freshness gate.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger injects a logger. The default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithFreshnessWindow overrides DefaultFreshnessWindow.
func WithFreshnessWindow(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithDashboardLimit overrides DefaultDashboardLimit.
func WithDashboardLimit(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.limit = n
		}
	}
}
