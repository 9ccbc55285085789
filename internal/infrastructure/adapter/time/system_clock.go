package time

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// SystemClock implements the TimeProvider interface with the wall clock
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a clock that counts calendar days in the named zone
func NewSystemClock(timezone string) (core.TimeProvider, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &SystemClock{loc: loc}, nil
}

// Now returns the current time in UTC
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Location returns the zone calendar days are counted in
func (c *SystemClock) Location() *time.Location {
	return c.loc
}

// Since returns the time elapsed since t
func (c *SystemClock) Since(t time.Time) core.Duration {
	return core.Duration(time.Since(t))
}

// Sleep pauses the current goroutine for the specified duration
func (c *SystemClock) Sleep(d core.Duration) {
	time.Sleep(d.Std())
}

// WithTimeout returns a context that will be canceled after the specified timeout
func (c *SystemClock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// ParseDuration parses a duration string
func (c *SystemClock) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}
