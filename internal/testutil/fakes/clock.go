package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// Clock is a manually driven TimeProvider
type Clock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewClock returns a clock frozen at now that counts days in UTC
func NewClock(now time.Time) *Clock {
	return &Clock{now: now, loc: time.UTC}
}

// NewClockIn returns a clock frozen at now that counts days in loc
func NewClockIn(now time.Time, loc *time.Location) *Clock {
	return &Clock{now: now, loc: loc}
}

// Location returns the zone days are counted in
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the frozen time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AddDays moves the clock forward by n calendar days
func (c *Clock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// Since returns the frozen time elapsed since t
func (c *Clock) Since(t time.Time) core.Duration {
	return core.Duration(c.Now().Sub(t))
}

// Sleep advances the clock instead of blocking
func (c *Clock) Sleep(d core.Duration) {
	c.Advance(d.Std())
}

// WithTimeout delegates to the real context package
func (c *Clock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// ParseDuration parses a duration string
func (c *Clock) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}
