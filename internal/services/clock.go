package services

import (
	"sync"
	"time"

	"github.com/arnold/levelup-api/internal/models"
)

// Clock is the single source of "today" for every day-scoped record.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// FixedClock is a settable Clock for tests and tooling.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FixedClock) AddDays(n int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, n)
	c.mu.Unlock()
}

func today(c Clock) string {
	return c.Now().Format(models.DateLayout)
}

func yesterday(c Clock) string {
	return c.Now().AddDate(0, 0, -1).Format(models.DateLayout)
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date in the clock's location.
func NormalizeDate(c Clock, s string) (string, error) {
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		return d.Format(models.DateLayout), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", validationErrorf("invalid date %q", s)
	}
	return ts.In(c.Now().Location()).Format(models.DateLayout), nil
}
