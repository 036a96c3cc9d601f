package news

import (
	"strings"
	"sync"
	"time"
)

// Item is one scheduled economic event.
type Item struct {
	Title string
	Time  time.Time // UTC
}

// Feed is what the execution core consumes: a halt flag plus items for
// display. Only the flag gates trading.
type Feed interface {
	HaltActive(now time.Time) bool
	Relevant(now time.Time) []Item
}

// Keywords treated as high impact when they appear in an event title.
var highImpactKeywords = []string{
	"HIGH IMPACT", "ECB", "FOMC", "NFP", "CPI", "INTEREST RATE",
	"RATE DECISION", "GDP", "UNEMPLOYMENT",
}

// Window over which events are shown as relevant, independent of the
// trading halt margins.
const (
	relevantPast   = 60 * time.Minute
	relevantFuture = 120 * time.Minute
)

// Calendar is a Feed over a fixed or externally refreshed event list.
// Trading is halted within [event-Before, event+After] of any high-impact
// event.
type Calendar struct {
	mu     sync.RWMutex
	events []Item
	before time.Duration
	after  time.Duration
}

func NewCalendar(events []Item, before, after time.Duration) *Calendar {
	return &Calendar{events: append([]Item{}, events...), before: before, after: after}
}

// Replace swaps the event list, for periodic refresh from an external
// source.
func (c *Calendar) Replace(events []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append([]Item{}, events...)
}

func (c *Calendar) HaltActive(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now = now.UTC()
	for _, e := range c.events {
		if !highImpact(e.Title) {
			continue
		}
		if !now.Before(e.Time.Add(-c.before)) && !now.After(e.Time.Add(c.after)) {
			return true
		}
	}
	return false
}

func (c *Calendar) Relevant(now time.Time) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now = now.UTC()
	var out []Item
	for _, e := range c.events {
		if !highImpact(e.Title) {
			continue
		}
		d := e.Time.Sub(now)
		if d > -relevantPast && d < relevantFuture {
			out = append(out, e)
		}
	}
	return out
}

func highImpact(title string) bool {
	upper := strings.ToUpper(title)
	for _, kw := range highImpactKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// None is a Feed that never halts, used when news checking is disabled.
type None struct{}

func (None) HaltActive(time.Time) bool { return false }
func (None) Relevant(time.Time) []Item { return nil }
