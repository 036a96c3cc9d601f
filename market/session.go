package market

import (
	"strings"
	"time"
)

// CurrentSession names the major FX session(s) active at the given UTC time.
// Approximate boundaries; used for display only, never for gating trades.
func CurrentSession(now time.Time) string {
	now = now.UTC()
	hour := now.Hour()
	wd := now.Weekday()

	// Friday 21:00 UTC through Sunday 21:00 UTC the market is closed.
	if (wd == time.Friday && hour >= 21) || wd == time.Saturday || (wd == time.Sunday && hour < 21) {
		return "Closed (weekend)"
	}

	var sessions []string
	weekday := wd >= time.Monday && wd <= time.Friday

	if (wd == time.Sunday && hour >= 21) ||
		(wd >= time.Monday && wd <= time.Thursday && (hour >= 21 || hour < 7)) ||
		(wd == time.Friday && hour < 7) {
		sessions = append(sessions, "Sydney")
	}
	if weekday && hour < 9 {
		sessions = append(sessions, "Tokyo")
	}
	if weekday && hour >= 7 && hour < 16 {
		sessions = append(sessions, "London")
	}
	if weekday && hour >= 12 && hour < 21 {
		sessions = append(sessions, "New York")
	}

	switch len(sessions) {
	case 0:
		return "Closed (between sessions)"
	case 1:
		return sessions[0]
	default:
		return "Overlap: " + strings.Join(sessions, " & ")
	}
}
