package venue

import "strings"

// Classify matches a raw venue error message against recognizable patterns
// and returns a friendlier label, or "" when nothing matches. The raw
// message is always surfaced verbatim alongside the classification.
func Classify(raw string) string {
	msg := strings.ToLower(raw)
	switch {
	case strings.Contains(msg, "authorization") || strings.Contains(msg, "auth failed") ||
		strings.Contains(msg, "invalid account") || strings.Contains(msg, "wrong password"):
		return "authorization failure"
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connect failed"):
		return "connection refused"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return "timeout"
	case strings.Contains(msg, "no connection"):
		return "no connection to trade server"
	default:
		return ""
	}
}

// Describe returns the raw error text, prefixed with its classification
// when one is recognized.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	raw := err.Error()
	if label := Classify(raw); label != "" {
		return label + ": " + raw
	}
	return raw
}
