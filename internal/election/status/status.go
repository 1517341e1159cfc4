// Package status derives an election's lifecycle state from its configured
// window. Every call site that needs a status (dashboards, the vote gate,
// results pages) goes through Resolve so they can never disagree.
package status

import (
	"fmt"
	"time"
)

// Status is the derived lifecycle state of an election. It is never stored.
type Status string

const (
	Upcoming Status = "upcoming"
	Active   Status = "active"
	Ended    Status = "ended"
	Unknown  Status = "unknown"
)

// Resolve maps an election window to a lifecycle state at instant now.
// Pure and total. The window is the closed interval [start, end]: both
// now == start and now == end resolve to Active. Missing bounds (zero
// times) resolve to Unknown.
func Resolve(now, start, end time.Time) Status {
	if start.IsZero() || end.IsZero() {
		return Unknown
	}
	switch {
	case now.Before(start):
		return Upcoming
	case now.After(end):
		return Ended
	default:
		return Active
	}
}

// IsActive reports whether voting is permitted at instant now.
func IsActive(now, start, end time.Time) bool {
	return Resolve(now, start, end) == Active
}

// TimeRemaining formats the signed duration to the nearest window boundary:
// the start for upcoming elections, the end for active ones. Ended and
// unknown windows get fixed strings.
//
// Granularity drops leading zero units down to minutes; seconds appear only
// when less than a minute remains.
func TimeRemaining(now, start, end time.Time) string {
	switch Resolve(now, start, end) {
	case Upcoming:
		return "Starts in " + formatDuration(start.Sub(now))
	case Active:
		return "Ends in " + formatDuration(end.Sub(now))
	case Ended:
		return "Election ended"
	default:
		return "Unknown status"
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("0h %dm", minutes)
	default:
		return fmt.Sprintf("0m %ds", seconds)
	}
}
