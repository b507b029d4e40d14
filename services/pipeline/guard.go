package pipeline

import (
	"fmt"
	"time"
)

// ExceedsMaxDuration is the duration guard: it decides skip purely from the
// video's duration and the configured maximum. A non-positive maximum
// disables the guard.
func ExceedsMaxDuration(durationSeconds int, max time.Duration) bool {
	if max <= 0 {
		return false
	}
	return time.Duration(durationSeconds)*time.Second > max
}

// FormatDuration renders a duration in seconds as M:SS or H:MM:SS, without
// zero-padding the leading unit.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
