package types

import (
	"fmt"
	"strings"
)

// FormattedText renders the transcript as one "[MM:SS] text" line per
// segment. Falls back to the plain text when no segments were produced.
func (r *TranscriptResult) FormattedText() string {
	if len(r.Segments) == 0 {
		return r.Text
	}

	var b strings.Builder
	for _, seg := range r.Segments {
		b.WriteString(fmt.Sprintf("[%s] %s\n", FormatTimestamp(seg.Start), seg.Text))
	}
	return b.String()
}

// FormatTimestamp converts seconds to MM:SS, or HH:MM:SS past one hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
