package player

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts a "m:ss" display duration to seconds. Unparseable
// parts count as zero.
func ParseDuration(d string) int {
	parts := strings.Split(strings.TrimSpace(d), ":")
	minutes, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	seconds := 0
	if len(parts) > 1 {
		seconds, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	total := minutes*60 + seconds
	if total < 0 {
		return 0
	}
	return total
}

// FormatTime renders seconds as m:ss. Negative values render as 0:00.
func FormatTime(totalSeconds int) string {
	if totalSeconds < 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
