package common

import (
	"fmt"
)

// FormatBytes renders a byte count in a human readable unit, used by the
// status page for memory and disk figures.
func FormatBytes(n uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	unitIndex := 0
	size := float64(n)

	for size >= 1024 && unitIndex < len(units)-1 {
		size /= 1024
		unitIndex++
	}
	return fmt.Sprintf("%.2f%s", size, units[unitIndex])
}

// FormatSeconds renders an uptime figure as days, hours and minutes.
func FormatSeconds(n uint64) string {
	days := n / 86400
	hours := n % 86400 / 3600
	minutes := n % 3600 / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
