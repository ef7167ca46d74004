package shared

import (
	"fmt"
	"os"
)

// Constants
const (
	DefaultMaxRetries = 3
	UserAgent         = "coverfetch/1.0 (+https://example.local)"
)

// HumanBytes formats a byte count for display (e.g. "24.4KB").
func HumanBytes(n int) string {
	f := float64(n)
	for _, unit := range []string{"B", "KB", "MB"} {
		if f < 1024.0 {
			return fmt.Sprintf("%.1f%s", f, unit)
		}
		f /= 1024.0
	}
	return fmt.Sprintf("%.1fGB", f)
}

// TruncateString truncates a string to maxLen characters, appending "..." when cut.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FileExists checks whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
