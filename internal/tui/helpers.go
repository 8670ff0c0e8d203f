package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// formatTime renders a relative timestamp for review lists.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// formatPrice renders a price in shillings, dropping cents when whole.
func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("KSh %d", int64(p))
	}
	return fmt.Sprintf("KSh %.2f", p)
}

// oneLine collapses whitespace so free text fits a list row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clampCursor keeps a list cursor within [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// moveCursor applies j/k style navigation to a cursor over n items.
func moveCursor(cursor, n int, key string) int {
	switch key {
	case "j", "down":
		cursor++
	case "k", "up":
		cursor--
	case "g", "home":
		cursor = 0
	case "G", "end":
		cursor = n - 1
	}
	return clampCursor(cursor, n)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
