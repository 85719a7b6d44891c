package cmd

import (
	"strconv"
	"strings"

	"github.com/storefront/storefront-cli/internal/api"
)

func formatMoney(v api.FlexFloat) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 64)
}

// formatTime renders an API timestamp in local time, or "-" when unset.
func formatTime(ts api.Timestamp) string {
	t := ts.Time()
	if t.IsZero() {
		if s := strings.TrimSpace(string(ts)); s != "" {
			return s
		}
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
