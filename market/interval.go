package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval is a bar interval in minutes.
type Interval int

// ParseInterval accepts "5", "5m", "15m", "1h", "1d".
func ParseInterval(s string) (Interval, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty interval")
	}

	mult := 1
	switch {
	case strings.HasSuffix(s, "m"):
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "h"):
		s = strings.TrimSuffix(s, "h")
		mult = 60
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
		mult = 24 * 60
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return Interval(n * mult), nil
}

func (iv Interval) Duration() time.Duration {
	return time.Duration(iv) * time.Minute
}

// BarsPerDay returns how many bars of this interval fit in one trading
// session of sessionMinutes. Used to annualize per-bar returns.
func (iv Interval) BarsPerDay(sessionMinutes int) int {
	if iv <= 0 || sessionMinutes <= 0 {
		return 0
	}
	return sessionMinutes / int(iv)
}
