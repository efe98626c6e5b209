package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeframe converts interval strings like "1m", "5m", "1h", "4h", "1d"
// to a duration.
func ParseTimeframe(timeframe string) (time.Duration, error) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if tf == "" {
		return 0, fmt.Errorf("empty timeframe")
	}

	unit := tf[len(tf)-1]
	value, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}

	switch unit {
	case 's':
		return time.Duration(value) * time.Second, nil
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe unit %q", timeframe)
	}
}
