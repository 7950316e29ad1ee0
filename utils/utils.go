package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a date string into a time.Time object in UTC.
// FMP endpoints are inconsistent: some return plain dates, some full timestamps.
func ParseDate(dateString string) (time.Time, error) {
	if dateString == "" {
		return time.Time{}, nil
	}

	// List of potential layouts to try
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	var parsedTime time.Time
	var err error

	for _, layout := range layouts {
		parsedTime, err = time.Parse(layout, dateString)
		if err == nil {
			break
		}
	}

	if parsedTime.IsZero() && err != nil {
		return time.Time{}, fmt.Errorf("error parsing date: %s", dateString)
	}

	return parsedTime.UTC(), nil
}

// ParseMarketCap normalizes a market cap value from a loosely typed JSON field.
// Upstream returns it as a number or as a string with thousands separators.
// Returns false if the value cannot be interpreted as a positive integer.
func ParseMarketCap(value any) (int64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		if v <= 0 {
			return 0, false
		}
		return int64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return int64(v), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
