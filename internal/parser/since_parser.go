package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseSince parses a lower time bound relative to now.
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2024"), start of that day
// - X hours (e.g., "24 hours", "6h")
// - X days (e.g., "3 days", "1d"), start of the day X days ago
// - X weeks (e.g., "2 weeks")
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty time bound")
	}

	if m := dateRegex.FindStringSubmatch(input); len(m) == 4 {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		// rejects 31/02 and friends
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, fmt.Errorf("invalid date %q", input)
		}
		return t, nil
	}

	m := relativeRegex.FindStringSubmatch(input)
	if len(m) != 3 {
		return time.Time{}, fmt.Errorf("invalid time bound %q. Use: dd/mm/yyyy, X hours, X days, or X weeks", input)
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil || amount < 1 {
		return time.Time{}, fmt.Errorf("amount must be a positive number")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch m[2] {
	case "h", "hour", "hours":
		if amount > 8760 {
			return time.Time{}, fmt.Errorf("hours must be between 1 and 8760")
		}
		return now.Add(-time.Duration(amount) * time.Hour), nil
	case "d", "day", "days":
		if amount > 365 {
			return time.Time{}, fmt.Errorf("days must be between 1 and 365")
		}
		return today.AddDate(0, 0, -amount), nil
	default:
		if amount > 52 {
			return time.Time{}, fmt.Errorf("weeks must be between 1 and 52")
		}
		return today.AddDate(0, 0, -7*amount), nil
	}
}
