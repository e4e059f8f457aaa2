package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a backend timestamp cannot be read
// under the naive-local rule.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// offsetSuffix matches a trailing UTC offset such as +02:00 or -05:30.
var offsetSuffix = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

// ParseNaiveLocal reads a backend timestamp as local wall-clock time.
//
// The backend stores naive datetimes, so "2024-01-01 10:00:00" means 10:00 on
// this machine's clock. Any "T" separator, trailing "Z" or "+hh:mm" offset is
// stripped rather than applied. Fractional seconds are kept to nanosecond
// precision. A bare date reads as local midnight. An empty string yields the
// zero time and no error.
func ParseNaiveLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	clean := strings.Replace(s, "T", " ", 1)
	clean = strings.TrimSuffix(clean, "Z")
	clean = offsetSuffix.ReplaceAllString(clean, "")

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '-' || r == ' ' || r == ':'
	})
	switch {
	case len(parts) == 3:
		parts = append(parts, "0", "0")
	case len(parts) < 5:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	nsec := 0
	if len(parts) > 5 {
		sec, frac, _ := strings.Cut(parts[5], ".")
		parts[5] = sec
		n, err := parseFraction(frac)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		nsec = n
	} else {
		parts = append(parts, "0")
	}

	var nums [6]int
	for i := 0; i < 6; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	hour, minute, second := nums[3], nums[4], nums[5]
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, nsec, time.Local), nil
}

// parseFraction turns the digits after the seconds separator into
// nanoseconds. Digits past the ninth are truncated.
func parseFraction(digits string) (int, error) {
	if digits == "" {
		return 0, nil
	}
	if len(digits) > 9 {
		digits = digits[:9]
	}
	if strings.Trim(digits, "0123456789") != "" {
		return 0, fmt.Errorf("bad fraction %q", digits)
	}
	return strconv.Atoi(digits + strings.Repeat("0", 9-len(digits)))
}

// FormatNaiveLocal renders t in the backend's naive layout.
func FormatNaiveLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
