package engine

import (
	"fmt"
	"strings"
)

// Unit is the display unit for throughput values. The backend always stores
// megabits per second.
type Unit string

const (
	UnitMbps Unit = "Mbps"
	UnitMBps Unit = "MBps"
)

// ParseUnit accepts "Mbps" or "MBps" (also "MB/s"), case-sensitive on the B.
func ParseUnit(s string) (Unit, error) {
	switch strings.TrimSpace(s) {
	case "", "Mbps", "mbps":
		return UnitMbps, nil
	case "MBps", "MB/s":
		return UnitMBps, nil
	}
	return "", fmt.Errorf("unknown unit %q (want Mbps or MBps)", s)
}

// Label returns the unit as shown next to values.
func (u Unit) Label() string {
	if u == UnitMBps {
		return "MB/s"
	}
	return "Mbps"
}

// Convert turns a value in Mbps into u.
func (u Unit) Convert(mbps float64) float64 {
	if u == UnitMBps {
		return mbps / 8
	}
	return mbps
}

// FormatSpeed formats an Mbps value in unit u with two decimals.
func FormatSpeed(mbps float64, u Unit) string {
	return fmt.Sprintf("%.2f %s", u.Convert(mbps), u.Label())
}

// PercentOfDeclared returns value as a percentage of the declared plan speed,
// both in Mbps. It returns false when no declared speed is set.
func PercentOfDeclared(mbps float64, declared int) (float64, bool) {
	if declared <= 0 {
		return 0, false
	}
	return mbps / float64(declared) * 100, true
}
