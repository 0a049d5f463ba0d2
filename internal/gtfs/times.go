package gtfs

import (
	"strconv"
	"strings"
)

// PastMidnightPolicy decides what happens to arrival times with an hour
// field of 24 or more. GTFS uses such values for trips that run past
// midnight; the upstream system treated them as unparseable instead.
type PastMidnightPolicy string

const (
	// PastMidnightRollover normalizes the hour modulo 24 and advances
	// the derived day by the number of whole days rolled over.
	PastMidnightRollover PastMidnightPolicy = "rollover"
	// PastMidnightNull treats hours of 24 or more as malformed.
	PastMidnightNull PastMidnightPolicy = "null"
)

// Valid reports whether p is one of the defined policies.
func (p PastMidnightPolicy) Valid() bool {
	return p == PastMidnightRollover || p == PastMidnightNull
}

// TimeOfDay is a parsed GTFS arrival or departure time. DayShift counts
// whole days rolled past midnight; it is zero unless the source hour was
// 24 or more and the rollover policy applied.
type TimeOfDay struct {
	Hour     int
	Minute   int
	Second   int
	DayShift int
}

// Seconds returns the time as seconds since midnight of the service day,
// including any rolled-over days.
func (t TimeOfDay) Seconds() int {
	return ((t.DayShift*24+t.Hour)*60+t.Minute)*60 + t.Second
}

// ParseTimeOfDay parses a GTFS "H:MM:SS" or "HH:MM:SS" string. Malformed
// values (wrong shape, non-numeric fields, minutes or seconds out of
// range) return ok=false; callers keep the row and propagate null derived
// features. Hours of 24 or more follow the given policy.
func ParseTimeOfDay(s string, policy PastMidnightPolicy) (TimeOfDay, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return TimeOfDay{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	second, err := strconv.Atoi(parts[2])
	if err != nil || second < 0 || second > 59 {
		return TimeOfDay{}, false
	}

	t := TimeOfDay{Hour: hour, Minute: minute, Second: second}
	if hour >= 24 {
		if policy != PastMidnightRollover {
			return TimeOfDay{}, false
		}
		t.DayShift = hour / 24
		t.Hour = hour % 24
	}
	return t, true
}
