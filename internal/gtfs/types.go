// Package gtfs loads the static GTFS tables the demand pipeline consumes.
// Feeds are treated as well-formed tabular input: tables load into plain
// structs and cross-table integrity is reported, not repaired.
package gtfs

// Feed holds all parsed GTFS tables for one feed version.
type Feed struct {
	Routes    []Route
	Stops     []Stop
	Trips     []Trip
	StopTimes []StopTime
	Calendar  []CalendarEntry
}

// Route represents a row from routes.txt.
type Route struct {
	RouteID   string
	ShortName string
	LongName  string
	Type      int
}

// Stop represents a row from stops.txt.
type Stop struct {
	StopID string
	Name   string
	Lat    float64
	Lon    float64
}

// Trip represents a row from trips.txt.
type Trip struct {
	TripID    string
	RouteID   string
	ServiceID string
	Headsign  string
}

// StopTime represents a row from stop_times.txt. Arrival keeps the raw
// cell value; parsing happens downstream under an explicit policy.
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence int
	Arrival      string
}

// CalendarEntry represents a row from calendar.txt. Weekdays is indexed
// Monday=0 through Sunday=6.
type CalendarEntry struct {
	ServiceID string
	Weekdays  [7]bool
	StartDate string
	EndDate   string
}

// ActiveWeekdays returns the indices of days the service runs, in
// Monday-first order.
func (c CalendarEntry) ActiveWeekdays() []int {
	var days []int
	for d, on := range c.Weekdays {
		if on {
			days = append(days, d)
		}
	}
	return days
}
