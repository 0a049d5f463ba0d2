package features

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// EventCSVHeader is the column layout of the enriched merged event table.
var EventCSVHeader = []string{
	"trip_id", "route_id", "service_id", "stop_id", "stop_sequence",
	"arrival_time", "route_short_name", "route_long_name", "route_type",
	"stop_name", "stop_lat", "stop_lon",
	"hour", "minute", "day_of_week",
}

// WriteCSV writes the enriched event table to path, overwriting any
// existing file. Null derived features become empty cells.
func WriteCSV(path string, events []StopEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event table %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(EventCSVHeader); err != nil {
		f.Close()
		return fmt.Errorf("write event table header: %w", err)
	}
	for i := range events {
		if err := w.Write(eventRow(&events[i])); err != nil {
			f.Close()
			return fmt.Errorf("write event row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush event table %s: %w", path, err)
	}
	return f.Close()
}

func eventRow(ev *StopEvent) []string {
	return []string{
		ev.TripID,
		ev.RouteID,
		ev.ServiceID,
		ev.StopID,
		strconv.Itoa(ev.StopSequence),
		ev.Arrival,
		ev.RouteShortName,
		ev.RouteLongName,
		strconv.Itoa(ev.RouteType),
		ev.StopName,
		strconv.FormatFloat(ev.StopLat, 'f', -1, 64),
		strconv.FormatFloat(ev.StopLon, 'f', -1, 64),
		formatNullableInt(ev.Hour),
		formatNullableInt(ev.Minute),
		formatNullableInt(ev.DayOfWeek),
	}
}

func formatNullableInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
