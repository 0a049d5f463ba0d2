// Package features builds the denormalized stop-event table the demand
// pipeline trains on: GTFS stop_times joined to trips, routes and stops,
// enriched with hour, minute and day-of-week derived from arrival times.
package features

import (
	"fmt"

	"github.com/transitlab/demandcast/internal/gtfs"
)

// JoinPolicy controls what happens to stop_times rows that have no
// matching trip, route or stop.
type JoinPolicy string

const (
	// JoinDrop silently drops unmatched rows, keeping per-edge counts.
	JoinDrop JoinPolicy = "drop"
	// JoinError fails the build on the first unmatched row.
	JoinError JoinPolicy = "error"
)

// Valid reports whether p is one of the defined policies.
func (p JoinPolicy) Valid() bool {
	return p == JoinDrop || p == JoinError
}

// Options configure a build. Zero values mean rollover time parsing and
// drop-on-unmatched joins.
type Options struct {
	PastMidnight gtfs.PastMidnightPolicy
	Join         JoinPolicy
}

func (o Options) withDefaults() Options {
	if o.PastMidnight == "" {
		o.PastMidnight = gtfs.PastMidnightRollover
	}
	if o.Join == "" {
		o.Join = JoinDrop
	}
	return o
}

// StopEvent is one scheduled (trip, stop) visit enriched with route and
// stop attributes. Derived time fields are nil when the arrival time did
// not parse under the configured policy.
type StopEvent struct {
	TripID       string
	RouteID      string
	ServiceID    string
	StopID       string
	StopSequence int
	Arrival      string

	RouteShortName string
	RouteLongName  string
	RouteType      int
	StopName       string
	StopLat        float64
	StopLon        float64

	Hour      *int
	Minute    *int
	DayOfWeek *int
}

// BuildStats counts rows affected by join and parse decisions during a
// build. Dropped counts stay zero under the error join policy.
type BuildStats struct {
	Events            int
	DroppedNoTrip     int
	DroppedNoRoute    int
	DroppedNoStop     int
	MalformedArrivals int
}

// Dropped returns the total rows removed by the join.
func (s BuildStats) Dropped() int {
	return s.DroppedNoTrip + s.DroppedNoRoute + s.DroppedNoStop
}

// Build inner-joins stop_times to trips, routes and stops and derives the
// time features. Output order follows stop_times source order, which
// downstream aggregates rely on for tie-breaking. Events whose arrival
// time fails to parse are kept with nil derived fields.
func Build(feed *gtfs.Feed, opts Options) ([]StopEvent, BuildStats, error) {
	opts = opts.withDefaults()
	if !opts.PastMidnight.Valid() {
		return nil, BuildStats{}, fmt.Errorf("unknown past-midnight policy %q", opts.PastMidnight)
	}
	if !opts.Join.Valid() {
		return nil, BuildStats{}, fmt.Errorf("unknown join policy %q", opts.Join)
	}

	trips := make(map[string]gtfs.Trip, len(feed.Trips))
	for _, t := range feed.Trips {
		trips[t.TripID] = t
	}
	routes := make(map[string]gtfs.Route, len(feed.Routes))
	for _, r := range feed.Routes {
		routes[r.RouteID] = r
	}
	stops := make(map[string]gtfs.Stop, len(feed.Stops))
	for _, s := range feed.Stops {
		stops[s.StopID] = s
	}

	events := make([]StopEvent, 0, len(feed.StopTimes))
	var stats BuildStats

	for i, st := range feed.StopTimes {
		trip, ok := trips[st.TripID]
		if !ok {
			if opts.Join == JoinError {
				return nil, stats, fmt.Errorf("stop_times row %d: trip %q not found in trips", i+1, st.TripID)
			}
			stats.DroppedNoTrip++
			continue
		}
		route, ok := routes[trip.RouteID]
		if !ok {
			if opts.Join == JoinError {
				return nil, stats, fmt.Errorf("stop_times row %d: route %q not found in routes", i+1, trip.RouteID)
			}
			stats.DroppedNoRoute++
			continue
		}
		stop, ok := stops[st.StopID]
		if !ok {
			if opts.Join == JoinError {
				return nil, stats, fmt.Errorf("stop_times row %d: stop %q not found in stops", i+1, st.StopID)
			}
			stats.DroppedNoStop++
			continue
		}

		ev := StopEvent{
			TripID:         st.TripID,
			RouteID:        trip.RouteID,
			ServiceID:      trip.ServiceID,
			StopID:         st.StopID,
			StopSequence:   st.StopSequence,
			Arrival:        st.Arrival,
			RouteShortName: route.ShortName,
			RouteLongName:  route.LongName,
			RouteType:      route.Type,
			StopName:       stop.Name,
			StopLat:        stop.Lat,
			StopLon:        stop.Lon,
		}

		if tod, ok := gtfs.ParseTimeOfDay(st.Arrival, opts.PastMidnight); ok {
			hour, minute := tod.Hour, tod.Minute
			// Times anchor to a reference Monday; rolling past midnight
			// advances the derived weekday.
			dow := tod.DayShift % 7
			ev.Hour, ev.Minute, ev.DayOfWeek = &hour, &minute, &dow
		} else {
			stats.MalformedArrivals++
		}

		events = append(events, ev)
	}

	stats.Events = len(events)
	return events, stats, nil
}
