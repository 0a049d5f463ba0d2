package gtfs

import "sort"

// Summary describes a loaded feed: table sizes and cross-table
// referential gaps. Gaps are diagnostic; the join stage decides
// separately whether unmatched rows drop or fail the run.
type Summary struct {
	Routes    int
	Stops     int
	Trips     int
	StopTimes int
	Services  int

	// RouteTypes lists the distinct route_type values present, ascending.
	RouteTypes []int

	TripsUnknownRoute    int
	TripsUnknownService  int
	StopTimesUnknownTrip int
	StopTimesUnknownStop int
}

// Clean reports whether the feed has no referential gaps.
func (s Summary) Clean() bool {
	return s.TripsUnknownRoute == 0 &&
		s.TripsUnknownService == 0 &&
		s.StopTimesUnknownTrip == 0 &&
		s.StopTimesUnknownStop == 0
}

// Validate computes a feed summary. Service references are only checked
// for trips that carry a service_id, since the column is optional input.
func Validate(feed *Feed) Summary {
	s := Summary{
		Routes:    len(feed.Routes),
		Stops:     len(feed.Stops),
		Trips:     len(feed.Trips),
		StopTimes: len(feed.StopTimes),
		Services:  len(feed.Calendar),
	}

	routeIDs := make(map[string]bool, len(feed.Routes))
	types := make(map[int]bool)
	for _, r := range feed.Routes {
		routeIDs[r.RouteID] = true
		types[r.Type] = true
	}
	for t := range types {
		s.RouteTypes = append(s.RouteTypes, t)
	}
	sort.Ints(s.RouteTypes)

	stopIDs := make(map[string]bool, len(feed.Stops))
	for _, st := range feed.Stops {
		stopIDs[st.StopID] = true
	}

	serviceIDs := make(map[string]bool, len(feed.Calendar))
	for _, c := range feed.Calendar {
		serviceIDs[c.ServiceID] = true
	}

	tripIDs := make(map[string]bool, len(feed.Trips))
	for _, t := range feed.Trips {
		tripIDs[t.TripID] = true
		if !routeIDs[t.RouteID] {
			s.TripsUnknownRoute++
		}
		if t.ServiceID != "" && !serviceIDs[t.ServiceID] {
			s.TripsUnknownService++
		}
	}

	for _, st := range feed.StopTimes {
		if !tripIDs[st.TripID] {
			s.StopTimesUnknownTrip++
		}
		if !stopIDs[st.StopID] {
			s.StopTimesUnknownStop++
		}
	}

	return s
}
