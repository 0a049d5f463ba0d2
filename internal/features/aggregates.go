package features

import "sort"

// Aggregate views are diagnostic report tables, not model inputs. Each
// one is a deterministic group-count-sort over the event table; ties keep
// the order groups first appear in the events, so results are stable for
// a given feed.

// StopCount is a (stop, visit count) report row.
type StopCount struct {
	StopID   string
	StopName string
	Count    int
}

// BusiestStops counts visits per stop during the given hour, most visited
// first. Events without a derived hour are excluded.
func BusiestStops(events []StopEvent, hour int) []StopCount {
	idx := make(map[string]int)
	var counts []StopCount
	for _, ev := range events {
		if ev.Hour == nil || *ev.Hour != hour {
			continue
		}
		i, ok := idx[ev.StopID]
		if !ok {
			i = len(counts)
			idx[ev.StopID] = i
			counts = append(counts, StopCount{StopID: ev.StopID, StopName: ev.StopName})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// RouteTripCount is a (route, distinct trip count) report row.
type RouteTripCount struct {
	RouteID string
	Trips   int
}

// RouteTripCounts counts distinct trips per route, busiest route first.
// A trip visiting many stops still counts once.
func RouteTripCounts(events []StopEvent) []RouteTripCount {
	idx := make(map[string]int)
	seen := make(map[string]map[string]bool)
	var counts []RouteTripCount
	for _, ev := range events {
		i, ok := idx[ev.RouteID]
		if !ok {
			i = len(counts)
			idx[ev.RouteID] = i
			counts = append(counts, RouteTripCount{RouteID: ev.RouteID})
			seen[ev.RouteID] = make(map[string]bool)
		}
		if !seen[ev.RouteID][ev.TripID] {
			seen[ev.RouteID][ev.TripID] = true
			counts[i].Trips++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Trips > counts[j].Trips
	})
	return counts
}

// StopRouteDensity is a (stop, distinct route count) report row. Low
// density flags stops served by few routes, a proxy for underserved areas.
type StopRouteDensity struct {
	StopID   string
	StopName string
	Routes   int
}

// LowestRouteDensity counts distinct routes per stop, fewest routes first.
func LowestRouteDensity(events []StopEvent) []StopRouteDensity {
	idx := make(map[string]int)
	seen := make(map[string]map[string]bool)
	var counts []StopRouteDensity
	for _, ev := range events {
		i, ok := idx[ev.StopID]
		if !ok {
			i = len(counts)
			idx[ev.StopID] = i
			counts = append(counts, StopRouteDensity{StopID: ev.StopID, StopName: ev.StopName})
			seen[ev.StopID] = make(map[string]bool)
		}
		if !seen[ev.StopID][ev.RouteID] {
			seen[ev.StopID][ev.RouteID] = true
			counts[i].Routes++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Routes < counts[j].Routes
	})
	return counts
}
