package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int { return &v }

func eventAt(route, trip, stop, stopName string, hour int) StopEvent {
	return StopEvent{RouteID: route, TripID: trip, StopID: stop, StopName: stopName, Hour: intPtr(hour)}
}

func TestBusiestStops(t *testing.T) {
	events := []StopEvent{
		eventAt("L1", "t1", "s1", "Catalunya", 7),
		eventAt("L1", "t2", "s2", "Universitat", 7),
		eventAt("L1", "t3", "s2", "Universitat", 7),
		eventAt("L1", "t4", "s3", "Urquinaona", 7),
		eventAt("L1", "t5", "s1", "Catalunya", 17),
		{RouteID: "L1", TripID: "t6", StopID: "s1", StopName: "Catalunya"}, // nil hour, excluded
	}

	got := BusiestStops(events, 7)
	// s1 and s3 tie at one visit; s1 appeared first so it stays first.
	want := []StopCount{
		{StopID: "s2", StopName: "Universitat", Count: 2},
		{StopID: "s1", StopName: "Catalunya", Count: 1},
		{StopID: "s3", StopName: "Urquinaona", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BusiestStops mismatch (-want +got):\n%s", diff)
	}

	if got := BusiestStops(events, 3); len(got) != 0 {
		t.Errorf("expected no rows for an hour with no events, got %v", got)
	}
}

func TestRouteTripCounts(t *testing.T) {
	// Trip t1 visits two stops but counts once for L1.
	events := []StopEvent{
		{RouteID: "L1", TripID: "t1", StopID: "s1"},
		{RouteID: "L1", TripID: "t1", StopID: "s2"},
		{RouteID: "L2", TripID: "t2", StopID: "s1"},
		{RouteID: "L2", TripID: "t3", StopID: "s1"},
		{RouteID: "L3", TripID: "t4", StopID: "s2"},
	}

	got := RouteTripCounts(events)
	want := []RouteTripCount{
		{RouteID: "L2", Trips: 2},
		{RouteID: "L1", Trips: 1},
		{RouteID: "L3", Trips: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RouteTripCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestLowestRouteDensity(t *testing.T) {
	events := []StopEvent{
		{RouteID: "L1", TripID: "t1", StopID: "s1", StopName: "Catalunya"},
		{RouteID: "L2", TripID: "t2", StopID: "s1", StopName: "Catalunya"},
		{RouteID: "L1", TripID: "t1", StopID: "s2", StopName: "Universitat"},
		{RouteID: "L1", TripID: "t3", StopID: "s2", StopName: "Universitat"},
	}

	got := LowestRouteDensity(events)
	want := []StopRouteDensity{
		{StopID: "s2", StopName: "Universitat", Routes: 1},
		{StopID: "s1", StopName: "Catalunya", Routes: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LowestRouteDensity mismatch (-want +got):\n%s", diff)
	}
}
