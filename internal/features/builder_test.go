package features

import (
	"strings"
	"testing"

	"github.com/transitlab/demandcast/internal/gtfs"
)

// testFeed has one dangling stop_time per join edge plus two clean rows,
// so every drop counter can be checked from a single build.
func testFeed() *gtfs.Feed {
	return &gtfs.Feed{
		Routes: []gtfs.Route{
			{RouteID: "L1", ShortName: "L1", LongName: "Hospital de Bellvitge - Fondo", Type: 1},
			{RouteID: "L2", ShortName: "L2", LongName: "Paral.lel - Badalona", Type: 1},
		},
		Stops: []gtfs.Stop{
			{StopID: "s1", Name: "Catalunya", Lat: 41.3870, Lon: 2.1701},
			{StopID: "s2", Name: "Universitat", Lat: 41.3865, Lon: 2.1639},
		},
		Trips: []gtfs.Trip{
			{TripID: "t1", RouteID: "L1", ServiceID: "wk"},
			{TripID: "t2", RouteID: "L2", ServiceID: "wk"},
			{TripID: "t3", RouteID: "ghost-route", ServiceID: "wk"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "t1", StopID: "s1", StopSequence: 1, Arrival: "07:15:00"},
			{TripID: "ghost-trip", StopID: "s1", StopSequence: 1, Arrival: "07:20:00"},
			{TripID: "t3", StopID: "s1", StopSequence: 1, Arrival: "07:25:00"},
			{TripID: "t1", StopID: "ghost-stop", StopSequence: 2, Arrival: "07:30:00"},
			{TripID: "t2", StopID: "s2", StopSequence: 1, Arrival: "17:05:00"},
		},
	}
}

func TestBuild_InnerJoin(t *testing.T) {
	events, stats, err := Build(testFeed(), Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if stats.Events != 2 || len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if stats.DroppedNoTrip != 1 {
		t.Errorf("DroppedNoTrip = %d, want 1", stats.DroppedNoTrip)
	}
	if stats.DroppedNoRoute != 1 {
		t.Errorf("DroppedNoRoute = %d, want 1", stats.DroppedNoRoute)
	}
	if stats.DroppedNoStop != 1 {
		t.Errorf("DroppedNoStop = %d, want 1", stats.DroppedNoStop)
	}
	if stats.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", stats.Dropped())
	}

	ev := events[0]
	if ev.TripID != "t1" || ev.RouteID != "L1" || ev.StopID != "s1" {
		t.Errorf("unexpected join keys: %+v", ev)
	}
	if ev.RouteShortName != "L1" || ev.RouteLongName != "Hospital de Bellvitge - Fondo" || ev.RouteType != 1 {
		t.Errorf("route attributes not joined: %+v", ev)
	}
	if ev.StopName != "Catalunya" || ev.StopLat != 41.3870 || ev.StopLon != 2.1701 {
		t.Errorf("stop attributes not joined: %+v", ev)
	}
	if ev.Hour == nil || *ev.Hour != 7 {
		t.Errorf("Hour = %v, want 7", ev.Hour)
	}
	if ev.Minute == nil || *ev.Minute != 15 {
		t.Errorf("Minute = %v, want 15", ev.Minute)
	}
	if ev.DayOfWeek == nil || *ev.DayOfWeek != 0 {
		t.Errorf("DayOfWeek = %v, want 0", ev.DayOfWeek)
	}
}

func TestBuild_JoinErrorPolicy(t *testing.T) {
	_, _, err := Build(testFeed(), Options{Join: JoinError})
	if err == nil {
		t.Fatal("expected the error join policy to fail on a dangling reference")
	}
	if !strings.Contains(err.Error(), `trip "ghost-trip" not found`) {
		t.Errorf("error should name the dangling trip: %v", err)
	}
}

func TestBuild_MalformedArrivalKeepsRow(t *testing.T) {
	feed := testFeed()
	feed.StopTimes = []gtfs.StopTime{
		{TripID: "t1", StopID: "s1", StopSequence: 1, Arrival: "not-a-time"},
	}

	events, stats, err := Build(feed, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (malformed time keeps the row)", len(events))
	}
	if stats.MalformedArrivals != 1 {
		t.Errorf("MalformedArrivals = %d, want 1", stats.MalformedArrivals)
	}
	ev := events[0]
	if ev.Hour != nil || ev.Minute != nil || ev.DayOfWeek != nil {
		t.Errorf("derived fields should be nil: %+v", ev)
	}
}

func TestBuild_PastMidnightRollover(t *testing.T) {
	feed := testFeed()
	feed.StopTimes = []gtfs.StopTime{
		{TripID: "t1", StopID: "s1", StopSequence: 1, Arrival: "25:30:00"},
	}

	events, _, err := Build(feed, Options{PastMidnight: gtfs.PastMidnightRollover})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ev := events[0]
	if ev.Hour == nil || *ev.Hour != 1 {
		t.Errorf("Hour = %v, want 1", ev.Hour)
	}
	if ev.DayOfWeek == nil || *ev.DayOfWeek != 1 {
		t.Errorf("DayOfWeek = %v, want 1 (rolled into the next day)", ev.DayOfWeek)
	}
}

func TestBuild_PastMidnightNull(t *testing.T) {
	feed := testFeed()
	feed.StopTimes = []gtfs.StopTime{
		{TripID: "t1", StopID: "s1", StopSequence: 1, Arrival: "25:30:00"},
	}

	events, stats, err := Build(feed, Options{PastMidnight: gtfs.PastMidnightNull})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if stats.MalformedArrivals != 1 {
		t.Errorf("MalformedArrivals = %d, want 1", stats.MalformedArrivals)
	}
	ev := events[0]
	if ev.Hour != nil || ev.DayOfWeek != nil {
		t.Errorf("derived fields should be nil under the null policy: %+v", ev)
	}
}

func TestBuild_UnknownPolicies(t *testing.T) {
	if _, _, err := Build(testFeed(), Options{Join: "keep"}); err == nil {
		t.Error("expected an error for an unknown join policy")
	}
	if _, _, err := Build(testFeed(), Options{PastMidnight: "truncate"}); err == nil {
		t.Error("expected an error for an unknown past-midnight policy")
	}
}
