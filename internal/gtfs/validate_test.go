package gtfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate_CleanFeed(t *testing.T) {
	feed, err := Load(writeFeedDir(t, nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := Validate(feed)
	if !s.Clean() {
		t.Errorf("fixture feed should have no referential gaps: %+v", s)
	}
	if s.Routes != 2 || s.Stops != 2 || s.Trips != 2 || s.StopTimes != 3 || s.Services != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if diff := cmp.Diff([]int{1}, s.RouteTypes); diff != "" {
		t.Errorf("route types mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ReferentialGaps(t *testing.T) {
	feed := &Feed{
		Routes: []Route{{RouteID: "L1", Type: 1}},
		Stops:  []Stop{{StopID: "s1", Name: "Catalunya"}},
		Trips: []Trip{
			{TripID: "t1", RouteID: "L1", ServiceID: "wk"},
			{TripID: "t2", RouteID: "ghost", ServiceID: "holiday"},
			{TripID: "t3", RouteID: "L1"}, // no service_id, not counted as a gap
		},
		StopTimes: []StopTime{
			{TripID: "t1", StopID: "s1", Arrival: "07:00:00"},
			{TripID: "missing", StopID: "s1", Arrival: "08:00:00"},
			{TripID: "t1", StopID: "nowhere", Arrival: "09:00:00"},
		},
		Calendar: []CalendarEntry{{ServiceID: "wk"}},
	}

	s := Validate(feed)
	if s.Clean() {
		t.Error("feed with dangling references should not be clean")
	}
	if s.TripsUnknownRoute != 1 {
		t.Errorf("TripsUnknownRoute = %d, want 1", s.TripsUnknownRoute)
	}
	if s.TripsUnknownService != 1 {
		t.Errorf("TripsUnknownService = %d, want 1", s.TripsUnknownService)
	}
	if s.StopTimesUnknownTrip != 1 {
		t.Errorf("StopTimesUnknownTrip = %d, want 1", s.StopTimesUnknownTrip)
	}
	if s.StopTimesUnknownStop != 1 {
		t.Errorf("StopTimesUnknownStop = %d, want 1", s.StopTimesUnknownStop)
	}
}
