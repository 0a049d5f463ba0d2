package gtfs

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/transitlab/demandcast/internal/tabular"
)

// tableSpec ties a GTFS file to the columns the pipeline cannot proceed
// without and the function that folds its rows into the feed.
type tableSpec struct {
	file     string
	required []string
	parse    func(*Feed, *tabular.Table)
}

var tableSpecs = []tableSpec{
	{"routes.txt", []string{"route_id"}, parseRoutes},
	{"stops.txt", []string{"stop_id", "stop_name", "stop_lat", "stop_lon"}, parseStops},
	{"trips.txt", []string{"trip_id", "route_id"}, parseTrips},
	{"stop_times.txt", []string{"trip_id", "stop_id", "arrival_time"}, parseStopTimes},
	{"calendar.txt", []string{"service_id", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}, parseCalendar},
}

// Load reads a feed from a directory of .txt tables or from a .zip
// archive. Every table in the feed is mandatory: a missing file, a
// missing required column, or a table with no data rows is fatal.
func Load(path string) (*Feed, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return LoadZip(path)
	}
	return LoadDir(path)
}

// LoadDir reads a feed from a directory containing the GTFS .txt tables.
func LoadDir(dir string) (*Feed, error) {
	feed := &Feed{}
	for _, spec := range tableSpecs {
		name := strings.TrimSuffix(spec.file, ".txt")
		tbl, err := tabular.ReadFile(name, filepath.Join(dir, spec.file))
		if err != nil {
			return nil, err
		}
		if err := loadTable(feed, spec, tbl); err != nil {
			return nil, err
		}
	}
	return feed, nil
}

// LoadZip reads a feed from a GTFS zip archive.
func LoadZip(path string) (*Feed, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open feed archive %s: %w", path, err)
	}
	defer r.Close()

	byName := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		byName[f.Name] = f
	}

	feed := &Feed{}
	for _, spec := range tableSpecs {
		zf, ok := byName[spec.file]
		if !ok {
			return nil, fmt.Errorf("feed archive %s: missing %s", path, spec.file)
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", spec.file, path, err)
		}
		tbl, err := tabular.Read(strings.TrimSuffix(spec.file, ".txt"), rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if err := loadTable(feed, spec, tbl); err != nil {
			return nil, err
		}
	}
	return feed, nil
}

func loadTable(feed *Feed, spec tableSpec, tbl *tabular.Table) error {
	if err := tbl.Require(spec.required...); err != nil {
		return err
	}
	if tbl.Len() == 0 {
		return &tabular.EmptyTableError{Table: tbl.Name()}
	}
	spec.parse(feed, tbl)
	return nil
}

func parseRoutes(feed *Feed, tbl *tabular.Table) {
	routeID := tbl.Column("route_id")
	shortName := tbl.Column("route_short_name")
	longName := tbl.Column("route_long_name")
	routeType := tbl.Column("route_type")

	for i := 0; i < tbl.Len(); i++ {
		id := routeID.Get(i)
		if id == "" {
			continue
		}
		rt, _ := strconv.Atoi(routeType.Get(i))
		feed.Routes = append(feed.Routes, Route{
			RouteID:   id,
			ShortName: shortName.Get(i),
			LongName:  longName.Get(i),
			Type:      rt,
		})
	}
}

func parseStops(feed *Feed, tbl *tabular.Table) {
	stopID := tbl.Column("stop_id")
	stopName := tbl.Column("stop_name")
	stopLat := tbl.Column("stop_lat")
	stopLon := tbl.Column("stop_lon")

	for i := 0; i < tbl.Len(); i++ {
		id := stopID.Get(i)
		if id == "" {
			continue
		}
		lat, _ := strconv.ParseFloat(stopLat.Get(i), 64)
		lon, _ := strconv.ParseFloat(stopLon.Get(i), 64)
		feed.Stops = append(feed.Stops, Stop{
			StopID: id,
			Name:   stopName.Get(i),
			Lat:    lat,
			Lon:    lon,
		})
	}
}

func parseTrips(feed *Feed, tbl *tabular.Table) {
	tripID := tbl.Column("trip_id")
	routeID := tbl.Column("route_id")
	serviceID := tbl.Column("service_id")
	headsign := tbl.Column("trip_headsign")

	for i := 0; i < tbl.Len(); i++ {
		id := tripID.Get(i)
		if id == "" {
			continue
		}
		feed.Trips = append(feed.Trips, Trip{
			TripID:    id,
			RouteID:   routeID.Get(i),
			ServiceID: serviceID.Get(i),
			Headsign:  headsign.Get(i),
		})
	}
}

func parseStopTimes(feed *Feed, tbl *tabular.Table) {
	tripID := tbl.Column("trip_id")
	stopID := tbl.Column("stop_id")
	arrival := tbl.Column("arrival_time")
	stopSeq := tbl.Column("stop_sequence")

	for i := 0; i < tbl.Len(); i++ {
		trip := tripID.Get(i)
		if trip == "" {
			continue
		}
		seq, _ := strconv.Atoi(stopSeq.Get(i))
		feed.StopTimes = append(feed.StopTimes, StopTime{
			TripID:       trip,
			StopID:       stopID.Get(i),
			StopSequence: seq,
			Arrival:      arrival.Get(i),
		})
	}
}

var weekdayColumns = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func parseCalendar(feed *Feed, tbl *tabular.Table) {
	serviceID := tbl.Column("service_id")
	startDate := tbl.Column("start_date")
	endDate := tbl.Column("end_date")

	var days [7]tabular.Column
	for d, name := range weekdayColumns {
		days[d] = tbl.Column(name)
	}

	for i := 0; i < tbl.Len(); i++ {
		id := serviceID.Get(i)
		if id == "" {
			continue
		}
		entry := CalendarEntry{
			ServiceID: id,
			StartDate: startDate.Get(i),
			EndDate:   endDate.Get(i),
		}
		for d := range days {
			entry.Weekdays[d] = days[d].Get(i) == "1"
		}
		feed.Calendar = append(feed.Calendar, entry)
	}
}
