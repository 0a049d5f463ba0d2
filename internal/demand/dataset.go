// Package demand turns demand-labeled observations into encoded feature
// matrices, splits and evaluates them, and owns the persisted model
// artifact with its encoding schema.
package demand

import (
	"strconv"

	"github.com/transitlab/demandcast/internal/tabular"
)

// Record is one demand observation: passengers boarding at a stop on a
// route during one hour of one weekday (Monday=0).
type Record struct {
	RouteID        string
	StopID         string
	Hour           int
	Weekday        int
	PassengerCount float64
}

// LoadStats counts rows skipped while loading a demand table. Skips are
// per-row recoveries, never fatal.
type LoadStats struct {
	Rows      int
	Malformed int
}

// Dataset is a loaded demand table. Labeled is false when the table has
// no passenger_count column, which is allowed for scoring input but not
// for training.
type Dataset struct {
	Records []Record
	Labeled bool
	Stats   LoadStats
}

// LoadCSV reads a demand table. Required columns: route_id, stop_id,
// hour, weekday (day_of_week accepted as an alias). Rows with
// out-of-range hours or weekdays, or malformed counts, are skipped and
// counted.
func LoadCSV(path string) (*Dataset, error) {
	tbl, err := tabular.ReadFile("demand", path)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl)
}

// FromTable builds a dataset from an already-parsed table.
func FromTable(tbl *tabular.Table) (*Dataset, error) {
	weekdayCol := "weekday"
	if !tbl.HasColumn(weekdayCol) && tbl.HasColumn("day_of_week") {
		weekdayCol = "day_of_week"
	}
	if err := tbl.Require("route_id", "stop_id", "hour", weekdayCol); err != nil {
		return nil, err
	}
	if tbl.Len() == 0 {
		return nil, &tabular.EmptyTableError{Table: tbl.Name()}
	}

	routeID := tbl.Column("route_id")
	stopID := tbl.Column("stop_id")
	hour := tbl.Column("hour")
	weekday := tbl.Column(weekdayCol)
	count := tbl.Column("passenger_count")
	labeled := tbl.HasColumn("passenger_count")

	ds := &Dataset{Labeled: labeled}
	for i := 0; i < tbl.Len(); i++ {
		rec := Record{RouteID: routeID.Get(i), StopID: stopID.Get(i)}
		if rec.RouteID == "" || rec.StopID == "" {
			ds.Stats.Malformed++
			continue
		}

		h, err := strconv.Atoi(hour.Get(i))
		if err != nil || h < 0 || h > 23 {
			ds.Stats.Malformed++
			continue
		}
		w, err := strconv.Atoi(weekday.Get(i))
		if err != nil || w < 0 || w > 6 {
			ds.Stats.Malformed++
			continue
		}
		rec.Hour, rec.Weekday = h, w

		if labeled {
			c, err := strconv.Atoi(count.Get(i))
			if err != nil || c < 0 {
				ds.Stats.Malformed++
				continue
			}
			rec.PassengerCount = float64(c)
		}

		ds.Records = append(ds.Records, rec)
	}
	ds.Stats.Rows = len(ds.Records)
	return ds, nil
}

// Labels extracts the passenger counts in record order.
func (ds *Dataset) Labels() []float64 {
	y := make([]float64, len(ds.Records))
	for i, r := range ds.Records {
		y[i] = r.PassengerCount
	}
	return y
}
