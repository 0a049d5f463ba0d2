package demand

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// SchemaVersion identifies the encoding layout. Bump on any change to
// column ordering or naming so stale artifacts are rejected on load.
const SchemaVersion = 1

// DriftPolicy controls rows whose route or stop was not seen when the
// schema was fit.
type DriftPolicy string

const (
	// DriftError fails encoding, naming every unseen value.
	DriftError DriftPolicy = "error"
	// DriftDrop skips offending rows and counts them.
	DriftDrop DriftPolicy = "drop"
	// DriftZero keeps offending rows with all-zero indicator columns.
	DriftZero DriftPolicy = "zero"
)

// Valid reports whether p is one of the defined policies.
func (p DriftPolicy) Valid() bool {
	return p == DriftError || p == DriftDrop || p == DriftZero
}

// UnseenCategoriesError reports category values present in the data but
// absent from the schema, keyed by column name.
type UnseenCategoriesError struct {
	Unseen map[string][]string
}

func (e *UnseenCategoriesError) Error() string {
	cols := make([]string, 0, len(e.Unseen))
	for c := range e.Unseen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s: %s", c, strings.Join(e.Unseen[c], ", "))
	}
	return "encoding drift, values unseen at fit time: " + strings.Join(parts, "; ")
}

// Schema is the fixed category-to-column mapping computed once at fit
// time and persisted with the model. Matrix layout: hour, weekday, one
// indicator column per route (sorted), one per stop (sorted).
type Schema struct {
	Version int
	Routes  []string
	Stops   []string

	routeIdx map[string]int
	stopIdx  map[string]int
}

// FitSchema derives a schema from the categories present in records.
func FitSchema(records []Record) *Schema {
	routes := make(map[string]bool)
	stops := make(map[string]bool)
	for _, r := range records {
		routes[r.RouteID] = true
		stops[r.StopID] = true
	}
	s := &Schema{Version: SchemaVersion}
	for r := range routes {
		s.Routes = append(s.Routes, r)
	}
	for st := range stops {
		s.Stops = append(s.Stops, st)
	}
	sort.Strings(s.Routes)
	sort.Strings(s.Stops)
	s.buildIndex()
	return s
}

// buildIndex rebuilds the lookup maps; gob only round-trips the exported
// slices, so a loaded schema indexes lazily.
func (s *Schema) buildIndex() {
	s.routeIdx = make(map[string]int, len(s.Routes))
	for i, r := range s.Routes {
		s.routeIdx[r] = i
	}
	s.stopIdx = make(map[string]int, len(s.Stops))
	for i, st := range s.Stops {
		s.stopIdx[st] = i
	}
}

// NumColumns returns the encoded matrix width.
func (s *Schema) NumColumns() int {
	return 2 + len(s.Routes) + len(s.Stops)
}

// ColumnNames returns feature names in matrix column order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, 0, s.NumColumns())
	names = append(names, "hour", "weekday")
	for _, r := range s.Routes {
		names = append(names, "route_id_"+r)
	}
	for _, st := range s.Stops {
		names = append(names, "stop_id_"+st)
	}
	return names
}

// EncodeStats reports how drift handling affected an encode call. Kept
// maps encoded matrix rows back to indices in the input records.
type EncodeStats struct {
	Kept         []int
	DroppedDrift int
	ZeroedDrift  int
}

// Encode builds the feature matrix (and labels, in matrix row order) for
// records under the schema. Unseen routes or stops follow the drift
// policy; under DriftError the error is *UnseenCategoriesError and no
// matrix is returned.
func (s *Schema) Encode(records []Record, policy DriftPolicy) (*mat.Dense, []float64, EncodeStats, error) {
	if !policy.Valid() {
		return nil, nil, EncodeStats{}, fmt.Errorf("unknown drift policy %q", policy)
	}
	if s.routeIdx == nil || s.stopIdx == nil {
		s.buildIndex()
	}

	if policy == DriftError {
		if err := s.checkDrift(records); err != nil {
			return nil, nil, EncodeStats{}, err
		}
	}

	stats := EncodeStats{Kept: make([]int, 0, len(records))}
	for i, r := range records {
		_, routeOK := s.routeIdx[r.RouteID]
		_, stopOK := s.stopIdx[r.StopID]
		if !routeOK || !stopOK {
			if policy == DriftDrop {
				stats.DroppedDrift++
				continue
			}
			stats.ZeroedDrift++
		}
		stats.Kept = append(stats.Kept, i)
	}
	if len(stats.Kept) == 0 {
		return nil, nil, stats, fmt.Errorf("no encodable rows (out of %d)", len(records))
	}

	x := mat.NewDense(len(stats.Kept), s.NumColumns(), nil)
	y := make([]float64, len(stats.Kept))
	for row, i := range stats.Kept {
		r := records[i]
		x.Set(row, 0, float64(r.Hour))
		x.Set(row, 1, float64(r.Weekday))
		if j, ok := s.routeIdx[r.RouteID]; ok {
			x.Set(row, 2+j, 1)
		}
		if j, ok := s.stopIdx[r.StopID]; ok {
			x.Set(row, 2+len(s.Routes)+j, 1)
		}
		y[row] = r.PassengerCount
	}
	return x, y, stats, nil
}

func (s *Schema) checkDrift(records []Record) error {
	unseenRoutes := make(map[string]bool)
	unseenStops := make(map[string]bool)
	for _, r := range records {
		if _, ok := s.routeIdx[r.RouteID]; !ok {
			unseenRoutes[r.RouteID] = true
		}
		if _, ok := s.stopIdx[r.StopID]; !ok {
			unseenStops[r.StopID] = true
		}
	}
	if len(unseenRoutes) == 0 && len(unseenStops) == 0 {
		return nil
	}
	e := &UnseenCategoriesError{Unseen: make(map[string][]string)}
	if len(unseenRoutes) > 0 {
		e.Unseen["route_id"] = sortedKeys(unseenRoutes)
	}
	if len(unseenStops) > 0 {
		e.Unseen["stop_id"] = sortedKeys(unseenStops)
	}
	return e
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
