package main

// Generates a synthetic per-stop, per-hour ridership table from a GTFS
// feed so the trainer can be exercised before real counts exist.

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/transitlab/demandcast/internal/config"
	"github.com/transitlab/demandcast/internal/features"
	"github.com/transitlab/demandcast/internal/gtfs"
)

const maxPassengers = 100

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gtfsPath := flag.String("gtfs", cfg.GTFSPath, "GTFS feed directory or zip archive")
	outPath := flag.String("out", cfg.DemandCSV, "Output path for the synthetic demand table")
	seed := flag.Uint64("seed", 42, "Random seed")
	pastMidnight := flag.String("past-midnight", cfg.PastMidnight, "Arrival times past 24:00: rollover or null")
	flag.Parse()

	log.Printf("Loading GTFS feed from %s...", *gtfsPath)
	feed, err := gtfs.Load(*gtfsPath)
	if err != nil {
		log.Fatalf("Failed to load GTFS feed: %v", err)
	}

	events, stats, err := features.Build(feed, features.Options{
		PastMidnight: gtfs.PastMidnightPolicy(*pastMidnight),
		Join:         features.JoinDrop,
	})
	if err != nil {
		log.Fatalf("Failed to build event table: %v", err)
	}
	log.Printf("  Built %d events (%d rows dropped, %d malformed arrival times)",
		stats.Events, stats.Dropped(), stats.MalformedArrivals)

	rows := synthesize(feed, events, *seed)
	if len(rows) == 0 {
		log.Fatalf("No (route, stop, hour) combinations to sample; is the feed empty?")
	}

	if err := writeDemand(*outPath, rows); err != nil {
		log.Fatalf("Failed to write demand table: %v", err)
	}
	log.Printf("SUCCESS: wrote %d synthetic demand rows to %s", len(rows), *outPath)
}

type demandRow struct {
	routeID string
	stopID  string
	hour    int
	weekday int
	count   int
}

// synthesize draws one Poisson passenger count per distinct
// (route, stop, hour, weekday) seen in the feed. The weekday set for an
// event comes from its trip's service days, all seven when the service
// is not in calendar.txt.
func synthesize(feed *gtfs.Feed, events []features.StopEvent, seed uint64) []demandRow {
	serviceDays := make(map[string][]int, len(feed.Calendar))
	for _, entry := range feed.Calendar {
		serviceDays[entry.ServiceID] = entry.ActiveWeekdays()
	}
	allDays := []int{0, 1, 2, 3, 4, 5, 6}

	src := rand.NewPCG(seed, seed)
	seen := make(map[string]bool)
	var rows []demandRow
	for _, ev := range events {
		if ev.Hour == nil {
			continue
		}
		days := serviceDays[ev.ServiceID]
		if len(days) == 0 {
			days = allDays
		}
		for _, day := range days {
			key := ev.RouteID + "|" + ev.StopID + "|" + strconv.Itoa(*ev.Hour) + "|" + strconv.Itoa(day)
			if seen[key] {
				continue
			}
			seen[key] = true

			poisson := distuv.Poisson{Lambda: demandRate(*ev.Hour), Src: src}
			count := int(poisson.Rand())
			if count > maxPassengers {
				count = maxPassengers
			}
			rows = append(rows, demandRow{
				routeID: ev.RouteID,
				stopID:  ev.StopID,
				hour:    *ev.Hour,
				weekday: day,
				count:   count,
			})
		}
	}
	return rows
}

// demandRate picks the Poisson rate for an hour: commute peaks are
// busiest, midday moderate, nights quiet.
func demandRate(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9, hour >= 16 && hour <= 18:
		return 35
	case hour >= 10 && hour <= 15:
		return 15
	default:
		return 5
	}
}

func writeDemand(path string, rows []demandRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"route_id", "stop_id", "hour", "weekday", "passenger_count"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		record := []string{
			row.routeID,
			row.stopID,
			strconv.Itoa(row.hour),
			strconv.Itoa(row.weekday),
			strconv.Itoa(row.count),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
