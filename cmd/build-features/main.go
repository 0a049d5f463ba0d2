package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/transitlab/demandcast/internal/config"
	"github.com/transitlab/demandcast/internal/db"
	"github.com/transitlab/demandcast/internal/features"
	"github.com/transitlab/demandcast/internal/gtfs"
)

// Report hours for the busiest-stop tables: morning and evening peak.
const (
	morningPeakHour = 7
	eveningPeakHour = 17
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gtfsPath := flag.String("gtfs", cfg.GTFSPath, "GTFS feed directory or zip archive")
	outPath := flag.String("out", cfg.EventsCSV, "Output path for the enriched event table")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path (empty to skip persistence)")
	pastMidnight := flag.String("past-midnight", cfg.PastMidnight, "Arrival times past 24:00: rollover or null")
	joinPolicy := flag.String("join", cfg.JoinPolicy, "Unmatched join rows: drop or error")
	topN := flag.Int("top", cfg.TopN, "Rows per report table")
	flag.Parse()

	log.Printf("Loading GTFS feed from %s...", *gtfsPath)
	feed, err := gtfs.Load(*gtfsPath)
	if err != nil {
		log.Fatalf("Failed to load GTFS feed: %v", err)
	}

	summary := gtfs.Validate(feed)
	log.Printf("  Parsed: %d routes, %d stops, %d trips, %d stop times, %d services",
		summary.Routes, summary.Stops, summary.Trips, summary.StopTimes, summary.Services)
	log.Printf("  Route types present: %v", summary.RouteTypes)
	if !summary.Clean() {
		log.Printf("WARNING: referential gaps: %d trips with unknown route, %d trips with unknown service, %d stop times with unknown trip, %d stop times with unknown stop",
			summary.TripsUnknownRoute, summary.TripsUnknownService,
			summary.StopTimesUnknownTrip, summary.StopTimesUnknownStop)
	}

	events, stats, err := features.Build(feed, features.Options{
		PastMidnight: gtfs.PastMidnightPolicy(*pastMidnight),
		Join:         features.JoinPolicy(*joinPolicy),
	})
	if err != nil {
		log.Fatalf("Failed to build event table: %v", err)
	}
	log.Printf("Built %d events (dropped: %d no trip, %d no route, %d no stop; %d malformed arrival times)",
		stats.Events, stats.DroppedNoTrip, stats.DroppedNoRoute, stats.DroppedNoStop,
		stats.MalformedArrivals)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := features.WriteCSV(*outPath, events); err != nil {
		log.Fatalf("Failed to write event table: %v", err)
	}
	log.Printf("Wrote enriched event table to %s", *outPath)

	if *dbPath != "" {
		persistEvents(*dbPath, events)
	}

	printStopTable(fmt.Sprintf("Busiest stops at %02d:00", morningPeakHour),
		features.BusiestStops(events, morningPeakHour), *topN)
	printStopTable(fmt.Sprintf("Busiest stops at %02d:00", eveningPeakHour),
		features.BusiestStops(events, eveningPeakHour), *topN)
	printRouteTable("Routes by trip count", features.RouteTripCounts(events), *topN)
	printDensityTable("Stops with fewest routes", features.LowestRouteDensity(events), *topN)

	log.Println("SUCCESS: feature build complete")
}

func persistEvents(path string, events []features.StopEvent) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	database, err := db.Connect(path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	if err := database.ReplaceStopEvents(ctx, time.Now(), events); err != nil {
		log.Fatalf("Failed to persist events: %v", err)
	}
	log.Printf("Persisted %d events to %s", len(events), path)
}

var tableTitle = color.New(color.FgCyan, color.Bold)

func printStopTable(title string, rows []features.StopCount, n int) {
	tableTitle.Printf("\n%s\n", title)
	if len(rows) > n {
		rows = rows[:n]
	}
	if len(rows) == 0 {
		fmt.Println("  (no data)")
		return
	}
	for i, r := range rows {
		fmt.Printf("%3d. %-16s %-32s %6d visits\n", i+1, r.StopID, r.StopName, r.Count)
	}
}

func printRouteTable(title string, rows []features.RouteTripCount, n int) {
	tableTitle.Printf("\n%s\n", title)
	if len(rows) > n {
		rows = rows[:n]
	}
	if len(rows) == 0 {
		fmt.Println("  (no data)")
		return
	}
	for i, r := range rows {
		fmt.Printf("%3d. %-16s %6d trips\n", i+1, r.RouteID, r.Trips)
	}
}

func printDensityTable(title string, rows []features.StopRouteDensity, n int) {
	tableTitle.Printf("\n%s\n", title)
	if len(rows) > n {
		rows = rows[:n]
	}
	if len(rows) == 0 {
		fmt.Println("  (no data)")
		return
	}
	for i, r := range rows {
		fmt.Printf("%3d. %-16s %-32s %6d routes\n", i+1, r.StopID, r.StopName, r.Routes)
	}
}
