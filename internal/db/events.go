package db

import (
	"context"
	"fmt"
	"time"

	"github.com/transitlab/demandcast/internal/features"
)

// ReplaceStopEvents swaps the stored event table for a fresh build. The
// table is regenerated per feed version, so the previous rows are cleared
// in the same transaction that writes the new ones.
func (db *DB) ReplaceStopEvents(ctx context.Context, builtAt time.Time, events []features.StopEvent) error {
	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stop_events"); err != nil {
		return fmt.Errorf("failed to clear stop events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stop_events (
			trip_id, route_id, service_id, stop_id, stop_sequence,
			arrival_time, route_short_name, route_long_name, route_type,
			stop_name, stop_lat, stop_lon, hour, minute, day_of_week,
			built_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event statement: %w", err)
	}
	defer stmt.Close()

	builtAtStr := builtAt.UTC().Format(time.RFC3339)
	for i := range events {
		ev := &events[i]
		_, err := stmt.ExecContext(ctx,
			ev.TripID, ev.RouteID, ev.ServiceID, ev.StopID, ev.StopSequence,
			ev.Arrival, ev.RouteShortName, ev.RouteLongName, ev.RouteType,
			ev.StopName, ev.StopLat, ev.StopLon, ev.Hour, ev.Minute, ev.DayOfWeek,
			builtAtStr,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event for trip %s stop %s: %w", ev.TripID, ev.StopID, err)
		}
	}

	return tx.Commit()
}

// CountStopEvents returns the number of stored events.
func (db *DB) CountStopEvents(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM stop_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stop events: %w", err)
	}
	return count, nil
}
