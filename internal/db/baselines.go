package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/transitlab/demandcast/internal/demand"
)

// DemandBaseline is the running passenger-count statistics for one
// (hour, day-of-week) bucket, accumulated across training runs.
type DemandBaseline struct {
	Hour        int
	DayOfWeek   int
	Mean        float64
	StdDev      float64
	SampleCount int64
}

// UpdateDemandBaselines folds labeled records into the per-bucket running
// statistics using Welford's algorithm, resuming from stored state.
func (db *DB) UpdateDemandBaselines(ctx context.Context, records []demand.Record) error {
	if len(records) == 0 {
		return nil
	}

	type bucket struct{ hour, dow int }
	byBucket := make(map[bucket][]float64)
	for _, r := range records {
		b := bucket{r.Hour, r.Weekday}
		byBucket[b] = append(byBucket[b], r.PassengerCount)
	}

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for b, counts := range byBucket {
		var count int64
		var mean, m2 float64

		err := tx.QueryRowContext(ctx, `
			SELECT sample_count, passenger_mean, passenger_m2
			FROM demand_baselines
			WHERE hour = ? AND day_of_week = ?
		`, b.hour, b.dow).Scan(&count, &mean, &m2)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read baseline for hour %d dow %d: %w", b.hour, b.dow, err)
		}

		w := demand.WelfordState{Count: count, Mean: mean, M2: m2}
		for _, c := range counts {
			w.Update(c)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO demand_baselines (hour, day_of_week, passenger_mean,
				passenger_stddev, passenger_m2, sample_count, updated_at_utc)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (hour, day_of_week) DO UPDATE SET
				passenger_mean = excluded.passenger_mean,
				passenger_stddev = excluded.passenger_stddev,
				passenger_m2 = excluded.passenger_m2,
				sample_count = excluded.sample_count,
				updated_at_utc = excluded.updated_at_utc
		`, b.hour, b.dow, w.Mean, w.StdDev(), w.M2, w.Count, now)
		if err != nil {
			return fmt.Errorf("failed to upsert baseline for hour %d dow %d: %w", b.hour, b.dow, err)
		}
	}

	return tx.Commit()
}

// GetDemandBaseline returns the stored statistics for one bucket, or nil
// when the bucket has never been observed.
func (db *DB) GetDemandBaseline(ctx context.Context, hour, dayOfWeek int) (*DemandBaseline, error) {
	var b DemandBaseline
	err := db.conn.QueryRowContext(ctx, `
		SELECT hour, day_of_week, passenger_mean, passenger_stddev, sample_count
		FROM demand_baselines
		WHERE hour = ? AND day_of_week = ?
	`, hour, dayOfWeek).Scan(&b.Hour, &b.DayOfWeek, &b.Mean, &b.StdDev, &b.SampleCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
