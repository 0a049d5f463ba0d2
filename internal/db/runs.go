package db

import (
	"context"
	"fmt"
	"time"

	"github.com/transitlab/demandcast/internal/demand"
)

// TrainingRun is one recorded training execution.
type TrainingRun struct {
	RunID         string
	CreatedAt     time.Time
	DatasetPath   string
	RowsTotal     int
	RowsTrain     int
	RowsTest      int
	Trees         int
	MaxDepth      int
	Seed          uint64
	MAE           float64
	RMSE          float64
	ModelPath     string
	SchemaVersion int
}

// RecordTrainingRun stores a run and its ranked feature importances in
// one transaction. Importances are stored in rank order starting at 1.
func (db *DB) RecordTrainingRun(ctx context.Context, run TrainingRun, importances []demand.FeatureImportance) error {
	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_runs (
			run_id, created_at_utc, dataset_path, rows_total, rows_train,
			rows_test, trees, max_depth, seed, mae, rmse, model_path,
			schema_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID, run.CreatedAt.UTC().Format(time.RFC3339), run.DatasetPath,
		run.RowsTotal, run.RowsTrain, run.RowsTest, run.Trees, run.MaxDepth,
		int64(run.Seed), run.MAE, run.RMSE, run.ModelPath, run.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert training run %s: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_importances (run_id, rank, feature, importance)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare importance statement: %w", err)
	}
	defer stmt.Close()

	for i, imp := range importances {
		if _, err := stmt.ExecContext(ctx, run.RunID, i+1, imp.Feature, imp.Score); err != nil {
			return fmt.Errorf("failed to insert importance %s: %w", imp.Feature, err)
		}
	}

	return tx.Commit()
}

// ListTrainingRuns returns the most recent runs, newest first.
func (db *DB) ListTrainingRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, created_at_utc, dataset_path, rows_total, rows_train,
			rows_test, trees, max_depth, seed, mae, rmse, model_path,
			schema_version
		FROM training_runs
		ORDER BY created_at_utc DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var run TrainingRun
		var createdAt string
		var seed int64
		if err := rows.Scan(
			&run.RunID, &createdAt, &run.DatasetPath, &run.RowsTotal,
			&run.RowsTrain, &run.RowsTest, &run.Trees, &run.MaxDepth,
			&seed, &run.MAE, &run.RMSE, &run.ModelPath, &run.SchemaVersion,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		run.Seed = uint64(seed)
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunImportances returns the stored importance rows for a run in rank
// order.
func (db *DB) RunImportances(ctx context.Context, runID string) ([]demand.FeatureImportance, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT feature, importance FROM run_importances
		WHERE run_id = ?
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query importances for %s: %w", runID, err)
	}
	defer rows.Close()

	var imps []demand.FeatureImportance
	for rows.Next() {
		var imp demand.FeatureImportance
		if err := rows.Scan(&imp.Feature, &imp.Score); err != nil {
			return nil, fmt.Errorf("failed to scan importance: %w", err)
		}
		imps = append(imps, imp)
	}
	return imps, rows.Err()
}
