package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/transitlab/demandcast/internal/config"
	"github.com/transitlab/demandcast/internal/db"
	"github.com/transitlab/demandcast/internal/demand"
	"github.com/transitlab/demandcast/internal/tabular"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dataPath := flag.String("data", cfg.DemandCSV, "Demand training table (CSV)")
	modelPath := flag.String("model", cfg.ModelPath, "Output path for the model artifact")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path (empty to skip run history)")
	trainCfg := flag.String("config", "", "Optional YAML training config")
	topN := flag.Int("top", cfg.TopN, "Rows in the feature importance table")
	flag.Parse()

	tc, err := config.LoadTraining(*trainCfg)
	if err != nil {
		log.Fatalf("Invalid training config: %v", err)
	}

	log.Printf("Loading demand table from %s...", *dataPath)
	ds, err := demand.LoadCSV(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load demand table: %v", err)
	}
	if !ds.Labeled {
		err := &tabular.MissingColumnsError{Table: "demand", Columns: []string{"passenger_count"}}
		log.Fatalf("Failed to load demand table: %v", err)
	}
	if ds.Stats.Malformed > 0 {
		log.Printf("  Skipped %d malformed rows", ds.Stats.Malformed)
	}
	log.Printf("  Loaded %d labeled rows", len(ds.Records))

	log.Printf("Training forest: %d trees, max depth %d, seed %d, %.0f%% held out",
		tc.Trees, tc.MaxDepth, tc.Seed, tc.TestFraction*100)
	result, err := demand.Train(ds.Records, demand.TrainConfig{
		TestFraction: tc.TestFraction,
		Seed:         tc.Seed,
		Trees:        tc.Trees,
		MaxDepth:     tc.MaxDepth,
		MinLeaf:      tc.MinLeaf,
		Workers:      tc.Workers,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	log.Printf("  Trained on %d rows, evaluated on %d held-out rows", result.TrainRows, result.TestRows)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0755); err != nil {
		log.Fatalf("Failed to create model directory: %v", err)
	}
	if err := result.Model.Save(*modelPath); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}
	log.Printf("Saved model artifact to %s (run %s)", *modelPath, result.Model.RunID)

	printMetrics(result)
	importances := result.Model.RankedImportances()
	printImportances(importances, *topN)

	if *dbPath != "" {
		recordRun(*dbPath, *dataPath, *modelPath, ds, result, importances, *topN)
	}

	log.Printf("SUCCESS: training run %s complete", result.Model.RunID)
}

func printMetrics(result *demand.TrainResult) {
	header := color.New(color.FgGreen, color.Bold)
	header.Println("\nHeld-out evaluation")
	fmt.Printf("  MAE:  %.2f\n", result.Metrics.MAE)
	fmt.Printf("  RMSE: %.2f\n", result.Metrics.RMSE)
}

func printImportances(importances []demand.FeatureImportance, n int) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\nTop feature importances")
	if len(importances) > n {
		importances = importances[:n]
	}
	if len(importances) == 0 {
		fmt.Println("  (no data)")
		return
	}
	for i, imp := range importances {
		fmt.Printf("%3d. %-40s %.4f\n", i+1, imp.Feature, imp.Score)
	}
}

func recordRun(path, dataPath, modelPath string, ds *demand.Dataset, result *demand.TrainResult, importances []demand.FeatureImportance, topN int) {
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

	if len(importances) > topN {
		importances = importances[:topN]
	}
	run := db.TrainingRun{
		RunID:         result.Model.RunID,
		CreatedAt:     result.Model.CreatedAt,
		DatasetPath:   dataPath,
		RowsTotal:     len(ds.Records),
		RowsTrain:     result.TrainRows,
		RowsTest:      result.TestRows,
		Trees:         result.Model.Trees,
		MaxDepth:      result.Model.MaxDepth,
		Seed:          result.Model.Seed,
		MAE:           result.Metrics.MAE,
		RMSE:          result.Metrics.RMSE,
		ModelPath:     modelPath,
		SchemaVersion: result.Model.Schema.Version,
	}
	if err := database.RecordTrainingRun(ctx, run, importances); err != nil {
		log.Fatalf("Failed to record training run: %v", err)
	}
	if err := database.UpdateDemandBaselines(ctx, ds.Records); err != nil {
		log.Fatalf("Failed to update demand baselines: %v", err)
	}
	log.Printf("Recorded run history and demand baselines in %s", path)
}
