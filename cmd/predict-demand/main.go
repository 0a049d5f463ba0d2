package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/transitlab/demandcast/internal/config"
	"github.com/transitlab/demandcast/internal/demand"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	modelPath := flag.String("model", cfg.ModelPath, "Model artifact to score with")
	dataPath := flag.String("data", cfg.DemandCSV, "Input table (passenger_count optional)")
	outPath := flag.String("out", "data/predictions.csv", "Output predictions CSV")
	driftPolicy := flag.String("drift", cfg.DriftPolicy, "Rows with unseen categories: error, drop or zero")
	flag.Parse()

	model, err := demand.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	log.Printf("Loaded model run %s (trained %s, %d trees, schema v%d)",
		model.RunID, model.CreatedAt.Format(time.RFC3339), model.Trees, model.Schema.Version)

	log.Printf("Loading input table from %s...", *dataPath)
	ds, err := demand.LoadCSV(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load input table: %v", err)
	}
	if ds.Stats.Malformed > 0 {
		log.Printf("  Skipped %d malformed rows", ds.Stats.Malformed)
	}
	log.Printf("  Loaded %d rows", len(ds.Records))

	preds, stats, err := model.Predict(ds.Records, demand.DriftPolicy(*driftPolicy))
	if err != nil {
		log.Fatalf("Scoring failed: %v", err)
	}
	if stats.DroppedDrift > 0 {
		log.Printf("WARNING: dropped %d rows with categories unseen at fit time", stats.DroppedDrift)
	}
	if stats.ZeroedDrift > 0 {
		log.Printf("WARNING: zero-encoded %d rows with categories unseen at fit time", stats.ZeroedDrift)
	}

	if err := writePredictions(*outPath, ds, preds, stats.Kept); err != nil {
		log.Fatalf("Failed to write predictions: %v", err)
	}

	if ds.Labeled {
		labels := make([]float64, len(stats.Kept))
		for i, idx := range stats.Kept {
			labels[i] = ds.Records[idx].PassengerCount
		}
		metrics, err := demand.Evaluate(labels, preds)
		if err != nil {
			log.Fatalf("Failed to evaluate against labels: %v", err)
		}
		log.Printf("  Scored against labels: MAE=%.2f RMSE=%.2f", metrics.MAE, metrics.RMSE)
	}

	log.Printf("SUCCESS: wrote %d predictions to %s", len(preds), *outPath)
}

// writePredictions emits one row per scored record. Rows dropped for
// drift are absent; kept maps output rows back to input records.
func writePredictions(path string, ds *demand.Dataset, preds []float64, kept []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"route_id", "stop_id", "hour", "weekday", "predicted_passengers"}
	if ds.Labeled {
		header = append(header, "passenger_count")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, idx := range kept {
		rec := ds.Records[idx]
		row := []string{
			rec.RouteID,
			rec.StopID,
			strconv.Itoa(rec.Hour),
			strconv.Itoa(rec.Weekday),
			strconv.FormatFloat(preds[i], 'f', 2, 64),
		}
		if ds.Labeled {
			row = append(row, strconv.FormatFloat(rec.PassengerCount, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
