// Package config holds tool configuration: file paths and policies from
// environment variables, training hyperparameters from an optional YAML
// file.
package config

import (
	"os"
	"strconv"
)

// Config holds the path and policy settings shared by the pipeline tools.
type Config struct {
	// Inputs and outputs
	GTFSPath     string // feed directory or .zip archive
	EventsCSV    string // enriched merged event table
	DemandCSV    string // demand training table
	ModelPath    string // serialized model artifact
	DatabasePath string // SQLite feature store

	// Row-level policies
	PastMidnight string // "rollover" or "null"
	JoinPolicy   string // "drop" or "error"
	DriftPolicy  string // "error", "drop" or "zero"

	// TopN bounds every console report table.
	TopN int
}

// Load reads configuration from environment variables with defaults that
// match the repository's data/ layout.
func Load() *Config {
	return &Config{
		GTFSPath:     getEnv("GTFS_PATH", "data/gtfs"),
		EventsCSV:    getEnv("EVENTS_CSV", "data/stop_events.csv"),
		DemandCSV:    getEnv("DEMAND_CSV", "data/demand.csv"),
		ModelPath:    getEnv("MODEL_PATH", "data/demand_model.bin"),
		DatabasePath: getEnv("SQLITE_DATABASE", "data/demandcast.db"),

		PastMidnight: getEnv("PAST_MIDNIGHT_POLICY", "rollover"),
		JoinPolicy:   getEnv("JOIN_POLICY", "drop"),
		DriftPolicy:  getEnv("DRIFT_POLICY", "error"),

		TopN: getEnvInt("REPORT_TOP_N", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
