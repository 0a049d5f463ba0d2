package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Training holds the model hyperparameters for one run. Values come from
// defaults or a YAML file; the seed is threaded explicitly through split
// and fit rather than seeding any global generator.
type Training struct {
	Trees        int     `yaml:"trees" validate:"min=1"`
	MaxDepth     int     `yaml:"max_depth" validate:"min=1"`
	MinLeaf      int     `yaml:"min_leaf" validate:"min=1"`
	TestFraction float64 `yaml:"test_fraction" validate:"gt=0,lt=1"`
	Seed         uint64  `yaml:"seed"`
	Workers      int     `yaml:"workers" validate:"min=0"`
}

// DefaultTraining returns the stock hyperparameters: 100 trees, depth
// 10, a 20% hold-out and seed 42.
func DefaultTraining() Training {
	return Training{
		Trees:        100,
		MaxDepth:     10,
		MinLeaf:      1,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// LoadTraining returns the defaults when path is empty, otherwise reads
// and validates the YAML file at path. Fields absent from the file keep
// their default values.
func LoadTraining(path string) (Training, error) {
	t := DefaultTraining()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read training config: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse training config %s: %w", path, err)
	}
	if err := validator.New().Struct(&t); err != nil {
		return t, fmt.Errorf("invalid training config %s: %w", path, err)
	}
	return t, nil
}
