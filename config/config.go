// Package config loads CLI hyperparameters from a YAML file, the same
// yaml.v3-driven shape Mimir-AIP-Mimir-AIP-Go/Mimir_Go/utils/config.go
// loads its application config with, scaled down to a flat hyperparameter
// set and validated through the same path programmatic construction of a
// tree or forest already goes through.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fantinsib/arboria/errs"
	"github.com/fantinsib/arboria/forest"
	"github.com/fantinsib/arboria/tree"
)

// Model is the top-level YAML document the CLI's --config flag reads.
type Model struct {
	Task string `yaml:"task"` // "classification" or "regression"

	NEstimators    int    `yaml:"n_estimators"`
	MaxDepth       *int   `yaml:"max_depth"` // nil/absent means unbounded; an explicit 0 is rejected
	MinSampleSplit int    `yaml:"min_sample_split"`
	MaxFeatures    string `yaml:"max_features"` // "sqrt", "log2", "all", or "" with MaxFeaturesN
	MaxFeaturesN   int    `yaml:"max_features_n"`
	Criterion      string `yaml:"criterion"` // classification only: "gini" or "entropy"
	NWorkers       int    `yaml:"n_workers"` // n_jobs: positive pool size, -1 for runtime.NumCPU()
	ComputeOOB     bool   `yaml:"compute_oob"`
	Seed           uint64 `yaml:"seed"`
}

// defaults mirrors NewRandomForestClassifier/NewRandomForestRegressor's
// hyperparameter defaults so a YAML file only needs to set what it wants
// to override.
func defaults() Model {
	return Model{
		Task:           "classification",
		NEstimators:    70,
		MinSampleSplit: 2,
		MaxFeatures:    "sqrt",
		Criterion:      "gini",
		NWorkers:       1,
	}
}

// Load reads and parses a hyperparameter file, filling unset fields from
// defaults() and validating the result.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, errs.New(errs.InvalidArgument, "config: %v", err)
	}

	m := defaults()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Model{}, errs.New(errs.InvalidArgument, "config: invalid YAML in %s: %v", path, err)
	}

	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Validate checks the hyperparameters through the same parsers
// (tree.ParseCriterion, forest.ParseMTry) the forest and tree Fit paths
// use, so a bad YAML value is rejected before training starts rather
// than surfacing as a confusing error mid-fit.
func (m Model) Validate() error {
	switch m.Task {
	case "classification", "regression":
	default:
		return errs.New(errs.InvalidArgument, "config: task must be \"classification\" or \"regression\", got %q", m.Task)
	}
	if m.NEstimators < 1 {
		return errs.New(errs.InvalidArgument, "config: n_estimators must be >= 1, got %d", m.NEstimators)
	}
	if m.MinSampleSplit < 2 {
		return errs.New(errs.InvalidArgument, "config: min_sample_split must be >= 2, got %d", m.MinSampleSplit)
	}
	if m.MaxDepth != nil && *m.MaxDepth <= 0 {
		return errs.New(errs.InvalidArgument, "config: max_depth must be >= 1 when set, got %d", *m.MaxDepth)
	}
	if m.NWorkers != -1 && m.NWorkers < 1 {
		return errs.New(errs.InvalidArgument, "config: n_workers must be positive or -1, got %d", m.NWorkers)
	}
	if m.Task == "classification" {
		if _, ok := tree.ParseCriterion(m.Criterion); !ok {
			return errs.New(errs.InvalidArgument, "config: unknown criterion %q", m.Criterion)
		}
	}
	if m.MaxFeatures != "" {
		if _, ok := forest.ParseMTry(m.MaxFeatures); !ok {
			return errs.New(errs.InvalidArgument, "config: unknown max_features %q", m.MaxFeatures)
		}
	}
	return nil
}
