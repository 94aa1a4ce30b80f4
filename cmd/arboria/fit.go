package main

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fantinsib/arboria/config"
)

var (
	fitDataFile   string
	fitModelFile  string
	fitConfigFile string
	fitImpFile    string
	fitForceClf   bool

	fitNTrees         int
	fitMaxDepth       int
	fitMinSampleSplit int
	fitMaxFeatures    string
	fitNWorkers       int
	fitComputeOOB     bool
	fitSeed           uint64
	fitCriterion      string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "fit a random forest from a CSV training file",
	RunE:  runFit,
}

func init() {
	fitCmd.Flags().StringVarP(&fitDataFile, "data", "d", "", "training data CSV (required)")
	fitCmd.Flags().StringVarP(&fitModelFile, "final-model", "f", "rf.model", "file to write the fitted model to")
	fitCmd.Flags().StringVar(&fitConfigFile, "config", "", "YAML hyperparameter file (overrides the flags below)")
	fitCmd.Flags().StringVar(&fitImpFile, "var-importance", "", "file to output variable importance estimates")
	fitCmd.Flags().BoolVarP(&fitForceClf, "classification", "c", false, "force the parser to treat the target column as class labels")

	fitCmd.Flags().IntVar(&fitNTrees, "trees", 70, "number of trees")
	fitCmd.Flags().IntVar(&fitMaxDepth, "max-depth", 0, "maximum tree depth (omit for unbounded; must be >= 1 if given)")
	fitCmd.Flags().IntVar(&fitMinSampleSplit, "min-split", 2, "minimum samples required to split an internal node")
	fitCmd.Flags().StringVar(&fitMaxFeatures, "max-features", "sqrt", "features considered per split: sqrt, log2, all, or a number")
	fitCmd.Flags().IntVar(&fitNWorkers, "workers", 1, "number of workers for fitting trees")
	fitCmd.Flags().BoolVar(&fitComputeOOB, "oob", true, "compute out-of-bag error")
	fitCmd.Flags().Uint64Var(&fitSeed, "seed", 1, "PRNG seed; same seed + same data always fits an identical forest")
	fitCmd.Flags().StringVar(&fitCriterion, "criterion", "gini", "split criterion for classification: gini or entropy")

	_ = fitCmd.MarkFlagRequired("data")
}

func runFit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadFitConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(fitDataFile)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := parseCSV(f, fitForceClf)
	if err != nil {
		return err
	}

	m, err := fitModel(context.Background(), d, cfg)
	if err != nil {
		return err
	}

	out, err := os.Create(fitModelFile)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := m.save(out); err != nil {
		return err
	}

	if fitImpFile != "" {
		impOut, err := os.Create(fitImpFile)
		if err != nil {
			return err
		}
		defer impOut.Close()
		if err := m.saveVarImp(impOut); err != nil {
			return err
		}
	}

	printReport(cmd.OutOrStdout(), m)
	return nil
}

// loadFitConfig builds a config.Model from --config when given, otherwise
// from the individual fit flags, and validates either path the same way.
func loadFitConfig() (config.Model, error) {
	if fitConfigFile != "" {
		return config.Load(fitConfigFile)
	}

	task := "regression"
	if fitForceClf {
		task = "classification"
	}

	var maxDepth *int
	if fitCmd.Flags().Changed("max-depth") {
		maxDepth = &fitMaxDepth
	}

	maxFeatures, maxFeaturesN := fitMaxFeatures, 0
	if n, err := strconv.Atoi(fitMaxFeatures); err == nil {
		maxFeatures, maxFeaturesN = "", n
	}

	cfg := config.Model{
		Task:           task,
		NEstimators:    fitNTrees,
		MaxDepth:       maxDepth,
		MinSampleSplit: fitMinSampleSplit,
		MaxFeatures:    maxFeatures,
		MaxFeaturesN:   maxFeaturesN,
		Criterion:      fitCriterion,
		NWorkers:       fitNWorkers,
		ComputeOOB:     fitComputeOOB,
		Seed:           fitSeed,
	}
	if err := cfg.Validate(); err != nil {
		return config.Model{}, err
	}
	return cfg, nil
}
