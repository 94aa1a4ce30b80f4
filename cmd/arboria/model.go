package main

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"io"
	"strconv"
	"time"

	"github.com/fantinsib/arboria/config"
	"github.com/fantinsib/arboria/errs"
	"github.com/fantinsib/arboria/forest"
	"github.com/fantinsib/arboria/tree"
)

// cliModel is the on-disk unit the fit/predict subcommands exchange,
// the direct descendant of the teacher's model.go Model, holding the
// forest package's own ensemble types (rather than the arboria facade)
// so a single gob.Encode/Decode call round-trips every tree without
// reaching past an unexported field.
type cliModel struct {
	IsRegression bool
	Classes      []string // class id -> original label; nil when IsRegression
	VarNames     []string
	NSample      int
	FitSeconds   float64

	Clf *forest.RandomForestClassifier
	Reg *forest.RandomForestRegressor
}

func fitModel(ctx context.Context, d *parsedInput, cfg config.Model) (*cliModel, error) {
	start := time.Now()
	m := &cliModel{
		IsRegression: d.IsRegression,
		VarNames:     d.VarNames,
		NSample:      len(d.X),
	}

	mtry, err := resolveMTry(cfg)
	if err != nil {
		return nil, err
	}

	if d.IsRegression {
		reg := &forest.RandomForestRegressor{
			NTrees:         cfg.NEstimators,
			MaxDepth:       cfg.MaxDepth,
			MinSampleSplit: cfg.MinSampleSplit,
			MTry:           mtry,
			NWorkers:       cfg.NWorkers,
			ComputeOOB:     cfg.ComputeOOB,
			Seed:           cfg.Seed,
		}
		if err := reg.Fit(ctx, d.X, d.YReg); err != nil {
			return nil, err
		}
		m.Reg = reg
	} else {
		crit, ok := tree.ParseCriterion(cfg.Criterion)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "unknown criterion %q", cfg.Criterion)
		}
		clf := &forest.RandomForestClassifier{
			NTrees:         cfg.NEstimators,
			Criterion:      crit,
			MaxDepth:       cfg.MaxDepth,
			MinSampleSplit: cfg.MinSampleSplit,
			MTry:           mtry,
			NWorkers:       cfg.NWorkers,
			ComputeOOB:     cfg.ComputeOOB,
			Seed:           cfg.Seed,
		}
		if err := clf.Fit(ctx, d.X, d.YClf); err != nil {
			return nil, err
		}
		m.Clf = clf
		m.Classes = d.Classes
	}

	m.FitSeconds = time.Since(start).Seconds()
	return m, nil
}

func resolveMTry(cfg config.Model) (forest.MTry, error) {
	if cfg.MaxFeatures == "" {
		return forest.MTry{Kind: forest.MTryFixed, N: cfg.MaxFeaturesN}, nil
	}
	m, ok := forest.ParseMTry(cfg.MaxFeatures)
	if !ok {
		return forest.MTry{}, errs.New(errs.InvalidArgument, "unknown max_features %q", cfg.MaxFeatures)
	}
	return m, nil
}

// predict returns one string prediction per row of X: the class label
// for classification models, the formatted float value for regression.
func (m *cliModel) predict(X [][]float32) []string {
	out := make([]string, len(X))
	if m.IsRegression {
		for i, v := range m.Reg.Predict(X) {
			out[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
		}
	} else {
		for i, id := range m.Clf.Predict(X) {
			out[i] = m.Classes[id]
		}
	}
	return out
}

func (m *cliModel) varImp() []float64 {
	if m.IsRegression {
		return m.Reg.VarImp()
	}
	return m.Clf.VarImp()
}

func (m *cliModel) save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(m)
}

func (m *cliModel) load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(m)
}

func (m *cliModel) saveVarImp(w io.Writer) error {
	writer := csv.NewWriter(w)
	for i, score := range m.varImp() {
		if err := writer.Write([]string{m.VarNames[i], strconv.FormatFloat(score, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
