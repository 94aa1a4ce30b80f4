package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
)

var (
	predictDataFile   string
	predictModelFile  string
	predictOutputFile string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "apply a fitted model to a CSV file of rows",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictDataFile, "data", "d", "", "input data CSV (required)")
	predictCmd.Flags().StringVarP(&predictModelFile, "model", "f", "rf.model", "fitted model file")
	predictCmd.Flags().StringVarP(&predictOutputFile, "predictions", "p", "", "file to write predictions to (required)")

	_ = predictCmd.MarkFlagRequired("data")
	_ = predictCmd.MarkFlagRequired("predictions")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	mf, err := os.Open(predictModelFile)
	if err != nil {
		return err
	}
	defer mf.Close()

	m := &cliModel{}
	if err := m.load(mf); err != nil {
		return err
	}

	df, err := os.Open(predictDataFile)
	if err != nil {
		return err
	}
	defer df.Close()

	// predict always runs with the model's own task type: a classification
	// model's input is parsed with forceClf set. The file keeps the
	// training layout (first column is the target); that column must be
	// present, but only the feature columns in d.X are used.
	d, err := parseCSV(df, !m.IsRegression)
	if err != nil {
		return err
	}

	pred := m.predict(d.X)

	out, err := os.Create(predictOutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	return writePredictions(out, pred)
}

func writePredictions(w *os.File, pred []string) error {
	bw := bufio.NewWriter(w)
	for _, p := range pred {
		if _, err := bw.WriteString(p); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
