package main

import (
	"fmt"
	"io"
	"sort"
)

// printReport prints a training summary for a freshly fit model: the
// teacher's model.go Report/reportClf/reportReg/ReportVarImp in one pass,
// adapted to cliModel's forest.RandomForestClassifier/Regressor fields.
func printReport(w io.Writer, m *cliModel) {
	var nTrees int
	if m.IsRegression {
		nTrees = len(m.Reg.Trees)
	} else {
		nTrees = len(m.Clf.Trees)
	}
	fmt.Fprintf(w, "Fit %d trees using %d examples in %.2f seconds\n", nTrees, m.NSample, m.FitSeconds)
	fmt.Fprintf(w, "\n")
	reportVarImp(w, m.varImp(), m.VarNames, 20)

	if m.IsRegression {
		if m.Reg.ComputeOOB {
			reportReg(w, m.Reg.OOBMSE, m.Reg.OOBR2)
		}
	} else if m.Clf.ComputeOOB {
		reportClf(w, m.Classes, m.Clf.ConfusionMatrix, m.Clf.OOBAccuracy)
	}
}

func reportClf(w io.Writer, classes []string, confusion [][]int32, accuracy float64) {
	fmt.Fprintf(w, "Out-of-Bag Confusion Matrix\n")
	fmt.Fprintf(w, "---------------------------\n")

	fmt.Fprintf(w, "%-14s ", "")
	for _, class := range classes {
		fmt.Fprintf(w, "%-14s ", class)
	}
	fmt.Fprintf(w, "\n")

	for actualID, class := range classes {
		fmt.Fprintf(w, "%-14s ", class)
		for predictedID := range classes {
			fmt.Fprintf(w, "%-14d ", confusion[actualID][predictedID])
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Out-of-Bag Accuracy: %.2f%%\n", 100.0*accuracy)
}

func reportReg(w io.Writer, mse, rSquared float64) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Out-of-Bag Mean Squared Error: %.3f\n", mse)
	fmt.Fprintf(w, "Out-of-Bag R-Squared: %.3f%%\n", 100*rSquared)
}

func reportVarImp(w io.Writer, varImp []float64, varNames []string, maxVars int) {
	fmt.Fprintf(w, "Variable Importance\n")
	fmt.Fprintf(w, "-------------------\n")

	imp := make([]float64, len(varImp))
	copy(imp, varImp)
	names := make([]string, len(varNames))
	copy(names, varNames)
	sortByImportance(imp, names)

	if maxVars > len(imp) {
		maxVars = len(imp)
	}

	for i, v := range imp[:maxVars] {
		fmt.Fprintf(w, "%-15s: %-10.2f\n", names[i], v)
	}
	fmt.Fprintf(w, "\n")
}

type varImpSort struct {
	varName []string
	imp     []float64
}

func (v varImpSort) Len() int           { return len(v.imp) }
func (v varImpSort) Less(i, j int) bool { return v.imp[i] < v.imp[j] }
func (v varImpSort) Swap(i, j int) {
	v.imp[i], v.imp[j] = v.imp[j], v.imp[i]
	v.varName[i], v.varName[j] = v.varName[j], v.varName[i]
}

func sortByImportance(imp []float64, names []string) {
	sort.Sort(sort.Reverse(varImpSort{imp: imp, varName: names}))
}
