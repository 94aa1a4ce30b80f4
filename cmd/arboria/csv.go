package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// parsedInput is the CLI's in-memory view of a training/prediction CSV,
// the direct descendant of the teacher's parsedInput (parse.go), adapted
// from [][]float64/string labels to the [][]float32/int32 dtypes the
// tree/forest packages use, and from byte-level heuristics to an explicit
// forceClf flag.
type parsedInput struct {
	IsRegression bool
	X            [][]float32
	YClf         []int32 // label-encoded; nil when IsRegression
	YReg         []float32
	Classes      []string // class id -> original label; nil when IsRegression
	VarNames     []string
}

// labelEncoder assigns a stable 0-based integer id to each distinct label
// in the order first seen, mirroring how forest.Classifier.Classes tracked
// labels in the teacher.
type labelEncoder struct {
	ids    map[string]int32
	labels []string
}

func newLabelEncoder() *labelEncoder {
	return &labelEncoder{ids: make(map[string]int32)}
}

func (e *labelEncoder) encode(label string) int32 {
	if id, ok := e.ids[label]; ok {
		return id
	}
	id := int32(len(e.labels))
	e.ids[label] = id
	e.labels = append(e.labels, label)
	return id
}

// parseCSV reads a comma-separated file whose first column is the target
// and remaining columns are features. If the first row's feature columns
// fail to parse as floats, it is treated as a header row and skipped. The
// target column is parsed as regression unless forceClf is set or a value
// fails to parse as a float, at which point it falls back to label
// encoding classification.
func parseCSV(r io.Reader, forceClf bool) (*parsedInput, error) {
	reader := csv.NewReader(r)

	p := &parsedInput{IsRegression: !forceClf}
	enc := newLabelEncoder()

	row, err := reader.Read()
	if err != nil {
		return p, err
	}

	varNames, isHeader := parseHeader(row)
	if isHeader {
		p.VarNames = varNames
	} else {
		for i := range row[1:] {
			p.VarNames = append(p.VarNames, fmt.Sprintf("X%d", i+1))
		}
		if err := p.parseRow(row, enc); err != nil {
			return p, err
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p, err
		}
		if err := p.parseRow(row, enc); err != nil {
			return p, err
		}
	}

	if p.IsRegression {
		p.YClf = nil
	} else {
		p.YReg = nil
		p.Classes = enc.labels
	}

	return p, nil
}

func (p *parsedInput) parseRow(row []string, enc *labelEncoder) error {
	xi, err := parseFeatureVals(row)
	if err != nil {
		return err
	}
	p.X = append(p.X, xi)

	if p.IsRegression {
		yi, err := strconv.ParseFloat(row[0], 32)
		if err != nil {
			p.IsRegression = false
		}
		p.YReg = append(p.YReg, float32(yi))
	}
	p.YClf = append(p.YClf, enc.encode(row[0]))

	return nil
}

func parseFeatureVals(row []string) ([]float32, error) {
	if len(row) < 2 {
		return nil, errors.New("row must have a target column and at least one feature column")
	}
	xi := make([]float32, 0, len(row)-1)
	for _, val := range row[1:] {
		fv, err := strconv.ParseFloat(val, 32)
		if err != nil {
			return nil, err
		}
		xi = append(xi, float32(fv))
	}
	return xi, nil
}

// parseHeader reports whether row looks like a header: we only accept
// numeric feature values, so any non-numeric feature column marks row as
// a header rather than data.
func parseHeader(row []string) ([]string, bool) {
	if len(row) < 2 {
		return nil, false
	}
	names := make([]string, 0, len(row)-1)
	for _, val := range row[1:] {
		if _, err := strconv.ParseFloat(val, 32); err == nil {
			return nil, false
		}
		names = append(names, val)
	}
	return names, true
}
