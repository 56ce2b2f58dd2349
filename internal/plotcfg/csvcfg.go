package plotcfg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/co2plot/schema"
)

// Header names of the CSV plot configuration.
const (
	CSVFileColumn     = "File"
	CSVStartColumn    = "Start"
	CSVDurationColumn = "Duration"
)

// LoadPlotWindowsCSVFile opens path and loads the plot windows it declares.
func LoadPlotWindowsCSVFile(path string) ([]schema.PlotWindowRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadPlotWindowsCSV(f)
}

// LoadPlotWindowsCSV parses a CSV plot configuration with a File,Start,Duration header.
// Rows become requests in row order and are validated exactly like JSON entries.
func LoadPlotWindowsCSV(r io.Reader) ([]schema.PlotWindowRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: "empty CSV config"}
	}
	if err != nil {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: err.Error()}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var idx [3]int
	for i, name := range []string{CSVFileColumn, CSVStartColumn, CSVDurationColumn} {
		pos, ok := columns[name]
		if !ok {
			return nil, &ConfigFormatError{Index: documentLevel, Reason: fmt.Sprintf("missing %q column", name)}
		}
		idx[i] = pos
	}

	var requests []schema.PlotWindowRequest
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ConfigFormatError{Index: row, Reason: err.Error()}
		}
		if len(record) <= max(idx[0], idx[1], idx[2]) {
			return nil, &ConfigFormatError{Index: row, Reason: fmt.Sprintf("expected at least %d fields, got %d", max(idx[0], idx[1], idx[2])+1, len(record))}
		}
		req, err := newRequest(row, record[idx[0]], strings.TrimSpace(record[idx[1]]), strings.TrimSpace(record[idx[2]]))
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}
