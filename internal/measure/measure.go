// Package measure reads raw CO2 meter exports and the converted CSV files derived from them.
package measure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/co2plot/schema"
)

// ErrNotFound is returned when a measurement file or directory does not exist.
var ErrNotFound = errors.New("measurement file not found")

// SampleInterval is the spacing between two consecutive meter readings.
const SampleInterval = 2 * time.Second

// ConvertedPrefix is prepended to a raw file name to get its converted name.
const ConvertedPrefix = "converted_"

// rawCells is the number of "Label: value" cells on every raw data row.
const rawCells = 4

// ConvertedName returns the converted file name for a raw measurement file.
func ConvertedName(file string) string {
	return ConvertedPrefix + file
}

// ListCSV returns the names of the *.csv files directly under dir, sorted by name.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, notFound(err, dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadRaw parses a raw meter export. The first line carries the title, whose tokens
// include the start date and time; every other row holds four "Label: value" cells.
func ReadRaw(path string) (*schema.Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(err, path)
	}
	defer func() { _ = f.Close() }()

	m, err := ParseRaw(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Name = filepath.Base(path)
	return m, nil
}

// ParseRaw is ReadRaw over an arbitrary reader. The returned measurement has no Name.
func ParseRaw(r io.Reader) (*schema.Measurement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty measurement file")
	}
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(head[0])
	start, err := TitleTime(title)
	if err != nil {
		return nil, err
	}

	m := &schema.Measurement{Title: title}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}
		if len(record) < rawCells {
			return nil, fmt.Errorf("line %d: expected %d cells, got %d", line, rawCells, len(record))
		}
		var values [rawCells]float64
		for i := range values {
			v, err := labelValue(record[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			values[i] = v
		}
		m.Samples = append(m.Samples, schema.Sample{
			CO2:         values[0],
			Temperature: values[1],
			MaxCO2:      values[2],
			MinCO2:      values[3],
			Time:        start.Add(time.Duration(len(m.Samples)) * SampleInterval),
		})
	}
	return m, nil
}

// TitleTime finds the "2006.01.02 15:04:05" date and time tokens in a raw title line.
// Times are taken as UTC; the meter records no zone.
func TitleTime(title string) (time.Time, error) {
	tokens := strings.Fields(title)
	for i := 0; i+1 < len(tokens); i++ {
		ts, err := time.ParseInLocation(schema.MeasurementTimeLayout, tokens[i]+" "+tokens[i+1], time.UTC)
		if err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("no start date and time in title %q", title)
}

// labelValue extracts the number after the last colon of a "Label: value" cell.
func labelValue(cell string) (float64, error) {
	raw := cell
	if i := strings.LastIndexByte(cell, ':'); i >= 0 {
		raw = cell[i+1:]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reading %q", cell)
	}
	return v, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// notFound maps a missing path to ErrNotFound and leaves other errors alone.
func notFound(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}
