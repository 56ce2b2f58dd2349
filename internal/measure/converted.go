package measure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/co2plot/schema"
)

// WriteConverted writes m as a converted CSV with a header row.
func WriteConverted(w io.Writer, m *schema.Measurement) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(schema.ConvertedHeaders); err != nil {
		return err
	}
	for _, s := range m.Samples {
		row := []string{
			formatReading(s.CO2),
			formatReading(s.Temperature),
			formatReading(s.MaxCO2),
			formatReading(s.MinCO2),
			s.Time.Format(schema.MeasurementTimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ConvertFile reads the raw file at src and writes its converted form into dstDir.
// It returns the parsed measurement and the path written.
func ConvertFile(src, dstDir string) (*schema.Measurement, string, error) {
	m, err := ReadRaw(src)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create %s: %w", dstDir, err)
	}
	dst := filepath.Join(dstDir, ConvertedName(m.Name))
	f, err := os.Create(dst)
	if err != nil {
		return nil, "", err
	}
	if err := WriteConverted(f, m); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return nil, "", err
	}
	return m, dst, nil
}

// ReadConverted loads a converted CSV. Columns are located by header name.
func ReadConverted(path string) (*schema.Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(err, path)
	}
	defer func() { _ = f.Close() }()

	m, err := ParseConverted(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Name = strings.TrimPrefix(filepath.Base(path), ConvertedPrefix)
	return m, nil
}

// ParseConverted is ReadConverted over an arbitrary reader.
func ParseConverted(r io.Reader) (*schema.Measurement, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty converted file")
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	idx := make([]int, len(schema.ConvertedHeaders))
	for i, name := range schema.ConvertedHeaders {
		pos, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
		idx[i] = pos
	}

	m := &schema.Measurement{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		var values [rawCells]float64
		for i := range values {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx[i]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s value %q", line, schema.ConvertedHeaders[i], record[idx[i]])
			}
			values[i] = v
		}
		ts, err := time.ParseInLocation(schema.MeasurementTimeLayout, strings.TrimSpace(record[idx[rawCells]]), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		m.Samples = append(m.Samples, schema.Sample{
			CO2:         values[0],
			Temperature: values[1],
			MaxCO2:      values[2],
			MinCO2:      values[3],
			Time:        ts,
		})
	}
	return m, nil
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
