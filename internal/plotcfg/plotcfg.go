// Package plotcfg loads the detailed plot configuration and normalizes it into plot window requests.
//
// Two JSON shapes are accepted under the "detailed_plots" key:
//
//	{"detailed_plots": [{"file": "Test3.csv", "from": "17:31:00", "length": "06:15"}]}
//	{"detailed_plots": {"Test1.csv": {"from": "10:30:00", "length": "02:15"}}}
//
// Both are adapted at the boundary into one ordered []schema.PlotWindowRequest, so
// equivalent documents produce identical results.
package plotcfg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/co2plot/schema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DetailedPlotsKey is the top-level key holding the plot entries.
const DetailedPlotsKey = "detailed_plots"

// rawEntry is one plot entry before validation. Fields stay raw so that a value
// of the wrong JSON type is reported with the right error kind.
type rawEntry struct {
	File   json.RawMessage `json:"file"`
	From   json.RawMessage `json:"from"`
	Length json.RawMessage `json:"length"`
}

// LoadPlotWindowsFile opens path and loads the plot windows it declares.
func LoadPlotWindowsFile(path string) ([]schema.PlotWindowRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadPlotWindows(f)
}

// LoadPlotWindows parses a JSON plot configuration into requests, preserving document order.
func LoadPlotWindows(r io.Reader) ([]schema.PlotWindowRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plot config: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: fmt.Sprintf("document is not a JSON object: %v", err)}
	}
	plots, ok := doc[DetailedPlotsKey]
	if !ok {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: fmt.Sprintf("missing %q key", DetailedPlotsKey)}
	}

	switch firstByte(plots) {
	case '[':
		return fromArray(plots)
	case '{':
		return fromMapping(plots)
	default:
		return nil, &ConfigFormatError{Index: documentLevel, Reason: fmt.Sprintf("%q must be an array or an object", DetailedPlotsKey)}
	}
}

// fromArray adapts the array shape, where every entry names its own file.
func fromArray(data json.RawMessage) ([]schema.PlotWindowRequest, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: err.Error()}
	}

	requests := make([]schema.PlotWindowRequest, 0, len(items))
	for i, item := range items {
		entry, err := decodeEntry(item, i, "")
		if err != nil {
			return nil, err
		}
		if len(entry.File) == 0 {
			return nil, &ConfigFormatError{Index: i, Reason: `missing "file"`}
		}
		file, ok := decodeString(entry.File)
		if !ok {
			return nil, &ConfigFormatError{Index: i, Reason: `"file" must be a string`}
		}
		req, err := buildRequest(i, file, entry)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// fromMapping adapts the mapping shape, where the key is the file name.
// Keys are visited in document order. A repeated key keeps the position of
// its first occurrence and the value of its last.
func fromMapping(data json.RawMessage) ([]schema.PlotWindowRequest, error) {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, &ConfigFormatError{Index: documentLevel, Reason: err.Error()}
	}

	requests := make([]schema.PlotWindowRequest, 0, om.Len())
	i := 0
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		entry, err := decodeEntry(pair.Value, i, pair.Key)
		if err != nil {
			return nil, err
		}
		req, err := buildRequest(i, pair.Key, entry)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
		i++
	}
	return requests, nil
}

// decodeEntry checks that an item is a JSON object and unpacks its fields.
func decodeEntry(item json.RawMessage, index int, file string) (rawEntry, error) {
	var entry rawEntry
	if firstByte(item) != '{' {
		return entry, &ConfigFormatError{Index: index, File: file, Reason: "entry must be an object"}
	}
	if err := json.Unmarshal(item, &entry); err != nil {
		return entry, &ConfigFormatError{Index: index, File: file, Reason: err.Error()}
	}
	return entry, nil
}

// buildRequest validates and normalizes one entry regardless of its source shape.
func buildRequest(index int, file string, entry rawEntry) (schema.PlotWindowRequest, error) {
	return newRequest(index, file, rawText(entry.From), rawText(entry.Length))
}

// rawText returns the string held by a raw JSON value, or the raw JSON text
// itself when the value is not a string, so errors can quote it.
func rawText(raw json.RawMessage) string {
	if s, ok := decodeString(raw); ok {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// newRequest is shared by every config source, JSON and CSV alike.
func newRequest(index int, file, from, length string) (schema.PlotWindowRequest, error) {
	if strings.TrimSpace(file) == "" {
		return schema.PlotWindowRequest{}, &ConfigFormatError{Index: index, Reason: "file name must not be empty"}
	}
	tod, err := ParseTimeOfDay(from)
	if err != nil {
		return schema.PlotWindowRequest{}, locate(err, index, file)
	}
	dur, err := ParseLength(length)
	if err != nil {
		return schema.PlotWindowRequest{}, locate(err, index, file)
	}
	return schema.PlotWindowRequest{File: file, From: tod, Length: dur}, nil
}

// decodeString returns the string held by a raw JSON value.
// Missing values and values of other types report false.
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// firstByte returns the first non-whitespace byte of a JSON value, or 0.
func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
