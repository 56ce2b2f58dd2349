package plotcfg

import (
	"errors"
	"io/fs"

	"github.com/huangsam/co2plot/schema"
)

// Sources names the plot configuration files, tried in order JSON then CSV.
type Sources struct {
	JSONPath string
	CSVPath  string
}

// Resolved is the outcome of Resolve.
type Resolved struct {
	Requests []schema.PlotWindowRequest
	Source   string // Path the requests came from; empty when no config was found
}

// Resolve loads plot windows from the JSON config, falling back to the CSV config
// when the JSON file is absent or declares no windows. Missing files are not errors;
// malformed content is.
func Resolve(src Sources) (Resolved, error) {
	if src.JSONPath != "" {
		reqs, err := LoadPlotWindowsFile(src.JSONPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Resolved{}, err
		case len(reqs) > 0:
			return Resolved{Requests: reqs, Source: src.JSONPath}, nil
		}
	}

	if src.CSVPath != "" {
		reqs, err := LoadPlotWindowsCSVFile(src.CSVPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Resolved{}, err
		case len(reqs) > 0:
			return Resolved{Requests: reqs, Source: src.CSVPath}, nil
		}
	}

	return Resolved{}, nil
}
