package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/schema"
)

// LogRunHeader prints a one-line description of the run about to start.
func LogRunHeader(w io.Writer, kind schema.RunKind, cfg *contract.Config, source string, items int) {
	noun := "files"
	if kind == schema.DetailRun || kind == schema.WindowsRun {
		noun = "windows"
	}
	_, _ = fmt.Fprintf(w, "co2plot %s: %d %s from %s (workers: %d, history: %s)\n",
		kind, items, noun, source, cfg.Workers, cfg.HistoryBackend)
}
