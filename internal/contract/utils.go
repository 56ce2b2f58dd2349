package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/co2plot/schema"
)

// Color variables for console output.
var (
	PoorColor      = color.New(color.FgRed, color.Bold) // PoorColor represents air that needs ventilation now.
	ModerateColor  = color.New(color.FgYellow)          // ModerateColor represents standard caution, not bold.
	GoodColor      = color.New(color.FgCyan)            // GoodColor represents acceptable air.
	ExcellentColor = color.New(color.FgGreen)           // ExcellentColor represents fresh air.
	SkippedColor   = color.New(color.Faint)             // SkippedColor marks windows with no data.
)

// GetColorLabel returns a colored air quality label for console output (table).
func GetColorLabel(quality schema.AirQuality) string {
	text := string(quality)
	switch quality {
	case schema.PoorAir:
		return PoorColor.Sprint(text)
	case schema.ModerateAir:
		return ModerateColor.Sprint(text)
	case schema.GoodAir:
		return GoodColor.Sprint(text)
	case schema.ExcellentAir:
		return ExcellentColor.Sprint(text)
	default:
		return SkippedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".co2plot_history.db"
	}
	return filepath.Join(homeDir, ".co2plot_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
