package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/internal/plotcfg"
	"github.com/huangsam/co2plot/schema"
)

// Default values for configuration.
const (
	DefaultMeasurementsDir  = "measurements"
	DefaultConvertedDir     = "converted_measurements"
	DefaultPlotsDir         = "plots"
	DefaultDetailedPlotsDir = "detailed_plots"
	DefaultPlotConfig       = "cfg.json"
	DefaultPlotConfigCSV    = "cfg.csv"
	DefaultPrecision        = 1
	DefaultLogLevel         = "info"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for every command.
// This struct remains the "final, validated" config.
type Config struct {
	MeasurementsDir  string
	ConvertedDir     string
	PlotsDir         string
	DetailedPlotsDir string
	PlotConfig       string
	PlotConfigCSV    string

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	LogLevel   string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	MeasurementsDir  string `mapstructure:"measurements-dir"`
	ConvertedDir     string `mapstructure:"converted-dir"`
	PlotsDir         string `mapstructure:"plots-dir"`
	DetailedPlotsDir string `mapstructure:"detailed-plots-dir"`
	PlotConfig       string `mapstructure:"plot-config"`
	PlotConfigCSV    string `mapstructure:"plot-config-csv"`

	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// PlotSources returns the plot configuration files to resolve, JSON first.
func (c *Config) PlotSources() plotcfg.Sources {
	return plotcfg.Sources{JSONPath: c.PlotConfig, CSVPath: c.PlotConfigCSV}
}

// ConvertedPath returns where the converted form of a measurement file lives.
func (c *Config) ConvertedPath(file string) string {
	return filepath.Join(c.ConvertedDir, measure.ConvertedName(file))
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPaths(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend := input.HistoryBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates all non-path fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if err := SetLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}
	return nil
}

// processPaths fills in directory and plot config paths, falling back to defaults.
func processPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.MeasurementsDir = orDefault(input.MeasurementsDir, DefaultMeasurementsDir)
	cfg.ConvertedDir = orDefault(input.ConvertedDir, DefaultConvertedDir)
	cfg.PlotsDir = orDefault(input.PlotsDir, DefaultPlotsDir)
	cfg.DetailedPlotsDir = orDefault(input.DetailedPlotsDir, DefaultDetailedPlotsDir)
	cfg.PlotConfig = orDefault(input.PlotConfig, DefaultPlotConfig)
	cfg.PlotConfigCSV = orDefault(input.PlotConfigCSV, DefaultPlotConfigCSV)

	if filepath.Clean(cfg.MeasurementsDir) == filepath.Clean(cfg.ConvertedDir) {
		return fmt.Errorf("measurements-dir and converted-dir must differ. Both resolve to %q", cfg.MeasurementsDir)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
