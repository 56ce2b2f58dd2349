package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// RunKind names the command that produced a history run.
	RunKind string

	// AirQuality is the indoor air label derived from a CO2 level.
	AirQuality string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All run kinds recorded in history.
const (
	ConvertRun  RunKind = "convert"
	OverviewRun RunKind = "overview"
	DetailRun   RunKind = "detail"
	WindowsRun  RunKind = "windows"
)

// Air quality bands by CO2 concentration, following the IDA classes of EN 13779.
const (
	ExcellentAir AirQuality = "Excellent" // below 800 ppm
	GoodAir      AirQuality = "Good"      // below 1000 ppm
	ModerateAir  AirQuality = "Moderate"  // below 1400 ppm
	PoorAir      AirQuality = "Poor"
)

// Column headers of a converted measurement file, in write order.
const (
	CO2Header         = "CO2(ppm)"
	TemperatureHeader = "Temperature(C)"
	MaxCO2Header      = "Maximum_CO2(ppm)"
	MinCO2Header      = "Minimum_CO2(ppm)"
	TimeHeader        = "Date_Of_Measurement(datetime)"
)

// ConvertedHeaders lists the converted CSV header row.
var ConvertedHeaders = []string{CO2Header, TemperatureHeader, MaxCO2Header, MinCO2Header, TimeHeader}

// MeasurementTimeLayout is the timestamp layout used in raw titles and converted rows.
const MeasurementTimeLayout = "2006.01.02 15:04:05"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ClassifyCO2 maps a CO2 concentration to its air quality band.
func ClassifyCO2(ppm float64) AirQuality {
	switch {
	case ppm < 800:
		return ExcellentAir
	case ppm < 1000:
		return GoodAir
	case ppm < 1400:
		return ModerateAir
	default:
		return PoorAir
	}
}
