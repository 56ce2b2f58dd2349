package history

import (
	"testing"
	"time"

	"github.com/huangsam/co2plot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(file string) schema.WindowSummary {
	start := time.Date(2024, time.March, 5, 17, 31, 0, 0, time.UTC)
	return schema.WindowSummary{
		File:      file,
		From:      "17:31:00",
		Length:    "06:15",
		Start:     start,
		End:       start.Add(6*time.Hour + 15*time.Minute),
		Samples:   42,
		MeanCO2:   912.5,
		StdDevCO2: 35.2,
		MinCO2:    850,
		MaxCO2:    990,
		MeanTemp:  21.4,
		Quality:   schema.GoodAir,
		PlotPath:  "detailed_plots/detailed_co2_plot_Test3.png",
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.BeginRun(schema.WindowsRun, time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordWindow(1, sampleSummary("a.csv")))
	assert.NoError(t, store.EndRun(1, time.Now(), 10))

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestHistoryStore_UnsupportedBackend(t *testing.T) {
	_, err := NewHistoryStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestHistoryStore_SQLite(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	startTime := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(schema.WindowsRun, startTime, map[string]any{"plot_config": "cfg.json"})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordWindow(runID, sampleSummary("Test3.csv")))
	require.NoError(t, store.RecordWindow(runID, sampleSummary("Test3.csv")))

	skipped := schema.WindowSummary{File: "missing.csv", From: "10:00:00", Length: "01:00", SkipReason: "no data"}
	require.NoError(t, store.RecordWindow(runID, skipped))

	require.NoError(t, store.EndRun(runID, startTime.Add(1500*time.Millisecond), 3))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "windows", runs[0].Kind)
	assert.True(t, startTime.Equal(runs[0].StartTime))
	require.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(1500), *runs[0].RunDurationMs)
	assert.Equal(t, int32(3), runs[0].TotalItems)
	require.NotNil(t, runs[0].ConfigParams)
	assert.JSONEq(t, `{"plot_config":"cfg.json"}`, *runs[0].ConfigParams)

	windows, err := store.GetAllWindows()
	require.NoError(t, err)
	require.Len(t, windows, 2, "skipped windows are not recorded")
	w := windows[0]
	assert.Equal(t, "Test3.csv", w.File)
	assert.Equal(t, "17:31:00", w.FromTime)
	assert.Equal(t, "06:15", w.Length)
	assert.Equal(t, int32(42), w.Samples)
	assert.InDelta(t, 912.5, w.MeanCO2, 1e-9)
	assert.Equal(t, "Good", w.Quality)
	require.NotNil(t, w.PlotPath)
	assert.True(t, w.WindowTo.Sub(w.WindowFrom) == 6*time.Hour+15*time.Minute)
}

func TestHistoryStore_Status(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, ":memory:", status.Database)

	first := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := range 3 {
		runID, err := store.BeginRun(schema.ConvertRun, first.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
		require.NoError(t, store.EndRun(runID, first.Add(time.Duration(i)*time.Hour+time.Second), 2))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, 6, status.TotalItems)
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.Equal(t, int64(3), status.TableSizes[runsTable])
	assert.Equal(t, int64(0), status.TableSizes[windowsTable])
}

func TestHistoryStore_EndRunUnknown(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndRun(999, time.Now(), 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run 999")
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`co2plot_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"co2plot_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"co2plot_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	pg := &HistoryStoreImpl{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "$1, $2, $3", pg.placeholders(3))

	my := &HistoryStoreImpl{backend: schema.MySQLBackend}
	assert.Equal(t, "?, ?", my.placeholders(2))
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "co2", databaseName(schema.MySQLBackend, "user:pw@tcp(localhost:3306)/co2?parseTime=true"))
	assert.Equal(t, "co2", databaseName(schema.PostgreSQLBackend, "host=localhost user=u password=p dbname=co2 sslmode=disable"))
	assert.Equal(t, "", databaseName(schema.NoneBackend, ""))
}

func TestToTime(t *testing.T) {
	want := time.Date(2024, time.March, 5, 17, 31, 0, 0, time.UTC)

	got, err := toTime(want.Format(time.RFC3339Nano))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = toTime([]byte("2024-03-05 17:31:00"))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = toTime(42)
	assert.Error(t, err)
}
