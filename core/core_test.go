package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/co2plot/internal/contract"
	"github.com/huangsam/co2plot/internal/history"
	"github.com/huangsam/co2plot/internal/measure"
	"github.com/huangsam/co2plot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var measurementStart = time.Date(2024, time.March, 5, 17, 30, 0, 0, time.UTC)

// testConfig builds a config rooted in a temp dir with every output silenced.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		MeasurementsDir:  filepath.Join(dir, "measurements"),
		ConvertedDir:     filepath.Join(dir, "converted"),
		PlotsDir:         filepath.Join(dir, "plots"),
		DetailedPlotsDir: filepath.Join(dir, "detailed"),
		PlotConfig:       filepath.Join(dir, "cfg.json"),
		PlotConfigCSV:    filepath.Join(dir, "cfg.csv"),
		Workers:          2,
		Precision:        1,
		Output:           schema.JSONOut,
		OutputFile:       filepath.Join(dir, "out.json"),
		HistoryBackend:   schema.NoneBackend,
	}
}

// writeConverted stores a converted file with one sample every 2s holding the given ppm values.
func writeConverted(t *testing.T, cfg *contract.Config, file string, ppm ...float64) {
	t.Helper()
	m := &schema.Measurement{Name: file}
	for i, v := range ppm {
		m.Samples = append(m.Samples, schema.Sample{
			CO2:         v,
			Temperature: 20 + float64(i),
			Time:        measurementStart.Add(time.Duration(i) * measure.SampleInterval),
		})
	}
	require.NoError(t, os.MkdirAll(cfg.ConvertedDir, 0o755))
	f, err := os.Create(cfg.ConvertedPath(file))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, measure.WriteConverted(f, m))
}

func req(file string, h, m, s int, length time.Duration) schema.PlotWindowRequest {
	return schema.PlotWindowRequest{File: file, From: schema.NewTimeOfDay(h, m, s), Length: length}
}

func TestSliceWindow(t *testing.T) {
	m := &schema.Measurement{}
	for i := range 10 {
		m.Samples = append(m.Samples, schema.Sample{CO2: float64(i), Time: measurementStart.Add(time.Duration(i) * time.Minute)})
	}

	w := schema.TimeWindow{Start: measurementStart.Add(2 * time.Minute), End: measurementStart.Add(5 * time.Minute)}
	got := SliceWindow(m, w)
	require.Len(t, got, 4, "both bounds are included")
	assert.Equal(t, 2.0, got[0].CO2)
	assert.Equal(t, 5.0, got[3].CO2)

	assert.Empty(t, SliceWindow(m, schema.TimeWindow{Start: measurementStart.Add(time.Hour), End: measurementStart.Add(2 * time.Hour)}))
}

func TestSummarize(t *testing.T) {
	r := req("Test3.csv", 17, 30, 0, 10*time.Minute)
	w := r.Window(measurementStart)

	samples := []schema.Sample{
		{CO2: 700, Temperature: 20},
		{CO2: 900, Temperature: 22},
		{CO2: 1100, Temperature: 24},
	}
	s := Summarize(r, w, samples)
	assert.Equal(t, "Test3.csv", s.File)
	assert.Equal(t, "17:30:00", s.From)
	assert.Equal(t, "00:10", s.Length)
	assert.Equal(t, 3, s.Samples)
	assert.InDelta(t, 900, s.MeanCO2, 1e-9)
	assert.InDelta(t, 200, s.StdDevCO2, 1e-9)
	assert.Equal(t, 700.0, s.MinCO2)
	assert.Equal(t, 1100.0, s.MaxCO2)
	assert.InDelta(t, 22, s.MeanTemp, 1e-9)
	assert.Equal(t, schema.GoodAir, s.Quality)
	assert.False(t, s.Skipped())

	single := Summarize(r, w, samples[:1])
	assert.Equal(t, 0.0, single.StdDevCO2)
	assert.Equal(t, schema.ExcellentAir, single.Quality)

	empty := Summarize(r, w, nil)
	assert.True(t, empty.Skipped())
}

func TestSummarizeWindows(t *testing.T) {
	cfg := testConfig(t)
	// 17:30:00 to 17:30:18, one reading every 2s
	writeConverted(t, cfg, "Test1.csv", 800, 810, 820, 830, 840, 850, 860, 870, 880, 890)

	reqs := []schema.PlotWindowRequest{
		req("Test1.csv", 17, 30, 4, 0),              // exactly one sample
		req("Missing.csv", 10, 0, 0, time.Hour),     // no converted file
		req("Test1.csv", 9, 0, 0, time.Hour),        // no data in range
		req("Test1.csv", 17, 0, 0, 45*time.Minute),  // every sample
	}

	summaries := SummarizeWindows(context.Background(), cfg, reqs, false)
	require.Len(t, summaries, 4)

	assert.Equal(t, 1, summaries[0].Samples)
	assert.Equal(t, 820.0, summaries[0].MeanCO2)

	assert.Equal(t, "Missing.csv", summaries[1].File)
	assert.Equal(t, SkipMissingFile, summaries[1].SkipReason)

	assert.Equal(t, SkipNoData, summaries[2].SkipReason)
	assert.Equal(t, time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), summaries[2].Start)

	assert.Equal(t, 10, summaries[3].Samples)
	assert.InDelta(t, 845, summaries[3].MeanCO2, 1e-9)
	assert.Equal(t, "00:45", summaries[3].Length)
	assert.Empty(t, summaries[3].PlotPath)
}

func TestSummarizeWindows_KeepsOrder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 4
	writeConverted(t, cfg, "a.csv", 500, 600)
	writeConverted(t, cfg, "b.csv", 1500, 1600)

	var reqs []schema.PlotWindowRequest
	for i := range 20 {
		file := "a.csv"
		if i%3 == 0 {
			file = "b.csv"
		}
		reqs = append(reqs, req(file, 17, 30, 0, time.Minute))
	}

	summaries := SummarizeWindows(context.Background(), cfg, reqs, false)
	require.Len(t, summaries, len(reqs))
	for i, s := range summaries {
		assert.Equal(t, reqs[i].File, s.File, "index %d", i)
	}
	assert.Equal(t, schema.PoorAir, summaries[0].Quality)
	assert.Equal(t, schema.ExcellentAir, summaries[1].Quality)
}

func TestSummarizeWindows_RendersPlots(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DetailedPlotsDir, 0o755))
	writeConverted(t, cfg, "Test3.csv", 1000, 1100, 1200)

	summaries := SummarizeWindows(context.Background(), cfg, []schema.PlotWindowRequest{req("Test3.csv", 17, 30, 0, time.Minute)}, true)
	require.Len(t, summaries, 1)
	require.NotEmpty(t, summaries[0].PlotPath)
	assert.True(t, strings.HasPrefix(filepath.Base(summaries[0].PlotPath), "detailed_co2_plot_Test3_173000_"))
	_, err := os.Stat(summaries[0].PlotPath)
	assert.NoError(t, err)
}

func TestSummarizeWindows_Canceled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries := SummarizeWindows(ctx, cfg, []schema.PlotWindowRequest{req("a.csv", 1, 0, 0, time.Minute)}, false)
	require.Len(t, summaries, 1)
	assert.Equal(t, context.Canceled.Error(), summaries[0].SkipReason)
}

func TestRunPool(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	out := runPool(context.Background(), 3, items, func(_ context.Context, idx int, v int) int {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10
	})
	assert.Equal(t, []int{50, 40, 30, 20, 10}, out)

	assert.Empty(t, runPool(context.Background(), 0, []int{}, func(context.Context, int, int) int { return 0 }))
}

func TestExecuteWindows_RecordsHistory(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)
	writeConverted(t, cfg, "Test1.csv", 900, 950)
	require.NoError(t, os.WriteFile(cfg.PlotConfig, []byte(`{"detailed_plots":{
		"Test1.csv":{"from":"17:30:00","length":"00:05"},
		"Gone.csv":{"from":"17:30:00","length":"00:05"}
	}}`), 0o644))

	store := &history.MockHistoryStore{}
	mgr := &history.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	store.On("BeginRun", schema.WindowsRun, mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(7), nil)
	store.On("RecordWindow", int64(7), mock.MatchedBy(func(s schema.WindowSummary) bool { return s.File == "Test1.csv" })).Return(nil)
	store.On("RecordWindow", int64(7), mock.MatchedBy(func(s schema.WindowSummary) bool { return s.Skipped() })).Return(nil)
	store.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 1).Return(nil)

	require.NoError(t, ExecuteWindows(ctx, cfg, mgr))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file": "Test1.csv"`)
	assert.Contains(t, string(data), `"skip_reason": "converted file not found"`)

	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestExecuteWindows_NoConfig(t *testing.T) {
	cfg := testConfig(t)
	mgr := &history.MockHistoryManager{}

	require.NoError(t, ExecuteWindows(WithSuppressHeader(context.Background()), cfg, mgr))
	mgr.AssertNotCalled(t, "GetHistoryStore")
	_, err := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(err))
}

func TestGetWindowSummaries_NoConfig(t *testing.T) {
	cfg := testConfig(t)
	mgr := &history.MockHistoryManager{}

	summaries, err := GetWindowSummaries(WithSuppressHeader(context.Background()), cfg, mgr, schema.DetailRun)
	require.NoError(t, err)
	assert.Nil(t, summaries)
	mgr.AssertNotCalled(t, "GetHistoryStore")
}

func TestExecuteWindows_CSVFallback(t *testing.T) {
	cfg := testConfig(t)
	writeConverted(t, cfg, "Test2.csv", 1300, 1350)
	require.NoError(t, os.WriteFile(cfg.PlotConfigCSV, []byte("File,Start,Duration\nTest2.csv,17:30:00,00:01\n"), 0o644))

	require.NoError(t, ExecuteWindows(WithSuppressHeader(context.Background()), cfg, history.NewHistoryStoreManager(nil)))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"quality": "Moderate"`)
}

func TestExecuteWindows_BadConfig(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.PlotConfig, []byte(`{"detailed_plots":[{"file":"a.csv","from":"25:00:00","length":"01:00"}]}`), 0o644))

	err := ExecuteWindows(WithSuppressHeader(context.Background()), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0 (a.csv)")
}

func TestExecuteDetail(t *testing.T) {
	cfg := testConfig(t)
	writeConverted(t, cfg, "Test3.csv", 700, 720, 740)
	require.NoError(t, os.WriteFile(cfg.PlotConfig, []byte(`{"detailed_plots":[{"file":"Test3.csv","from":"17:30:00","length":"00:01"}]}`), 0o644))

	require.NoError(t, ExecuteDetail(WithSuppressHeader(context.Background()), cfg, nil))

	entries, err := os.ReadDir(cfg.DetailedPlotsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
}

func TestExecuteConvertAndOverview(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.MeasurementsDir, 0o755))
	raw := "CO2 Meter Log 2024.03.05 17:30:00 END\nCO2: 612,Temp: 21.5,Max CO2: 640,Min CO2: 600\nCO2: 615,Temp: 21.6,Max CO2: 640,Min CO2: 600\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.MeasurementsDir, "Test1.csv"), []byte(raw), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.MeasurementsDir, "Broken.csv"), []byte("no title here\n"), 0o644))

	store, err := history.NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	mgr := history.NewHistoryStoreManager(store)

	require.NoError(t, ExecuteConvert(ctx, cfg, mgr))
	m, err := measure.ReadConverted(cfg.ConvertedPath("Test1.csv"))
	require.NoError(t, err)
	assert.Len(t, m.Samples, 2)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file": "Broken.csv"`)
	assert.Contains(t, string(data), `"error"`)

	require.NoError(t, ExecuteOverview(ctx, cfg, mgr))
	plots, err := os.ReadDir(cfg.PlotsDir)
	require.NoError(t, err)
	require.Len(t, plots, 1)
	assert.True(t, strings.HasPrefix(plots[0].Name(), "co2_plot_Test1_"))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "convert", runs[0].Kind)
	assert.Equal(t, int32(1), runs[0].TotalItems)
	assert.Equal(t, "overview", runs[1].Kind)
}

func TestExecuteConvert_NoFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.MeasurementsDir, 0o755))
	err := ExecuteConvert(WithSuppressHeader(context.Background()), cfg, nil)
	assert.ErrorContains(t, err, "no CSV files found")
}

func TestBeginRun_TrackingFailure(t *testing.T) {
	cfg := testConfig(t)
	store := &history.MockHistoryStore{}
	mgr := &history.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	store.On("BeginRun", schema.DetailRun, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	run := beginRun(mgr, schema.DetailRun, cfg)
	run.record([]schema.WindowSummary{{File: "a.csv"}})
	run.end(1)

	store.AssertNotCalled(t, "RecordWindow", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestSuppressHeader(t *testing.T) {
	assert.False(t, shouldSuppressHeader(context.Background()))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(context.Background())))
}
