package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	tod := NewTimeOfDay(8, 5, 9)
	h, m, s := tod.Clock()
	assert.Equal(t, []int{8, 5, 9}, []int{h, m, s})
	assert.Equal(t, "08:05:09", tod.String())

	data, err := json.Marshal(struct {
		From TimeOfDay `json:"from"`
	}{tod})
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"08:05:09"}`, string(data))
}

func TestTimeOfDayOn(t *testing.T) {
	day := time.Date(2024, time.March, 5, 17, 44, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC), NewTimeOfDay(10, 30, 0).On(day))
}

func TestRequestWindow(t *testing.T) {
	day := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	req := PlotWindowRequest{File: "Test1.csv", From: NewTimeOfDay(23, 30, 0), Length: 2*time.Hour + 15*time.Minute}

	w := req.Window(day)
	assert.Equal(t, time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 6, 1, 45, 0, 0, time.UTC), w.End)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestPlotWindowRequestJSON(t *testing.T) {
	req := PlotWindowRequest{File: "Test3.csv", From: NewTimeOfDay(17, 31, 0), Length: 6*time.Hour + 15*time.Minute + 30*time.Second}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file":"Test3.csv","from":"17:31:00","length":"06:15"}`, string(data))

	data, err = json.Marshal([]PlotWindowRequest{{File: "a.csv", Length: 48 * time.Hour}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"file":"a.csv","from":"00:00:00","length":"48:00"}]`, string(data))
}

func TestClassifyCO2(t *testing.T) {
	tests := []struct {
		ppm  float64
		want AirQuality
	}{
		{450, ExcellentAir},
		{799.9, ExcellentAir},
		{800, GoodAir},
		{999, GoodAir},
		{1000, ModerateAir},
		{1399, ModerateAir},
		{1400, PoorAir},
		{5000, PoorAir},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCO2(tt.ppm), "ppm %v", tt.ppm)
	}
}

func TestMeasurementDay(t *testing.T) {
	assert.True(t, (&Measurement{}).Day().IsZero())

	first := time.Date(2024, time.March, 5, 9, 12, 44, 0, time.UTC)
	m := &Measurement{Samples: []Sample{{Time: first}, {Time: first.Add(2 * time.Second)}}}
	assert.Equal(t, first, m.Day())
}

func TestSkippedAndFailed(t *testing.T) {
	assert.False(t, WindowSummary{}.Skipped())
	assert.True(t, WindowSummary{SkipReason: "no data in range"}.Skipped())
	assert.False(t, FileResult{}.Failed())
	assert.True(t, FileResult{Error: "boom"}.Failed())
}
