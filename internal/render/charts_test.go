package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
)

func testTable() domain.UtilizationTable {
	return domain.UtilizationTable{
		Schedule: 86,
		Rows: []domain.UtilizationRow{
			{Schedule: 86, Item: 1, Name: "a", Rates: map[domain.Floor]float64{domain.Floor9: 0.1, domain.Floor12: 0.9}},
			{Schedule: 86, Item: 2, Name: "b", Rates: map[domain.Floor]float64{domain.Floor9: 0.5}},
			{Schedule: 86, Item: 3, Name: "c", Rates: map[domain.Floor]float64{domain.Floor9: 0.3}},
		},
	}
}

func TestUtilizationBar(t *testing.T) {
	fig := UtilizationBar(testTable(), domain.Floor9, 0)

	require.Len(t, fig.Data, 1)
	trace := fig.Data[0]
	assert.Equal(t, TraceBar, trace.Type)
	assert.Equal(t, []any{"b", "c", "a"}, trace.X)
	assert.Equal(t, []any{0.5, 0.3, 0.1}, trace.Y)

	colors, ok := trace.Marker.Color.([]string)
	require.True(t, ok)
	assert.Equal(t, []string{ColorRateHigh.CSS(), LerpColor(ColorRateHigh, ColorRateLow, 0.5).CSS(), ColorRateLow.CSS()}, colors)

	assert.Equal(t, ".0%", fig.Layout.YAxis.TickFormat)
	assert.Equal(t, "Floor 9", fig.Layout.YAxis.Title.Text)
	assert.Contains(t, fig.Layout.Title.Text, "Schedule 86")
}

func TestUtilizationBarTopNSkipsMissing(t *testing.T) {
	fig := UtilizationBar(testTable(), domain.Floor12, 5)
	assert.Equal(t, []any{"a"}, fig.Data[0].X)

	fig = UtilizationBar(testTable(), domain.Floor9, 2)
	assert.Equal(t, []any{"b", "c"}, fig.Data[0].X)

	fig = UtilizationBar(testTable(), domain.Floor11, 0)
	assert.Empty(t, fig.Data[0].X)
}

func TestScheduleBar(t *testing.T) {
	stats := []domain.OverviewStat{
		{ScheduleID: 85, SpiralAbyssTotal: 900, SpiralAbyssFullStar: 400},
		{ScheduleID: 86, SpiralAbyssTotal: 950, SpiralAbyssFullStar: 420},
	}

	fig := ScheduleBar(stats)

	require.Len(t, fig.Data, 2)
	assert.Equal(t, SeriesAbyssTotal, fig.Data[0].Name)
	assert.Equal(t, "rgb(0,139,139)", fig.Data[0].Marker.Color)
	assert.Equal(t, []any{900, 950}, fig.Data[0].Y)
	assert.Equal(t, SeriesAbyssFullStar, fig.Data[1].Name)
	assert.Equal(t, "rgb(100,149,237)", fig.Data[1].Marker.Color)
	assert.Equal(t, []any{85, 86}, fig.Data[1].X)
	assert.Equal(t, "%{y}", fig.Data[0].TextTemplate)

	assert.Equal(t, "group", fig.Layout.BarMode)
	assert.Equal(t, ScheduleBarTitle, fig.Layout.Title.Text)
	assert.Equal(t, 0.5, *fig.Layout.Title.X)
	assert.Equal(t, "Schedule Number", fig.Layout.XAxis.Title.Text)
	assert.Equal(t, "Total Count", fig.Layout.YAxis.Title.Text)
}

func TestUploaderScatter(t *testing.T) {
	ts := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	groups := abyss.GroupUploads([]domain.UploadRecord{
		{UID: "112345678", UploadTime: ts, Uploader: domain.UploaderSnapHutao},
		{UID: "612345678", UploadTime: ts, Uploader: domain.UploaderMiaoPlugin},
	})

	fig := UploaderScatter(groups)

	require.Len(t, fig.Data, len(domain.Regions)*len(domain.Uploaders))
	first := fig.Data[0]
	assert.Equal(t, TraceScatter, first.Type)
	assert.Equal(t, "markers", first.Mode)
	assert.Equal(t, string(domain.UploaderSnapHutao), first.Name)
	assert.Equal(t, []any{112}, first.X)
	assert.Equal(t, []any{"2024-01-20 12:00:00"}, first.Y)
	assert.Equal(t, "rgb(239,85,59)", first.Marker.Color)

	// America is the third region, miao-plugin the third uploader.
	america := fig.Data[2*3+2]
	assert.Equal(t, []any{612}, america.X)
	assert.Equal(t, "rgb(99,110,250)", america.Marker.Color)

	assert.False(t, *fig.Layout.ShowLegend)
	require.Len(t, fig.Layout.UpdateMenus, 1)
	buttons := fig.Layout.UpdateMenus[0].Buttons
	require.Len(t, buttons, 1+len(domain.Regions))
	assert.Equal(t, AllRegionsLabel, buttons[0].Label)
	assert.Equal(t, "China", buttons[1].Label)
	assert.Equal(t, "TW/HK/MO", buttons[6].Label)
}

func TestUploaderScatterButtons(t *testing.T) {
	fig := UploaderScatter(abyss.UploadGroups{})
	buttons := fig.Layout.UpdateMenus[0].Buttons

	all := buttons[0].Args
	assert.Equal(t, map[string]any{"visible": visibility("")}, all[0])
	assert.Equal(t, false, all[1].(map[string]any)["showlegend"])
	assert.Equal(t, "Uploader UID Information by Time (All Regions)", all[1].(map[string]any)["title.text"])

	bilibili := buttons[2].Args
	visible := bilibili[0].(map[string]any)["visible"].([]bool)
	require.Len(t, visible, 18)
	for i, v := range visible {
		assert.Equal(t, i >= 3 && i < 6, v, "trace %d", i)
	}
	assert.Equal(t, true, bilibili[1].(map[string]any)["showlegend"])
	assert.Equal(t, "Uploader UID Information by Time (bilibili @ Mainland China)", bilibili[1].(map[string]any)["title.text"])
}

func TestVisibilityAll(t *testing.T) {
	for _, v := range visibility("") {
		assert.True(t, v)
	}
}

func TestPrefixCountBar(t *testing.T) {
	fig := PrefixCountBar([]abyss.PrefixCount{{Prefix: 112, Count: 2}, {Prefix: 800, Count: 1}})

	require.Len(t, fig.Data, 1)
	assert.Equal(t, []any{112, 800}, fig.Data[0].X)
	assert.Equal(t, []any{2, 1}, fig.Data[0].Y)
	assert.Equal(t, DimColor(ColorPrefixBar, 0.6).CSS(), fig.Data[0].Marker.Line.Color)
}

func TestFigureJSON(t *testing.T) {
	data, err := ScheduleBar(nil).JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	layout := decoded["layout"].(map[string]any)
	assert.Equal(t, "group", layout["barmode"])
	title := layout["title"].(map[string]any)
	assert.Equal(t, ScheduleBarTitle, title["text"])

	traces := decoded["data"].([]any)
	require.Len(t, traces, 2)
	assert.Equal(t, []any{}, traces[0].(map[string]any)["x"])
}
