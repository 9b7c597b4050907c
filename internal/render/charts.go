package render

import (
	"fmt"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
)

// Figure titles and axis labels.
const (
	ScheduleBarTitle     = "Recent Six Schedule Abyss Upload Stat"
	UploaderScatterTitle = "Uploader UID Information by Time"
	PrefixCountTitle     = "Upload Count by UID Group"
	AllRegionsLabel      = "All"
	allRegionsTitle      = "All Regions"
	timeLayout           = "2006-01-02 15:04:05"
)

// Series names of the schedule bar chart.
const (
	SeriesAbyssTotal    = "SpiralAbyssTotal"
	SeriesAbyssFullStar = "SpiralAbyssFullStar"
)

// UtilizationBar charts each character's rate on a floor, highest first.
// Rows without a rate on the floor are left out; topN <= 0 keeps every row.
func UtilizationBar(table domain.UtilizationTable, floor domain.Floor, topN int) Figure {
	sorted := abyss.SortByFloor(table.Rows, floor)
	var rated []domain.UtilizationRow
	for _, row := range sorted {
		if _, ok := row.Rate(floor); ok {
			rated = append(rated, row)
		}
	}
	rated = abyss.TopN(rated, topN)

	x := make([]any, len(rated))
	y := make([]any, len(rated))
	for i, row := range rated {
		rate, _ := row.Rate(floor)
		x[i] = row.Name
		y[i] = rate
	}

	return Figure{
		Data: []Trace{{
			Type:          TraceBar,
			Name:          floor.Column(),
			X:             x,
			Y:             y,
			Marker:        &Marker{Color: cssColors(Gradient(ColorRateHigh, ColorRateLow, len(rated)))},
			HoverTemplate: "%{x}: %{y:.2%}<extra></extra>",
		}},
		Layout: Layout{
			Title: centeredTitle(fmt.Sprintf("%s Utilization Rate (Schedule %d)", floor.Column(), table.Schedule)),
			XAxis: &Axis{Title: axisTitle(domain.ColumnText), CategoryOrder: "total descending"},
			YAxis: &Axis{Title: axisTitle(floor.Column()), TickFormat: ".0%"},
		},
	}
}

// ScheduleBar charts total and full-star uploads per schedule as grouped bars.
func ScheduleBar(stats []domain.OverviewStat) Figure {
	x := make([]any, len(stats))
	totals := make([]any, len(stats))
	fullStars := make([]any, len(stats))
	for i, s := range stats {
		x[i] = s.ScheduleID
		totals[i] = s.SpiralAbyssTotal
		fullStars[i] = s.SpiralAbyssFullStar
	}

	bar := func(name string, y []any, color domain.RGB) Trace {
		return Trace{
			Type:         TraceBar,
			Name:         name,
			X:            x,
			Y:            y,
			Marker:       &Marker{Color: color.CSS()},
			TextTemplate: "%{y}",
			TextPosition: "auto",
		}
	}

	return Figure{
		Data: []Trace{
			bar(SeriesAbyssTotal, totals, ColorDarkCyan),
			bar(SeriesAbyssFullStar, fullStars, ColorCornflowerBlue),
		},
		Layout: Layout{
			Title:   centeredTitle(ScheduleBarTitle),
			XAxis:   &Axis{Title: axisTitle("Schedule Number"), Type: "category"},
			YAxis:   &Axis{Title: axisTitle("Total Count")},
			BarMode: "group",
		},
	}
}

// UploaderScatter plots upload time against UID prefix with one trace per
// region and uploader, in domain.Regions then domain.Uploaders order. A
// dropdown switches between all regions and a single region.
func UploaderScatter(groups abyss.UploadGroups) Figure {
	var traces []Trace
	for _, region := range domain.Regions {
		for _, uploader := range domain.Uploaders {
			points := groups.Get(region.Key, uploader)
			x := make([]any, len(points))
			y := make([]any, len(points))
			for i, p := range points {
				x[i] = p.Prefix
				y[i] = p.Time.Format(timeLayout)
			}
			traces = append(traces, Trace{
				Type:        TraceScatter,
				Name:        string(uploader),
				X:           x,
				Y:           y,
				Mode:        "markers",
				Marker:      &Marker{Color: domain.UploaderColors[uploader].CSS()},
				LegendGroup: region.Key,
			})
		}
	}

	buttons := []Button{regionButton(AllRegionsLabel, allRegionsTitle, visibility(""), false)}
	for _, region := range domain.Regions {
		buttons = append(buttons, regionButton(region.Key, region.Title, visibility(region.Key), true))
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      centeredTitle(UploaderScatterTitle),
			XAxis:      &Axis{Title: axisTitle("Starting Number of UID")},
			YAxis:      &Axis{Title: axisTitle("Datetime")},
			ShowLegend: Bool(false),
			UpdateMenus: []UpdateMenu{{
				Buttons:    buttons,
				Direction:  "down",
				Pad:        map[string]int{"r": 10, "t": 10},
				ShowActive: true,
				X:          0.1,
				XAnchor:    "left",
				Y:          1.08,
				YAnchor:    "top",
			}},
		},
	}
}

// visibility returns the trace visibility vector for a region key. An empty
// key shows every trace.
func visibility(key string) []bool {
	visible := make([]bool, 0, len(domain.Regions)*len(domain.Uploaders))
	for _, region := range domain.Regions {
		for range domain.Uploaders {
			visible = append(visible, key == "" || region.Key == key)
		}
	}
	return visible
}

func regionButton(label, title string, visible []bool, showLegend bool) Button {
	return Button{
		Label:  label,
		Method: "update",
		Args: []any{
			map[string]any{"visible": visible},
			map[string]any{
				"showlegend": showLegend,
				"title.text": fmt.Sprintf("%s (%s)", UploaderScatterTitle, title),
			},
		},
	}
}

// PrefixCountBar charts the number of uploads per UID prefix.
func PrefixCountBar(counts []abyss.PrefixCount) Figure {
	x := make([]any, len(counts))
	y := make([]any, len(counts))
	for i, c := range counts {
		x[i] = c.Prefix
		y[i] = c.Count
	}

	return Figure{
		Data: []Trace{{
			Type: TraceBar,
			Name: "Uploads",
			X:    x,
			Y:    y,
			Marker: &Marker{
				Color: ColorPrefixBar.CSS(),
				Line:  &Line{Color: DimColor(ColorPrefixBar, 0.6).CSS(), Width: 1},
			},
		}},
		Layout: Layout{
			Title: centeredTitle(PrefixCountTitle),
			XAxis: &Axis{Title: axisTitle("Starting Number of UID")},
			YAxis: &Axis{Title: axisTitle("Total Count")},
		},
	}
}
