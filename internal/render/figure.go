// Package render builds plotly figures for the abyss statistics and writes
// them as standalone HTML pages.
package render

import "encoding/json"

// Figure is a plotly figure: a list of traces and a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// JSON returns the figure encoded for plotly.
func (f Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// Trace types.
const (
	TraceBar     = "bar"
	TraceScatter = "scatter"
)

// Trace is a single plotly data series.
type Trace struct {
	Type          string  `json:"type"`
	Name          string  `json:"name,omitempty"`
	X             []any   `json:"x"`
	Y             []any   `json:"y"`
	Mode          string  `json:"mode,omitempty"`
	Marker        *Marker `json:"marker,omitempty"`
	Text          []any   `json:"text,omitempty"`
	TextTemplate  string  `json:"texttemplate,omitempty"`
	TextPosition  string  `json:"textposition,omitempty"`
	HoverTemplate string  `json:"hovertemplate,omitempty"`
	Visible       *bool   `json:"visible,omitempty"`
	ShowLegend    *bool   `json:"showlegend,omitempty"`
	LegendGroup   string  `json:"legendgroup,omitempty"`
}

// Marker styles the points or bars of a trace. Color is a single CSS color
// or one color per point.
type Marker struct {
	Color any   `json:"color,omitempty"`
	Line  *Line `json:"line,omitempty"`
}

// Line is a marker outline.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Layout is the plotly figure layout.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	BarMode     string       `json:"barmode,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
}

// Title is a figure or axis title. X is the horizontal position in paper
// coordinates; 0.5 centers it.
type Title struct {
	Text string   `json:"text"`
	X    *float64 `json:"x,omitempty"`
}

// Axis configures one plot axis.
type Axis struct {
	Title         *Title `json:"title,omitempty"`
	Type          string `json:"type,omitempty"`
	TickFormat    string `json:"tickformat,omitempty"`
	CategoryOrder string `json:"categoryorder,omitempty"`
}

// UpdateMenu is a dropdown or button row.
type UpdateMenu struct {
	Buttons    []Button       `json:"buttons"`
	Direction  string         `json:"direction,omitempty"`
	Pad        map[string]int `json:"pad,omitempty"`
	ShowActive bool           `json:"showactive"`
	X          float64        `json:"x"`
	XAnchor    string         `json:"xanchor,omitempty"`
	Y          float64        `json:"y"`
	YAnchor    string         `json:"yanchor,omitempty"`
}

// Button is one entry of an UpdateMenu. Args are passed to the plotly
// method, e.g. "update" takes a trace update and a layout update.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Bool returns a pointer to b for optional fields.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f for optional fields.
func Float(f float64) *float64 {
	return &f
}

func centeredTitle(text string) *Title {
	return &Title{Text: text, X: Float(0.5)}
}

func axisTitle(text string) *Title {
	return &Title{Text: text}
}
