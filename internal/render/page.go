package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// DefaultCDN is the plotly.js bundle referenced by written pages.
const DefaultCDN = "https://cdn.plot.ly/plotly-2.27.0.min.js"

// PageOptions configures a standalone figure page.
type PageOptions struct {
	Title   string
	CDN     string
	Figures []Figure
}

type pageFigure struct {
	ID     string
	Figure Figure
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDN}}" charset="utf-8"></script>
</head>
<body>
{{range .Figures}}<div id="{{.ID}}" class="plotly-graph-div" style="height:100%; width:100%;"></div>
<script>Plotly.newPlot({{.ID}}, {{.Figure.Data}}, {{.Figure.Layout}}, {"responsive": true});</script>
{{end}}</body>
</html>
`))

// WritePage writes a standalone HTML document that loads plotly from the CDN
// and draws each figure in its own div.
func WritePage(w io.Writer, opts PageOptions) error {
	if opts.CDN == "" {
		opts.CDN = DefaultCDN
	}

	figures := make([]pageFigure, len(opts.Figures))
	for i, f := range opts.Figures {
		figures[i] = pageFigure{ID: fmt.Sprintf("figure-%d", i), Figure: f}
	}

	data := struct {
		Title   string
		CDN     string
		Figures []pageFigure
	}{opts.Title, opts.CDN, figures}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes the page to dir/name, creating dir, and returns the path.
func WriteFile(dir, name string, opts PageOptions) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := WritePage(&buf, opts); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
