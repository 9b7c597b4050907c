package dashboard

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/render"
)

const indexTemplateName = "index"

var indexTemplate = template.Must(template.New(indexTemplateName).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDN}}" charset="utf-8"></script>
<style>
body { font-family: sans-serif; margin: 1em 2em; }
h1 { text-align: center; font-weight: bold; }
#utilization-graph { width: 50%; min-height: 450px; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 2px 8px; }
.pager a { margin: 0 4px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
<form id="floor-form" method="get" action="/">
{{range .Floors}}<label><input type="radio" name="floor" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Label}}</label>
{{end}}<input type="hidden" name="top" value="{{.Top}}">
<noscript><button type="submit">Show</button></noscript>
</form>
<div id="utilization-graph" data-schedule="{{.Schedule}}"></div>
<script>
Plotly.newPlot("utilization-graph", {{.Figure.Data}}, {{.Figure.Layout}}, {"responsive": true});
document.querySelectorAll('#floor-form input[name="floor"]').forEach(function (input) {
  input.addEventListener("change", function () {
    fetch("/api/figure?floor=" + encodeURIComponent(input.value) + "&top=" + {{.Top}})
      .then(function (resp) { return resp.json(); })
      .then(function (fig) { Plotly.react("utilization-graph", fig.data, fig.layout); });
    document.querySelectorAll(".pager a").forEach(function (link) {
      var target = new URL(link.href, window.location.href);
      target.searchParams.set("floor", input.value);
      link.href = target.pathname + target.search;
    });
  });
});
</script>
<table id="utilization-table">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
<p class="pager">{{if .PrevURL}}<a class="prev" href="{{.PrevURL}}">&laquo; Prev</a>{{end}}Page {{.Page}} of {{.Pages}}{{if .NextURL}}<a class="next" href="{{.NextURL}}">Next &raquo;</a>{{end}}</p>
<p class="loaded">Schedule {{.Schedule}}, loaded {{.LoadedAt}}</p>
{{end}}
</body>
</html>
`))

type floorOption struct {
	Label   string
	Value   int
	Checked bool
}

type indexData struct {
	Title    string
	CDN      string
	Error    string
	Floors   []floorOption
	Top      int
	Figure   render.Figure
	Headers  []string
	Rows     [][]string
	Page     int
	Pages    int
	PrevURL  string
	NextURL  string
	Schedule int
	LoadedAt string
}

func pageURL(q viewQuery, page int) string {
	v := url.Values{}
	v.Set("floor", strconv.Itoa(int(q.floor)))
	if q.top > 0 {
		v.Set("top", strconv.Itoa(q.top))
	}
	v.Set("page", strconv.Itoa(page))
	return "/?" + v.Encode()
}

func (s *Server) handleIndex(c *gin.Context) {
	data := indexData{Title: PageTitle, CDN: s.cdn}

	q, err := parseQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	table, loadedAt, err := s.Snapshot()
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusServiceUnavailable, indexTemplateName, data)
		return
	}

	for _, f := range domain.Floors {
		data.Floors = append(data.Floors, floorOption{Label: f.Column(), Value: int(f), Checked: f == q.floor})
	}
	data.Top = q.top
	data.Figure = render.UtilizationBar(table, q.floor, q.top)

	rows, pages := abyss.Page(table.Rows, q.page, PageSize)
	data.Headers, data.Rows = render.TableCells(rows)
	data.Pages = pages
	data.Page = q.page
	if data.Page > pages {
		data.Page = pages
	}
	if data.Page > 1 {
		data.PrevURL = pageURL(q, data.Page-1)
	}
	if data.Page < pages {
		data.NextURL = pageURL(q, data.Page+1)
	}
	data.Schedule = table.Schedule
	data.LoadedAt = loadedAt.Format("2006-01-02 15:04:05")

	c.HTML(http.StatusOK, indexTemplateName, data)
}
