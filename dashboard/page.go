package dashboard

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/pivolan/marathon_analyzer/logger"
)

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"hours": func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
}).Parse(indexHTML))

type pageData struct {
	Query    query
	Genders  []string
	Plots    []plotOption
	Results  resultsPage
	Gap      models.GenderGap
	HasGap   bool
	Report   reportResponse
	Encoded  template.URL
	PrevLink template.URL
	NextLink template.URL
}

type plotOption struct {
	Value string
	Label string
}

var plotOptions = []plotOption{
	{Value: analysis.ViewTop, Label: "Top 50"},
	{Value: analysis.ViewPopulation, Label: "Runner Population"},
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	gap, hasGap := s.dataset(q).GenderGap()
	data := pageData{
		Query:   q,
		Genders: []string{analysis.GenderAll, analysis.GenderMale, analysis.GenderFemale},
		Plots:   plotOptions,
		Results: s.resultsPage(q),
		Gap:     gap,
		HasGap:  hasGap,
		Report:  newReportResponse(s.store.Load()),
		Encoded: template.URL(q.encode(nil)),
	}
	if q.Page > 1 {
		data.PrevLink = template.URL("/?" + q.encode(map[string]string{"page": strconv.Itoa(q.Page - 1)}))
	}
	if q.Page < data.Results.Pages {
		data.NextLink = template.URL("/?" + q.encode(map[string]string{"page": strconv.Itoa(q.Page + 1)}))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error(r.Context(), "render page", logger.Error(err))
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Berlin Marathon runners</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; }
aside { width: 300px; padding: 16px; background: #f3f3f3; min-height: 100vh; }
main { flex: 1; padding: 16px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
img { max-width: 100%; }
iframe { width: 100%; height: 2600px; border: 0; }
</style>
</head>
<body>
<aside>
<h1>Runners!</h1>
<p>An analysis of the Berlin Marathon runners, {{.Query.From}} to {{.Query.To}}.</p>
<ul>
<li>How have the average times changed over the years?</li>
<li>How have the fastest times changed over the years?</li>
<li>How do age and gender affect running times?</li>
<li>Where are most runners from?</li>
<li>Where are the fastest runners from?</li>
</ul>
<form method="get" action="/">
<label>From <input type="number" name="from" value="{{.Query.From}}"></label><br>
<label>To <input type="number" name="to" value="{{.Query.To}}"></label><br>
<label>Select Gender
<select name="gender">{{range .Genders}}<option value="{{.}}"{{if eq . $.Query.Gender}} selected{{end}}>{{.}}</option>{{end}}</select>
</label><br>
<label>Select Plot
<select name="plot">{{range .Plots}}<option value="{{.Value}}"{{if eq .Value $.Query.Plot}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</label><br>
<button type="submit">Apply</button>
</form>
<h3>Data</h3>
<p>{{.Report.Source}}: {{.Report.Kept}} of {{.Report.Loaded}} records kept.</p>
<ul>{{range .Report.Excluded}}<li>{{.Reason}}: {{.Count}}</li>{{end}}</ul>
</aside>
<main>
<h2>Average and Finishing times</h2>
<img src="/png/yearly.png?{{.Encoded}}" alt="yearly times">
<h2>{{if eq .Query.Plot "population"}}Where are most runners from?{{else}}Where are the top runners from?{{end}}</h2>
<img src="/png/{{.Query.Plot}}.png?{{.Encoded}}" alt="{{.Query.Plot}}">
{{if .HasGap}}<p>Mean time: male {{hours .Gap.Male}} h, female {{hours .Gap.Female}} h, difference {{hours .Gap.Difference}} h.</p>{{end}}
<h2>Fastest results</h2>
<table>
<tr><th>year</th><th>country</th><th>gender</th><th>age</th><th>time</th></tr>
{{range .Results.Rows}}<tr><td>{{.Year}}</td><td>{{.Country}}</td><td>{{.Gender}}</td><td>{{if .HasAge}}{{.Age}}{{end}}</td><td>{{.Time}}</td></tr>
{{end}}</table>
<p>
{{if .PrevLink}}<a href="{{.PrevLink}}">previous</a>{{end}}
page {{.Results.Page}} of {{.Results.Pages}} ({{.Results.Total}} results)
{{if .NextLink}}<a href="{{.NextLink}}">next</a>{{end}}
</p>
<h2>Interactive charts</h2>
<iframe src="/charts?{{.Encoded}}"></iframe>
</main>
</body>
</html>
`
