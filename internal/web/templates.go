package web

import (
	"html/template"
	"io"

	"github.com/pfrederiksen/cfp-search/internal/event"
)

var templates = template.Must(template.New("page").Parse(pageTemplate + tableTemplate))

// RenderTable writes the events as a standalone HTML table with clickable CFP links
func RenderTable(w io.Writer, events []*event.Event) error {
	return templates.ExecuteTemplate(w, "table", tableData{Columns: event.Columns, Events: events})
}

type tableData struct {
	Columns []string
	Events  []*event.Event
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Keyword string
	Years   []option
	Types   []option
	Regions []option
	Error   string
	Message string
	Summary string
	Table   tableData
	Shown   bool
}

const tableTemplate = `{{define "table"}}<table class="events">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Events}}
<tr><td>{{.Abbreviation}}</td><td>{{.Name}}</td><td>{{.Type}}</td><td>{{.StartDate}}</td><td>{{.EndDate}}</td><td>{{.Deadline}}</td><td>{{.Location}}</td><td>{{.Country}}</td><td>{{.Region}}</td><td>{{if eq .DeadlineLink "Undefined"}}Undefined{{else}}<a href="{{.DeadlineLink}}" target="_blank" rel="noopener">{{.DeadlineLink}}</a>{{end}}</td></tr>
{{- end}}
</tbody>
</table>
{{end}}`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CFP search</title>
<style>
body { font-family: sans-serif; margin: 2em; }
form label { display: inline-block; vertical-align: top; margin-right: 1em; }
table.events { border-collapse: collapse; margin-top: 1em; }
table.events th, table.events td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>Call for papers search</h1>
<form method="get" action="/">
<label>Keyword<br><input type="text" name="keyword" value="{{.Keyword}}" required></label>
<label>Year<br><select name="year">{{range .Years}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
<label>Type<br><select name="type" multiple size="3">{{range .Types}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
<label>Region<br><select name="region" multiple size="6">{{range .Regions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
<label><br><button type="submit">Search</button></label>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .Shown}}<p>{{.Summary}}</p>
{{template "table" .Table}}{{end}}
</body>
</html>
`
