package web

import "html/template"

const layout = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Ottawa Real Estate Compare</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
    tr:nth-child(even) { background: #f5f5f5; }
    label { display: block; margin-top: 0.6rem; }
    .error { color: #b00020; }
  </style>
</head>
<body>{{end}}
{{define "foot"}}</body>
</html>{{end}}`

const indexPage = `{{template "head"}}
<h1>Find a home and your commute</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/results">
  <label>Location <input name="search_location" value="{{.Location}}"></label>
  <label>Maximum listings <input name="max_listings" type="number" min="1" value="{{.MaxListings}}"></label>
  <label>Minimum price <input name="price_min" type="number" min="0" value="0"></label>
  <label>Maximum price <input name="price_max" type="number" min="0" value="1000000"></label>
  <label>Bedrooms
    <select name="bedrooms">
      <option value="any">Any</option>{{range .Rooms}}
      <option value="{{.}}">{{.}}+</option>{{end}}
    </select>
  </label>
  <label>Bathrooms
    <select name="bathrooms">
      <option value="any">Any</option>{{range .Rooms}}
      <option value="{{.}}">{{.}}+</option>{{end}}
    </select>
  </label>
  <label>Commute destination <input name="commute_destination" value="{{.Destination}}"></label>
  <label>Commute mode
    <select name="commute_mode">{{range .Modes}}
      <option value="{{.}}"{{if eq . $.Mode}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <p><button type="submit">Search</button></p>
</form>
{{template "foot"}}`

const resultsPage = `{{template "head"}}
<h1>{{.Count}} properties found</h1>
<p>
  Price up to {{.MaxPrice}} · bedrooms {{.MinBedrooms}} · bathrooms {{.MinBathrooms}} ·
  commute to {{.Destination}} by {{.Mode}}{{if .Sample}} · <em>sample data</em>{{end}}
</p>
{{if .Error}}<p class="error">Error processing your request: {{.Error}}</p>
{{else if not .Rows}}<p>No properties found matching your criteria.</p>
{{else}}<table>
  <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>{{range .Rows}}
    <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
  </tbody>
</table>{{end}}
<p><a href="/">New search</a></p>
{{template "foot"}}`

func parseTemplates() *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.New("index").Parse(indexPage))
	template.Must(t.New("results").Parse(resultsPage))
	return t
}
