package stats

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/rotisserie/eris"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(r), "stats: encode json")
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Corpus Statistics Report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; background: #f8f9fa; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { color: #1a365d; border-bottom: 3px solid #3182ce; padding-bottom: 10px; }
h2 { color: #2d3748; margin-top: 40px; }
.metric { display: inline-block; margin: 10px 20px 10px 0; padding: 15px; background: #f7fafc; border-left: 4px solid #3182ce; border-radius: 4px; }
.metric-value { font-size: 24px; font-weight: bold; color: #1a365d; }
.metric-label { font-size: 14px; color: #718096; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th, td { padding: 12px; text-align: left; border-bottom: 1px solid #e2e8f0; }
th { background: #edf2f7; font-weight: 600; }
.bar { height: 20px; background: #e2e8f0; border-radius: 10px; overflow: hidden; margin: 5px 0; }
.fill { height: 100%; background: #3182ce; }
.footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #e2e8f0; color: #718096; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
<h1>Corpus Statistics Report</h1>
<p><strong>Generated:</strong> {{.Meta.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>

<h2>Overview</h2>
<div class="metric"><div class="metric-value">{{.Overview.TotalCases}}</div><div class="metric-label">Total Cases</div></div>
<div class="metric"><div class="metric-value">{{.Overview.CountriesCount}}</div><div class="metric-label">Countries</div></div>
<div class="metric"><div class="metric-value">{{.Overview.DomainsCount}}</div><div class="metric-label">Legal Domains</div></div>
<div class="metric"><div class="metric-value">{{.Overview.LanguagesCount}}</div><div class="metric-label">Languages</div></div>

<h2>Geographic Distribution</h2>
<table><thead><tr><th>Country</th><th>Cases</th><th>Percentage</th><th>Distribution</th></tr></thead><tbody>
{{range .Geographic.CountryRankings}}<tr><td><strong>{{.Key}}</strong></td><td>{{.Cases}}</td><td>{{.Percentage}}%</td><td><div class="bar"><div class="fill" style="width: {{.Percentage}}%"></div></div></td></tr>
{{end}}</tbody></table>

<h2>Legal Domains</h2>
<table><thead><tr><th>Domain</th><th>Cases</th><th>Percentage</th><th>Distribution</th></tr></thead><tbody>
{{range .Domains.DomainRankings}}<tr><td><strong>{{.Key}}</strong></td><td>{{.Cases}}</td><td>{{.Percentage}}%</td><td><div class="bar"><div class="fill" style="width: {{.Percentage}}%"></div></div></td></tr>
{{end}}</tbody></table>

<h2>Gap Mechanisms</h2>
<table><thead><tr><th>Mechanism</th><th>Cases</th><th>Percentage</th><th>Distribution</th></tr></thead><tbody>
{{range .Mechanisms.Rankings}}<tr><td><strong>{{.Key}}</strong></td><td>{{.Cases}}</td><td>{{.Percentage}}%</td><td><div class="bar"><div class="fill" style="width: {{.Percentage}}%"></div></div></td></tr>
{{end}}</tbody></table>

<h2>Data Quality</h2>
<div class="metric"><div class="metric-value">{{.Quality.Score.HighConfidencePct}}%</div><div class="metric-label">High Confidence Data</div></div>
<div class="metric"><div class="metric-value">{{.Quality.Score.VerifiedPct}}%</div><div class="metric-label">Verified Cases</div></div>
<div class="metric"><div class="metric-value">{{.Quality.Score.WellSourcedPct}}%</div><div class="metric-label">Well Sourced (2+ citations)</div></div>

<div class="footer"><p>Generated automatically by the gapcheck statistics tool.</p></div>
</div>
</body>
</html>
`))

// WriteHTML writes the report as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	return eris.Wrap(htmlReport.Execute(w, r), "stats: render html")
}
