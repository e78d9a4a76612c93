package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nuclearlighters/diskmon/internal/udisk"
)

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Disk Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; margin-top: 1.5em; }
table { border-collapse: collapse; margin-top: 0.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; font-size: 0.9em; }
th { background: #f0f0f0; }
.meta { color: #777; font-size: 0.8em; }
</style>
</head>
<body>
<h1>Disk Report</h1>
<p class="meta">Last updated: {{.GeneratedAt.Format "Mon Jan 2 15:04:05 2006 MST"}}</p>
{{if not .Disks}}<p>No disks found.</p>{{end}}
{{range .Disks}}
<h2>{{.ID}}{{with .Model}} &mdash; {{.}}{{end}}</h2>
{{with .Usage}}
<table>
<tr><th>Total</th><th>Used</th><th>Free</th><th>Percent</th></tr>
<tr><td>{{.Total}}</td><td>{{.Used}}</td><td>{{.Free}}</td><td>{{formatNumber .Percent}}%</td></tr>
</table>
{{end}}
{{with .Rows}}
<table>
<tr><th>Attribute</th><th>Value</th></tr>
{{range .}}<tr><td>{{.Key}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}
{{range .Partitions}}
<p class="meta">Partition {{.ID}}{{with .Fields.MountPoints}} mounted at {{.}}{{end}}</p>
{{end}}
{{end}}
</body>
</html>
`

// Row is one flat key/value pair rendered for a disk.
type Row struct {
	Key   string
	Value string
}

type reportDisk struct {
	udisk.Disk
	Rows []Row
}

type reportData struct {
	GeneratedAt time.Time
	Disks       []reportDisk
}

var tmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"formatNumber": FormatNumber}).
	Parse(reportTemplate))

// Render produces the HTML report for an ordered disk sequence.
func Render(disks []udisk.Disk, generatedAt time.Time) (string, error) {
	data := reportData{GeneratedAt: generatedAt}
	for _, d := range disks {
		data.Disks = append(data.Disks, reportDisk{Disk: d, Rows: flatten(d)})
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

// WriteFile renders the report and writes it under dir using the
// timestamp layout as the file name. Returns the written path.
func WriteFile(disks []udisk.Disk, dir, nameLayout string) (string, error) {
	now := time.Now()
	html, err := Render(disks, now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, now.Format(nameLayout))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	log.Info().Str("path", path).Msg("Report written")
	return path, nil
}

// flatten turns a disk's sparse mappings into ordered rows for the
// template, attributes after info, each sorted by key.
func flatten(d udisk.Disk) []Row {
	rows := make([]Row, 0, len(d.Info)+len(d.Attributes))
	for _, m := range []map[string]string{d.Info, d.Attributes} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, Row{Key: k, Value: m[k]})
		}
	}
	return rows
}
