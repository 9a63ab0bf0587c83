// Package render turns merged attendance reports into markup and export files.
package render

import (
	"html/template"
	"strings"
	"time"

	"attendview/internal/attendance"
)

// DefaultLayout mimics the browser's default en-US date-time rendering.
const DefaultLayout = "1/2/2006, 3:04:05 PM"

// Placeholder is shown in the time column when a report has no timestamp.
const Placeholder = "-"

var tableTmpl = template.Must(template.New("table").Parse(
	`<table style="width:100%;border-collapse:collapse;margin-top:10px">
<thead style="background:#1f5c1c;color:white"><tr>` +
		`<th style="padding:8px;border:1px solid #ccc">Name</th>` +
		`<th style="padding:8px;border:1px solid #ccc">Reg No.</th>` +
		`{{if .ShowStatus}}<th style="padding:8px;border:1px solid #ccc">Status</th>{{end}}` +
		`{{if .ShowTime}}<th style="padding:8px;border:1px solid #ccc">Timestamp</th>{{end}}` +
		`</tr></thead>
<tbody>
{{range .Rows}}<tr>` +
		`<td style="padding:8px;border:1px solid #ccc">{{.Name}}</td>` +
		`<td style="padding:8px;border:1px solid #ccc">{{.RegNumber}}</td>` +
		`{{if $.ShowStatus}}<td style="padding:8px;border:1px solid #ccc">{{.Status}}</td>{{end}}` +
		`{{if $.ShowTime}}<td style="padding:8px;border:1px solid #ccc">{{.Time}}</td>{{end}}` +
		`</tr>
{{end}}</tbody></table>`))

type row struct {
	Name      string
	RegNumber string
	Status    string
	Time      string
}

type tableData struct {
	ShowStatus bool
	ShowTime   bool
	Rows       []row
}

// Renderer formats timestamps in a fixed location and layout so that output
// only depends on its inputs.
type Renderer struct {
	loc    *time.Location
	layout string
}

// New returns a renderer. A nil location means time.Local and an empty
// layout means DefaultLayout.
func New(loc *time.Location, layout string) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultLayout
	}
	return &Renderer{loc: loc, layout: layout}
}

var defaultRenderer = New(nil, "")

// RenderTable renders records with the default renderer.
func RenderTable(records []attendance.Report, showStatus, showTime bool) string {
	return defaultRenderer.Table(records, showStatus, showTime)
}

// Table renders records as an HTML table. Name, Reg No. are always present;
// Status and Timestamp columns are optional. All text is escaped.
func (r *Renderer) Table(records []attendance.Report, showStatus, showTime bool) string {
	data := tableData{ShowStatus: showStatus, ShowTime: showTime, Rows: make([]row, 0, len(records))}
	for _, rec := range records {
		data.Rows = append(data.Rows, row{
			Name:      rec.Name,
			RegNumber: rec.RegNumber,
			Status:    string(rec.Status),
			Time:      r.FormatTimestamp(rec.Timestamp),
		})
	}
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = tableTmpl.Execute(&b, data)
	return b.String()
}

// FormatTimestamp returns the display form of ts, or Placeholder for nil.
func (r *Renderer) FormatTimestamp(ts *attendance.Timestamp) string {
	if ts == nil {
		return Placeholder
	}
	return ts.Time(r.loc).Format(r.layout)
}

// Document wraps a rendered table in a standalone HTML page. With print set
// the page opens the print dialog once loaded.
func Document(table string, print bool) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(table)
	if print {
		b.WriteString("<script>window.onload=function(){window.print();};</script>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
