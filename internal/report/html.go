package report

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/dustin/go-humanize"

	"emlscout/internal/models"
)

var levelColors = map[models.Level]string{
	models.LevelCritical: "#c62828",
	models.LevelHigh:     "#ef6c00",
	models.LevelMedium:   "#f9a825",
	models.LevelLow:      "#2e7d32",
}

// BuildHTML creates a self-contained HTML document of the report
func (r *Report) BuildHTML() string {
	var buffer bytes.Buffer
	scan := r.Scan

	buffer.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buffer.WriteString("<meta charset=\"UTF-8\">\n")
	buffer.WriteString("<title>" + html.EscapeString(scan.Subject) + "</title>\n")

	buffer.WriteString("<style>\n")
	buffer.WriteString("body { font-family: Arial, sans-serif; margin: 20px; }\n")
	buffer.WriteString(".email-header { margin-bottom: 20px; border-bottom: 1px solid #ccc; padding-bottom: 10px; }\n")
	buffer.WriteString(".header-row { margin: 5px 0; }\n")
	buffer.WriteString(".header-label { font-weight: bold; width: 110px; display: inline-block; }\n")
	buffer.WriteString("table { border-collapse: collapse; width: 100%; }\n")
	buffer.WriteString("th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }\n")
	buffer.WriteString(".recommendation { margin: 10px 0; padding-left: 10px; border-left: 4px solid #999; }\n")
	buffer.WriteString(".warning { color: #c62828; }\n")
	buffer.WriteString("</style>\n")
	buffer.WriteString("</head>\n<body>\n")

	buffer.WriteString("<div class=\"email-header\">\n")
	addHeader(&buffer, "Source", scan.Source)
	addHeader(&buffer, "From", scan.Sender)
	addHeader(&buffer, "Subject", scan.Subject)
	if scan.Date != nil {
		addHeader(&buffer, "Date", scan.Date.Format(time.RFC1123Z))
	}
	addHeader(&buffer, "Size", humanize.IBytes(uint64(scan.TotalSize)))
	addHeader(&buffer, "Complexity", fmt.Sprintf("%.1f / 10", scan.ComplexityScore))
	addHeader(&buffer, "Estimated time", scan.EstimatedTime.Round(time.Second).String())
	buffer.WriteString("</div>\n")

	if len(scan.Attachments) > 0 {
		buffer.WriteString(fmt.Sprintf("<h3>Attachments (%d)</h3>\n", len(scan.Attachments)))
		buffer.WriteString("<table>\n<tr><th>Name</th><th>Type</th><th>Size</th><th>Complexity</th><th>Features</th></tr>\n")
		for _, a := range scan.Attachments {
			buffer.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				html.EscapeString(a.Filename), a.FileType, humanize.IBytes(uint64(a.Size)),
				a.Complexity, html.EscapeString(a.Features.String())))
		}
		buffer.WriteString("</table>\n")
	}

	if len(scan.Warnings) > 0 {
		buffer.WriteString("<h3>Warnings</h3>\n<ul>\n")
		for _, w := range scan.Warnings {
			buffer.WriteString("<li class=\"warning\">" + html.EscapeString(w) + "</li>\n")
		}
		buffer.WriteString("</ul>\n")
	}

	buffer.WriteString(fmt.Sprintf("<h3>Recommendations (%d)</h3>\n", len(r.Recommendations)))
	for _, rec := range r.Recommendations {
		buffer.WriteString(fmt.Sprintf("<div class=\"recommendation\" style=\"border-color: %s\">\n", levelColors[rec.Level]))
		buffer.WriteString(fmt.Sprintf("<strong>[%s] %s</strong><br>\n", rec.Level, html.EscapeString(rec.Title)))
		buffer.WriteString(html.EscapeString(rec.Description) + "<br>\n")
		buffer.WriteString("<em>" + html.EscapeString(rec.Action) + "</em>\n")
		buffer.WriteString("</div>\n")
	}

	buffer.WriteString("</body>\n</html>")
	return buffer.String()
}

// addHeader adds a header line to the HTML buffer
func addHeader(buffer *bytes.Buffer, label, value string) {
	buffer.WriteString(fmt.Sprintf("<div class=\"header-row\"><span class=\"header-label\">%s</span> %s</div>\n",
		label, html.EscapeString(value)))
}
