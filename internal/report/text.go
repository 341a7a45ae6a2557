package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// WriteText renders a human-readable report: headers, an attachment table,
// hints, warnings and one line per recommendation.
func (r *Report) WriteText(w io.Writer) error {
	scan := r.Scan
	if scan == nil {
		return fmt.Errorf("report has no scan result")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source:     %s\n", scan.Source)
	fmt.Fprintf(&b, "Subject:    %s\n", scan.Subject)
	fmt.Fprintf(&b, "From:       %s\n", scan.Sender)
	if scan.Date != nil {
		fmt.Fprintf(&b, "Date:       %s\n", scan.Date.Format(time.RFC1123Z))
	}
	fmt.Fprintf(&b, "Size:       %s (body %s)\n", humanize.IBytes(uint64(scan.TotalSize)), humanize.IBytes(uint64(scan.BodySize)))
	fmt.Fprintf(&b, "Complexity: %.1f/10\n", scan.ComplexityScore)
	fmt.Fprintf(&b, "Estimated:  %s\n\n", scan.EstimatedTime.Round(time.Second))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if len(scan.Attachments) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Attachment", "Type", "Size", "Complexity", "Pages", "Estimate"})
		table.SetAutoWrapText(false)
		for _, a := range scan.Attachments {
			pages := "-"
			if a.EstimatedPages != nil {
				pages = strconv.Itoa(*a.EstimatedPages)
			}
			estimate := "-"
			if a.EstimatedTime != nil {
				estimate = a.EstimatedTime.Round(time.Second).String()
			}
			table.Append([]string{
				a.Filename,
				a.FileType.String(),
				humanize.IBytes(uint64(a.Size)),
				a.Complexity.String(),
				pages,
				estimate,
			})
		}
		table.Render()
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	b.Reset()
	writeList(&b, "Hints", scan.Hints)
	writeList(&b, "Warnings", scan.Warnings)

	fmt.Fprintf(&b, "Recommendations (%d):\n", len(r.Recommendations))
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "  %s\n", rec.String())
	}
	if cost, ok := r.Summary["estimated_total_cost"].(float64); ok && cost > 0 {
		fmt.Fprintf(&b, "\nEstimated API cost: $%.3f\n", cost)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
	b.WriteString("\n")
}
