package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders a report as an ASCII table.
type TableFormatter struct{}

// MarkdownFormatter renders the same table in Markdown.
type MarkdownFormatter struct{}

// FormatReport renders the report as a table.
func (f *TableFormatter) FormatReport(report *Report) (string, error) {
	t, err := buildTable(report)
	if err != nil || t == nil {
		return "", err
	}
	t.SetStyle(table.StyleRounded)
	return t.Render(), nil
}

// FormatReport renders the report as a Markdown table.
func (f *MarkdownFormatter) FormatReport(report *Report) (string, error) {
	t, err := buildTable(report)
	if err != nil || t == nil {
		return "", err
	}
	return t.RenderMarkdown(), nil
}

func buildTable(report *Report) (table.Writer, error) {
	if report == nil {
		return nil, nil
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Serial", "Status", "Valid", "Expired", "Total", "Coverage Ends", "Days Left"})

	for _, row := range report.Rows {
		end := ""
		days := ""
		if row.Coverage != nil {
			end = row.Coverage.EndDate
			days = fmt.Sprintf("%d", row.Coverage.RemainingDays)
		}
		t.AppendRow(table.Row{
			row.Serial,
			string(row.Status),
			row.Counts.Valid,
			row.Counts.Expired,
			row.Counts.Total,
			end,
			days,
		})
	}

	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d/%d ok", report.Succeeded, report.Total),
		"",
		"",
		"",
		fmt.Sprintf("%d in warranty", report.InWarranty),
		fmt.Sprintf("%d expired", report.OutWarranty),
	})

	return t, nil
}
