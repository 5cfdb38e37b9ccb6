// Package output renders the aggregated result store into reports.
package output

import (
	"fmt"
	"strings"

	"github.com/warrantylens/warrantylens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// RowStatus classifies one serial in a report.
type RowStatus string

const (
	RowQueried   RowStatus = "success"
	RowFailed    RowStatus = "failed"
	RowUnqueried RowStatus = "unqueried"
)

// Row is the per-serial report line: the query outcome plus the most
// relevant coverage window.
type Row struct {
	Serial   string              `json:"serial"`
	Status   RowStatus           `json:"status"`
	Counts   core.ServiceCounts  `json:"service_counts"`
	Coverage *core.Coverage      `json:"coverage,omitempty"`
	Services []core.ServiceEntry `json:"services,omitempty"`
}

// Report is the export input: the submitted serial order joined with the
// store snapshot.
type Report struct {
	Rows        []Row `json:"rows"`
	Total       int   `json:"total"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	InWarranty  int   `json:"in_warranty"`
	OutWarranty int   `json:"out_of_warranty"`
}

// BuildReport joins the ordered serial list with a store snapshot. Serials
// with no snapshot entry are reported as unqueried; failures count against
// Succeeded. Row order follows the submitted list.
func BuildReport(serials []string, snapshot map[string]*core.QueryResult) *Report {
	report := &Report{Total: len(serials)}

	for _, serial := range serials {
		result := snapshot[serial]
		if result == nil {
			report.Rows = append(report.Rows, Row{Serial: serial, Status: RowUnqueried})
			continue
		}
		if !result.Success() {
			report.Rows = append(report.Rows, Row{Serial: serial, Status: RowFailed})
			continue
		}

		report.Succeeded++
		row := Row{
			Serial:   serial,
			Status:   RowQueried,
			Counts:   result.ServiceCounts,
			Services: core.Services(result.Payload),
		}
		if coverage, ok := core.LatestCoverage(result.Payload); ok {
			row.Coverage = &coverage
			if coverage.InWarranty() {
				report.InWarranty++
			} else {
				report.OutWarranty++
			}
		}
		report.Rows = append(report.Rows, row)
	}

	// Unqueried serials count as failed in the totals, matching how the
	// summary sheet reads for operators resubmitting the remainder.
	report.Failed = report.Total - report.Succeeded

	return report
}

// Formatter renders a report.
type Formatter interface {
	FormatReport(report *Report) (string, error)
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}
