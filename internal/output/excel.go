package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Details"
)

// WriteWorkbook renders the report into a two-sheet xlsx workbook: a summary
// sheet with batch totals and side-by-side in-warranty / out-of-warranty /
// all-serial lists, and a detail sheet with one row per service entry.
func WriteWorkbook(report *Report, path string) error {
	if report == nil {
		return fmt.Errorf("report is required")
	}

	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck // best-effort cleanup on workbook handle

	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("create detail sheet: %w", err)
	}

	if err := writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := writeDetailSheet(f, report); err != nil {
		return err
	}

	_ = f.SetColWidth(summarySheet, "A", "L", 18)
	_ = f.SetColWidth(detailSheet, "A", "J", 18)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type coverageRow struct {
	serial string
	start  string
	end    string
	days   int
}

func writeSummarySheet(f *excelize.File, report *Report) error {
	write := sheetWriter(f, summarySheet)

	if err := write(1, []any{"Batch Summary"}); err != nil {
		return err
	}
	if err := write(2, []any{"Total Queries", "Succeeded", "Failed", "In Warranty", "Out of Warranty"}); err != nil {
		return err
	}
	if err := write(3, []any{report.Total, report.Succeeded, report.Failed, report.InWarranty, report.OutWarranty}); err != nil {
		return err
	}

	var inWarranty, outWarranty, all []coverageRow
	for _, row := range report.Rows {
		cr := coverageRow{serial: row.Serial}
		if row.Coverage != nil {
			cr.start = row.Coverage.StartDate
			cr.end = row.Coverage.EndDate
			cr.days = row.Coverage.RemainingDays
			if row.Coverage.InWarranty() {
				inWarranty = append(inWarranty, cr)
			} else {
				outWarranty = append(outWarranty, cr)
			}
		}
		all = append(all, cr)
	}

	header := []any{
		"In-Warranty Serial", "Coverage Start", "Coverage End", "Days Left",
		"Expired Serial", "Coverage Start", "Coverage End", "Days Overdue",
		"Serial", "Coverage Start", "Coverage End", "Days Left",
	}
	if err := write(5, header); err != nil {
		return err
	}

	rows := len(all)
	if len(inWarranty) > rows {
		rows = len(inWarranty)
	}
	if len(outWarranty) > rows {
		rows = len(outWarranty)
	}

	for i := 0; i < rows; i++ {
		cells := make([]any, 0, 12)
		cells = append(cells, coverageCells(inWarranty, i)...)
		cells = append(cells, coverageCells(outWarranty, i)...)
		cells = append(cells, coverageCells(all, i)...)
		if err := write(6+i, cells); err != nil {
			return err
		}
	}

	return nil
}

func coverageCells(rows []coverageRow, i int) []any {
	if i >= len(rows) {
		return []any{"", "", "", ""}
	}
	row := rows[i]
	if row.end == "" {
		return []any{row.serial, "", "", ""}
	}
	return []any{row.serial, row.start, row.end, row.days}
}

func writeDetailSheet(f *excelize.File, report *Report) error {
	write := sheetWriter(f, detailSheet)

	if err := write(1, []any{
		"Serial", "Status", "Valid Services", "Expired Services", "Total Services",
		"Service Name", "Start Date", "End Date", "Days Left", "Coverage",
	}); err != nil {
		return err
	}

	line := 2
	for _, row := range report.Rows {
		if row.Status != RowQueried {
			if err := write(line, []any{row.Serial, string(row.Status), 0, 0, 0, "", "", "", "", ""}); err != nil {
				return err
			}
			line++
			continue
		}

		if len(row.Services) == 0 {
			if err := write(line, []any{row.Serial, string(row.Status), 0, 0, 0, "no service records", "", "", "", ""}); err != nil {
				return err
			}
			line++
			continue
		}

		for i, entry := range row.Services {
			coverage := "in warranty"
			if entry.Expired() {
				coverage = "expired"
			}
			cells := []any{"", "", "", "", "", entry.ServiceProductName, entry.StartDate, entry.EndDate, int(entry.DateDifference), coverage}
			if i == 0 {
				cells[0] = row.Serial
				cells[1] = string(row.Status)
				cells[2] = row.Counts.Valid
				cells[3] = row.Counts.Expired
				cells[4] = row.Counts.Total
			}
			if err := write(line, cells); err != nil {
				return err
			}
			line++
		}
	}

	return nil
}

func sheetWriter(f *excelize.File, sheet string) func(row int, cells []any) error {
	return func(row int, cells []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, row, err)
		}
		return nil
	}
}
