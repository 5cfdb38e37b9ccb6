package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warrantylens/warrantylens/internal/core/store"
	"github.com/warrantylens/warrantylens/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export [serials...]",
	Short: "Export stored results into a report",
	Long: `Render the stored query results for the given serials into a report. The
xlsx format writes a two-sheet workbook (summary + per-service details);
table, json, and markdown print to stdout. Row order follows the serial
list; omitting serials exports the whole store.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("serials-file", "", "read serials from file (- for stdin)")
	exportCmd.Flags().String("format", "xlsx", "report format: xlsx, table, json, markdown")
	exportCmd.Flags().String("out", "", "xlsx output path (default <export.dir>/warranty_report_<timestamp>.xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	serialsFile, err := cmd.Flags().GetString("serials-file")
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint:errcheck // stderr sync is best-effort

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}

	var serials []string
	if len(args) > 0 || strings.TrimSpace(serialsFile) != "" {
		serials, err = resolveSerials(args, serialsFile, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	} else {
		serials = st.Serials()
	}
	if len(serials) == 0 {
		return fmt.Errorf("nothing to export: store is empty and no serials given")
	}

	report := output.BuildReport(serials, st.Snapshot())
	if report.Succeeded == 0 && report.Failed == report.Total {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no successful results among the requested serials")
	}

	if strings.EqualFold(strings.TrimSpace(formatValue), "xlsx") {
		if outPath == "" {
			outPath = filepath.Join(cfg.Export.Dir,
				fmt.Sprintf("warranty_report_%s.xlsx", time.Now().Format("20060102_150405")))
		}
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}
		}
		if err := output.WriteWorkbook(report, outPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outPath)
		return nil
	}

	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	rendered, err := output.NewFormatter(format).FormatReport(report)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}
