package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/config"
	"github.com/warrantylens/warrantylens/internal/core"
	"github.com/warrantylens/warrantylens/internal/core/engine"
	"github.com/warrantylens/warrantylens/internal/core/fetcher"
	"github.com/warrantylens/warrantylens/internal/core/store"
	"github.com/warrantylens/warrantylens/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check [serials...]",
	Short: "Batch-check warranty status for serial numbers",
	Long: `Check warranty status for one or more hardware serial numbers. Serials can
be passed as arguments or read from a file (one per line; commas and
whitespace also separate). Results persist in the store across runs; failed
serials are re-presented for resubmission.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("serials-file", "", "read serials from file (- for stdin)")
	checkCmd.Flags().String("output", "table", "output format: table, json, markdown")
	checkCmd.Flags().String("retry-file", "", "write failed serials to this file for resubmission")
	checkCmd.Flags().Bool("quiet", false, "suppress per-result stream output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	serialsFile, err := cmd.Flags().GetString("serials-file")
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	retryFile, err := cmd.Flags().GetString("retry-file")
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
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

	serials, err := resolveSerials(args, serialsFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	fmt.Fprintf(cmd.ErrOrStderr(), "checking %d serial(s), started %s\n",
		len(serials), startedAt.Format("2006-01-02 15:04:05"))

	var sink engine.EventSink
	if !quiet {
		sink = &streamSink{out: cmd.ErrOrStderr()}
	}

	orchestrator := buildOrchestrator(cfg, st, sink, logger)
	summary := orchestrator.Run(cmd.Context(), serials)

	report := output.BuildReport(serials, st.Snapshot())
	rendered, err := output.NewFormatter(format).FormatReport(report)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rendered) != "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
	}

	logThroughput(logger, summary, startedAt)

	if summary.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d serial(s) failed:\n%s\n",
			summary.Failed, strings.Join(summary.FailedSerials, "\n"))
		if retryFile != "" {
			if err := writeRetryFile(retryFile, summary.FailedSerials); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "failed serials written to %s\n", retryFile)
		}
	}

	return nil
}

// buildOrchestrator assembles the engine from config: fetcher, fresh result
// cache, store, and event sink.
func buildOrchestrator(cfg *config.Config, st *store.Store, sink engine.EventSink, logger *zap.Logger) *engine.Orchestrator {
	f := &fetcher.Fetcher{
		Client:     &http.Client{},
		BaseURL:    cfg.API.BaseURL,
		Headers:    cfg.API.Headers,
		MaxRetries: cfg.Batch.MaxRetries,
		Timeout:    cfg.API.Timeout,
		RetryDelay: cfg.Batch.RetryDelay,
	}

	return &engine.Orchestrator{
		Fetcher:            f,
		Cache:              engine.NewResultCache(),
		Store:              st,
		Sink:               sink,
		Concurrency:        cfg.Batch.Workers,
		CheckpointInterval: cfg.Batch.CheckpointInterval,
		Logger:             logger,
	}
}

// streamSink prints the live result stream: one line per completion and a
// progress snapshot every progressStep completions. Completions arrive out
// of order; the sequence shown is the submission position.
type streamSink struct {
	out io.Writer
}

const progressStep = 20

func (s *streamSink) OnResult(result *core.QueryResult) {
	if result.Success() {
		fmt.Fprintf(s.out, "%s (%d/%d): ok, %d valid / %d expired service(s)\n",
			result.Serial, result.Sequence, result.BatchTotal,
			result.ServiceCounts.Valid, result.ServiceCounts.Expired)
		return
	}
	fmt.Fprintf(s.out, "%s (%d/%d): FAILED after %d retr%s: %s\n",
		result.Serial, result.Sequence, result.BatchTotal,
		result.RetryCount, plural(result.RetryCount, "y", "ies"), result.FailureReason)
}

func (s *streamSink) OnProgress(completed, total int) {
	if completed%progressStep == 0 || completed == total {
		fmt.Fprintf(s.out, "progress: %d/%d\n", completed, total)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func writeRetryFile(path string, serials []string) error {
	data := strings.Join(serials, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write retry file: %w", err)
	}
	return nil
}

func logThroughput(logger *zap.Logger, summary *core.BatchSummary, startedAt time.Time) {
	elapsed := time.Since(startedAt)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(summary.Total) / elapsed.Seconds()
	}
	logger.Info("throughput",
		zap.Duration("elapsed", elapsed),
		zap.Float64("serials_per_second", rate))
}
