package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warrantylens/warrantylens/internal/core/store"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored query results",
	Long:  "Remove every stored result and delete the durable store document.",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().Bool("force", false, "clear without confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if !force {
		return fmt.Errorf("refusing to clear the result store without --force")
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

	entries := st.Len()
	if err := st.Clear(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cleared %d stored result(s), removed %s\n", entries, st.Path())
	return nil
}
