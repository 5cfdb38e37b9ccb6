// Package cmd wires the warrantylens CLI.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/config"
	"github.com/warrantylens/warrantylens/internal/observability"
)

var (
	cfgFile string
	verbose bool

	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to record build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "warrantylens",
	Short: "Batch warranty status lookup for hardware serial numbers",
	Long: `warrantylens batch-verifies warranty status for sets of hardware serial
numbers against the vendor lookup service, keeps a durable result store
across runs, and exports structured reports.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./warrantylens.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigName("warrantylens")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Absent config file is fine, defaults cover everything.
	_ = viper.ReadInConfig()
}

// loadConfig builds the typed configuration from the current viper state.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger constructs the command logger from config and the verbose flag.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Logging.Format, cfg.Logging.Level, verbose)
}
