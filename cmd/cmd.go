package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.Config

// Prepare returns the root command with every subcommand and flag registered.
func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "linzstac",
		Short: "Search and download LINZ elevation and imagery tiles",
		Long: `linzstac walks the STAC catalogs of the LINZ elevation and imagery buckets,
finds the datasets covering a point or an area and downloads their tiles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is not an error
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error loading .env file: %w", err)
			}

			// Initialize config here, after cobra has parsed command line flags
			if err := config.InitConfig(); err != nil {
				return fmt.Errorf("error initializing config: %w", err)
			}

			cfg = config.Get()

			if err := log.Start(); err != nil && !errors.Is(err, log.ErrLoggerAlreadyInitialized) {
				return fmt.Errorf("error starting logger: %w", err)
			}

			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "stdout log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config-file", "", "config file (default is $HOME/linzstac-config.yaml)")
	rootCmd.PersistentFlags().Bool("no-color-log", false, "Disable colors in stdout and stderr logs.")
	rootCmd.PersistentFlags().Bool("no-stdout-log", false, "Disable logging to stdout.")
	rootCmd.PersistentFlags().Bool("no-stderr-log", false, "Disable logging to stderr.")
	rootCmd.PersistentFlags().String("log-file-output-dir", "", "Directory to write log files to, no log file is written when empty.")
	rootCmd.PersistentFlags().String("log-file-prefix", "linzstac", "Prefix of the log file names.")
	rootCmd.PersistentFlags().String("log-file-level", "info", "Log file level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file-rotation", "", "Period after which the log file is rotated, a Go duration such as 24h. (disabled when empty)")

	// API flags
	rootCmd.PersistentFlags().Bool("api", false, "Serve /status and /healthz over HTTP.")
	rootCmd.PersistentFlags().String("api-port", "9443", "Port to listen on for the API.")
	rootCmd.PersistentFlags().Bool("prometheus", false, "Export metrics in Prometheus format. (implies --api)")
	rootCmd.PersistentFlags().String("prometheus-prefix", "linzstac_", "String used as a prefix for the exported Prometheus metrics.")

	// Bind flags to viper
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(searchCMDs())
	rootCmd.AddCommand(versionCMD())

	return rootCmd
}

// Run executes the root command.
func Run() error {
	defer log.Stop()
	return Prepare().ExecuteContext(context.Background())
}
