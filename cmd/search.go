package cmd

import (
	"fmt"
	"strings"

	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/controler"
	"github.com/spf13/cobra"
)

func searchCMDs() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search the collections of a bucket by name",
		Long: `Search the collections of a bucket whose identifier or title contains one of
the --by-collection-name values. Use the coordinate or area subcommands to
search by location instead.`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if cfg == nil {
				return fmt.Errorf("viper config is nil")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return controler.Start(cmd.Context())
		},
	}

	searchCMDsFlags(searchCmd)
	searchCmd.MarkFlagsMutuallyExclusive("first", "by-size", "by-all", "index")

	config.BindFlags(searchCmd.PersistentFlags())

	searchCmd.AddCommand(coordinateCMD())
	searchCmd.AddCommand(areaCMD())

	return searchCmd
}

func searchCMDsFlags(searchCmd *cobra.Command) {
	// Bucket flags
	searchCmd.PersistentFlags().String("bucket", string(config.Elevation), fmt.Sprintf("Bucket to search (%s).", strings.Join(config.Buckets(), ", ")))
	searchCmd.PersistentFlags().String("bucket-url", "", "Base URL or local directory of the bucket, overrides --bucket.")
	searchCmd.PersistentFlags().String("region", config.DefaultRegion, "Region of the bucket, used to expand s3:// locations.")
	searchCmd.PersistentFlags().Bool("skip-signature", true, "Access the bucket anonymously.")

	// Filter flags
	searchCmd.PersistentFlags().StringSliceP("by-collection-name", "n", []string{}, "Only search collections whose identifier or title contains this string. (repeatable)")
	searchCmd.PersistentFlags().StringSliceP("exclude", "x", []string{}, "Skip collections whose identifier or title contains this string. (repeatable)")
	searchCmd.PersistentFlags().Bool("all-collections", false, "Allow a search without any location or name filter.")

	// Selection flags
	searchCmd.PersistentFlags().BoolP("first", "f", false, "Select the first result without prompting.")
	searchCmd.PersistentFlags().BoolP("by-size", "s", false, "Select the result with the most tiles without prompting.")
	searchCmd.PersistentFlags().Bool("by-all", false, "Select every result without prompting.")
	searchCmd.PersistentFlags().Int("index", -1, "Select the result at this index without prompting.")

	// Download flags
	searchCmd.PersistentFlags().BoolP("download", "d", false, "Download the tiles of the selected results instead of printing their locations.")
	searchCmd.PersistentFlags().String("cache", "", "Directory to download tiles to, defaults to the working directory.")
	searchCmd.PersistentFlags().String("vrt", "", "Build a GDAL virtual raster of the downloaded tiles at this path.")
	searchCmd.PersistentFlags().String("results-file", "", "Write the ranked results to this YAML file.")

	// Crawl flags
	searchCmd.PersistentFlags().IntP("concurrency-multiplier", "c", 1, "Number of concurrent fetches per CPU.")
	searchCmd.PersistentFlags().Int("init-retries", 2, "Number of retries when the catalog cannot be loaded.")
	searchCmd.PersistentFlags().Duration("init-retry-delay", config.DefaultInitRetryDelay, "Delay between catalog loading retries.")
	searchCmd.PersistentFlags().Duration("http-timeout", config.DefaultHTTPTimeout, "Timeout of catalog requests.")
	searchCmd.PersistentFlags().String("proxy", "", "Proxy to use for every request, overrides the proxy environment variables.")
	searchCmd.PersistentFlags().Bool("live-stats", false, "Enable live stats but disable logging. (implies --no-stdout-log)")
}
