package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for our program, parsed from various sources
// The `mapstructure` tags are used to map the fields to the viper configuration
type Config struct {
	// Bucket selection
	Bucket    string `mapstructure:"bucket"`
	BucketURL string `mapstructure:"bucket-url"`

	// Filters
	IncludeNames   []string `mapstructure:"by-collection-name"`
	ExcludeNames   []string `mapstructure:"exclude"`
	AllCollections bool     `mapstructure:"all-collections"`

	// Selection
	First  bool `mapstructure:"first"`
	BySize bool `mapstructure:"by-size"`
	ByAll  bool `mapstructure:"by-all"`
	Index  int  `mapstructure:"index"`

	// Download
	Download    bool   `mapstructure:"download"`
	CacheDir    string `mapstructure:"cache"`
	VRTPath     string `mapstructure:"vrt"`
	ResultsFile string `mapstructure:"results-file"`

	// Crawl
	ConcurrencyMultiplier int           `mapstructure:"concurrency-multiplier"`
	InitRetries           int           `mapstructure:"init-retries"`
	InitRetryDelay        time.Duration `mapstructure:"init-retry-delay"`
	HTTPTimeout           time.Duration `mapstructure:"http-timeout"`
	Proxy                 string        `mapstructure:"proxy"`
	LiveStats             bool          `mapstructure:"live-stats"`

	// Object store access
	Region        string `mapstructure:"region"`
	SkipSignature bool   `mapstructure:"skip-signature"`

	// Logging
	NoStdoutLogging  bool   `mapstructure:"no-stdout-log"`
	NoStderrLogging  bool   `mapstructure:"no-stderr-log"`
	NoColorLogging   bool   `mapstructure:"no-color-log"`
	StdoutLogLevel   string `mapstructure:"log-level"`
	LogFileOutputDir string `mapstructure:"log-file-output-dir"`
	LogFilePrefix    string `mapstructure:"log-file-prefix"`
	LogFileLevel     string `mapstructure:"log-file-level"`
	LogFileRotation  string `mapstructure:"log-file-rotation"`

	// API
	API     bool   `mapstructure:"api"`
	APIPort string `mapstructure:"api-port"`

	// Prometheus and metrics
	Prometheus       bool   `mapstructure:"prometheus"`
	PrometheusPrefix string `mapstructure:"prometheus-prefix"`

	// Spatial arguments, filled by the search subcommands
	Spatial *Spatial
}

// Spatial holds the positional arguments of the coordinate and area subcommands.
type Spatial struct {
	Lat1   float64
	Lon1   float64
	Lat2   *float64
	Lon2   *float64
	Width  *float64
	Height *float64
}

var (
	config *Config
	once   sync.Once
)

// InitConfig initializes the configuration
// Flags -> Env -> Config file
// Latest has precedence over the rest
func InitConfig() error {
	var err error
	once.Do(func() {
		config = &Config{}

		// Check if a config file is provided via flag
		if configFile := viper.GetString("config-file"); configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				err = homeErr
				return
			}

			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName("linzstac-config")
		}

		viper.SetEnvPrefix("LINZSTAC")
		replacer := strings.NewReplacer("-", "_", ".", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.AutomaticEnv()

		setDefaults()

		if readErr := viper.ReadInConfig(); readErr == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}

		// This function is used to bring logic to the flags when needed (e.g. live-stats)
		handleFlagsEdgeCases()

		// Unmarshal the config into the Config struct
		err = viper.Unmarshal(config)
	})
	return err
}

// BindFlags binds the flags to the viper configuration
// This is needed because viper doesn't support same flag name accross multiple commands
// Details here: https://github.com/spf13/viper/issues/375#issuecomment-794668149
func BindFlags(flagSet *pflag.FlagSet) {
	flagSet.VisitAll(func(flag *pflag.Flag) {
		viper.BindPFlag(flag.Name, flag)
	})
}

// Get returns the config struct
func Get() *Config {
	return config
}

func setDefaults() {
	viper.SetDefault("bucket", string(Elevation))
	viper.SetDefault("index", -1)
	viper.SetDefault("concurrency-multiplier", 1)
	viper.SetDefault("init-retries", 2)
	viper.SetDefault("init-retry-delay", DefaultInitRetryDelay)
	viper.SetDefault("http-timeout", DefaultHTTPTimeout)
	viper.SetDefault("region", DefaultRegion)
	viper.SetDefault("skip-signature", true)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-file-prefix", "linzstac")
	viper.SetDefault("log-file-level", "info")
	viper.SetDefault("api-port", "9443")
	viper.SetDefault("prometheus-prefix", "linzstac_")
}

func handleFlagsEdgeCases() {
	if viper.GetBool("live-stats") {
		// The live table owns the terminal, only errors still reach stderr
		viper.Set("no-stdout-log", true)
	}

	if viper.GetBool("prometheus") {
		// If prometheus is true, the API has to be served
		viper.Set("api", true)
	}
}

// reset drops the singleton, tests use it to initialize a fresh config.
func reset() {
	viper.Reset()
	config = nil
	once = sync.Once{}
}
