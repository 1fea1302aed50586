package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
	"github.com/internetarchive/linzstac/internal/pkg/config"
	slogmulti "github.com/samber/slog-multi"
)

// Config describes the destinations of the logger.
type Config struct {
	FileConfig    *FileConfig
	StdoutEnabled bool
	StdoutLevel   slog.Level
	StderrEnabled bool
	StderrLevel   slog.Level
	NoColor       bool

	// Stdout and Stderr replace os.Stdout and os.Stderr when set.
	Stdout io.Writer
	Stderr io.Writer
}

// FileConfig describes the rotated log file destination.
type FileConfig struct {
	Dir          string
	Prefix       string
	Level        slog.Level
	RotatePeriod time.Duration
}

// makeConfig returns the configuration derived from the program flags
func makeConfig() *Config {
	if config.Get() == nil {
		return &Config{
			StdoutEnabled: true,
			StdoutLevel:   slog.LevelInfo,
			StderrEnabled: true,
			StderrLevel:   slog.LevelError,
		}
	}

	var fileConfig *FileConfig
	if config.Get().LogFileOutputDir != "" {
		rotatePeriod, err := time.ParseDuration(config.Get().LogFileRotation)
		if err != nil {
			rotatePeriod = 24 * time.Hour
		}

		fileConfig = &FileConfig{
			Dir:          config.Get().LogFileOutputDir,
			Prefix:       config.Get().LogFilePrefix,
			Level:        parseLevel(config.Get().LogFileLevel),
			RotatePeriod: rotatePeriod,
		}
	}

	return &Config{
		FileConfig:    fileConfig,
		StdoutEnabled: !config.Get().NoStdoutLogging,
		StdoutLevel:   parseLevel(config.Get().StdoutLogLevel),
		StderrEnabled: !config.Get().NoStderrLogging,
		StderrLevel:   slog.LevelError,
		NoColor:       config.Get().NoColorLogging,
	}
}

func parseLevel(level string) slog.Level {
	lowercaseLevel := strings.ToLower(level)
	switch lowercaseLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newColorOptions(level slog.Level) *slogcolor.Options {
	return &slogcolor.Options{
		Level:         level,
		TimeFormat:    time.RFC3339,
		SrcFileMode:   slogcolor.ShortFile,
		SrcFileLength: 20,
		MsgPrefix:     color.HiWhiteString("| "),
		MsgColor:      color.New().Add(color.FgYellow),
		LevelTags:     slogcolor.DefaultLevelTags,
	}
}

func (c *Config) newHandler(out io.Writer, level slog.Level) slog.Handler {
	if c.NoColor {
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	return slogcolor.NewHandler(out, newColorOptions(level))
}

func (c *Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Config) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

func (c *Config) makeMultiLogger() (*slog.Logger, []func() error) {
	var closers []func() error
	baseRouter := slogmulti.Router()

	// If Stdout and Stderr are both enabled we log every level below stderr level to stdout and the rest (above) to stderr
	if c.StdoutEnabled && c.StderrEnabled {
		stderrHandler := c.newHandler(c.stderr(), c.StderrLevel)
		baseRouter = baseRouter.Add(stderrHandler, func(_ context.Context, r slog.Record) bool {
			return r.Level >= c.StderrLevel
		})

		stdoutHandler := c.newHandler(c.stdout(), c.StdoutLevel)
		baseRouter = baseRouter.Add(stdoutHandler, func(_ context.Context, r slog.Record) bool {
			return r.Level >= c.StdoutLevel && r.Level < c.StderrLevel
		})
	} else if c.StdoutEnabled {
		stdoutHandler := c.newHandler(c.stdout(), c.StdoutLevel)
		baseRouter = baseRouter.Add(stdoutHandler, func(_ context.Context, r slog.Record) bool {
			return r.Level >= c.StdoutLevel
		})
	} else if c.StderrEnabled {
		stderrHandler := c.newHandler(c.stderr(), c.StderrLevel)
		baseRouter = baseRouter.Add(stderrHandler, func(_ context.Context, r slog.Record) bool {
			return r.Level >= c.StderrLevel
		})
	}

	if c.FileConfig != nil {
		file, err := newRotatedFile(c.FileConfig)
		if err != nil {
			slog.Error("unable to open log file, file logging disabled", "dir", c.FileConfig.Dir, "err", err)
		} else {
			closers = append(closers, file.Close)
			fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: c.FileConfig.Level, AddSource: true})
			baseRouter = baseRouter.Add(fileHandler, func(_ context.Context, r slog.Record) bool {
				return r.Level >= c.FileConfig.Level
			})
		}
	}

	return slog.New(baseRouter.Handler()), closers
}
