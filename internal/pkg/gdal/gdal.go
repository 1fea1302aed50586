// Package gdal mosaics downloaded tiles with the GDAL command line tools.
package gdal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/internetarchive/linzstac/internal/pkg/log"
)

var (
	// ErrNoInputs is returned when a mosaic is built from no file
	ErrNoInputs = errors.New("no input files to build a virtual raster from")
	// ErrBinaryNotFound is returned when gdalbuildvrt is not installed
	ErrBinaryNotFound = errors.New("gdalbuildvrt not found in PATH")
)

// Binary is the program invoked by BuildVRT.
var Binary = "gdalbuildvrt"

// BuildVRT writes to output a virtual raster mosaicking paths.
func BuildVRT(ctx context.Context, output string, paths []string) error {
	if len(paths) == 0 {
		return ErrNoInputs
	}

	binary, err := exec.LookPath(Binary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBinaryNotFound, err)
	}

	logger := log.NewFieldedLogger(&log.Fields{
		"component": "gdal",
	})

	args := append([]string{"-overwrite", output}, paths...)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr

	logger.Debug("building virtual raster", "output", output, "inputs", len(paths))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", Binary, err, strings.TrimSpace(stderr.String()))
	}

	logger.Info("virtual raster built", "output", output, "inputs", len(paths))

	return nil
}
