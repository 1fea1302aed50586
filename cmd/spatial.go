package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/controler"
	"github.com/spf13/cobra"
)

var (
	// ErrInvalidLatitude is returned for a latitude outside [-90, 90]
	ErrInvalidLatitude = errors.New("latitude must be between -90 and 90")
	// ErrInvalidLongitude is returned for a longitude outside [-180, 180]
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	// ErrInvalidDimension is returned for a width or height that is not positive
	ErrInvalidDimension = errors.New("dimensions must be positive numbers of metres")
)

func coordinateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "coordinate LAT1 LON1 [LAT2 LON2]",
		Short: "Search the datasets covering a point or the rectangle between two points",
		Example: `  linzstac search coordinate -- -45.0 167.0
  linzstac search --bucket imagery coordinate -- -41.2 174.7 -41.3 174.8`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 && len(args) != 4 {
				return fmt.Errorf("accepts 2 or 4 args, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			spatial, err := parseCoordinates(args)
			if err != nil {
				return err
			}

			cfg.Spatial = spatial

			return controler.Start(cmd.Context())
		},
	}
}

func areaCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "area LAT LON WIDTH [HEIGHT]",
		Short: "Search the datasets covering a WIDTH by HEIGHT metres area centred on a point",
		Example: `  linzstac search area -- -45.0 167.0 1000
  linzstac search area -- -45.0 167.0 2000 500`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			spatial, err := parseArea(args)
			if err != nil {
				return err
			}

			cfg.Spatial = spatial

			return controler.Start(cmd.Context())
		},
	}
}

func parseCoordinates(args []string) (*config.Spatial, error) {
	values, err := parseFloats(args)
	if err != nil {
		return nil, err
	}

	spatial := &config.Spatial{Lat1: values[0], Lon1: values[1]}
	if len(values) == 4 {
		spatial.Lat2 = &values[2]
		spatial.Lon2 = &values[3]
	}

	if err := validateCoordinate(spatial.Lat1, spatial.Lon1); err != nil {
		return nil, err
	}
	if spatial.Lat2 != nil {
		if err := validateCoordinate(*spatial.Lat2, *spatial.Lon2); err != nil {
			return nil, err
		}
	}

	return spatial, nil
}

func parseArea(args []string) (*config.Spatial, error) {
	values, err := parseFloats(args)
	if err != nil {
		return nil, err
	}

	if err := validateCoordinate(values[0], values[1]); err != nil {
		return nil, err
	}

	spatial := &config.Spatial{Lat1: values[0], Lon1: values[1], Width: &values[2]}
	if len(values) == 4 {
		spatial.Height = &values[3]
	}

	for _, dimension := range values[2:] {
		if !(dimension > 0) || math.IsInf(dimension, 1) {
			return nil, fmt.Errorf("%w: %g", ErrInvalidDimension, dimension)
		}
	}

	return spatial, nil
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		values[i] = value
	}
	return values, nil
}

func validateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: %g", ErrInvalidLatitude, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: %g", ErrInvalidLongitude, lon)
	}
	return nil
}
