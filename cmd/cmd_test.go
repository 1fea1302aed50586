package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	spatial, err := parseCoordinates([]string{"-45.0", "167"})
	require.NoError(t, err)
	assert.Equal(t, -45.0, spatial.Lat1)
	assert.Equal(t, 167.0, spatial.Lon1)
	assert.Nil(t, spatial.Lat2)
	assert.Nil(t, spatial.Width)

	spatial, err = parseCoordinates([]string{"-45", "167", "-46.5", "168.25"})
	require.NoError(t, err)
	require.NotNil(t, spatial.Lat2)
	require.NotNil(t, spatial.Lon2)
	assert.Equal(t, -46.5, *spatial.Lat2)
	assert.Equal(t, 168.25, *spatial.Lon2)

	_, err = parseCoordinates([]string{"-91", "167"})
	assert.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = parseCoordinates([]string{"-45", "167", "-46", "181"})
	assert.ErrorIs(t, err, ErrInvalidLongitude)

	_, err = parseCoordinates([]string{"south", "167"})
	assert.Error(t, err)
}

func TestParseArea(t *testing.T) {
	spatial, err := parseArea([]string{"-45", "167", "1000"})
	require.NoError(t, err)
	require.NotNil(t, spatial.Width)
	assert.Equal(t, 1000.0, *spatial.Width)
	assert.Nil(t, spatial.Height)

	spatial, err = parseArea([]string{"-45", "167", "1000", "250"})
	require.NoError(t, err)
	require.NotNil(t, spatial.Height)
	assert.Equal(t, 250.0, *spatial.Height)

	_, err = parseArea([]string{"-45", "167", "0"})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = parseArea([]string{"-45", "200", "10"})
	assert.ErrorIs(t, err, ErrInvalidLongitude)
}

func TestParseRejectsNonFiniteValues(t *testing.T) {
	_, err := parseCoordinates([]string{"NaN", "167"})
	assert.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = parseCoordinates([]string{"-45", "NaN"})
	assert.ErrorIs(t, err, ErrInvalidLongitude)

	_, err = parseCoordinates([]string{"-45", "167", "-Inf", "167.1"})
	assert.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = parseArea([]string{"-45", "167", "NaN"})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = parseArea([]string{"-45", "167", "1000", "+Inf"})
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestCoordinateArgs(t *testing.T) {
	coordinateCmd := coordinateCMD()
	areaCmd := areaCMD()

	assert.NoError(t, coordinateCmd.Args(coordinateCmd, []string{"1", "2"}))
	assert.NoError(t, coordinateCmd.Args(coordinateCmd, []string{"1", "2", "3", "4"}))
	assert.Error(t, coordinateCmd.Args(coordinateCmd, []string{"1", "2", "3"}))
	assert.Error(t, coordinateCmd.Args(coordinateCmd, []string{"1"}))

	assert.Error(t, areaCmd.Args(areaCmd, []string{"1", "2"}))
	assert.NoError(t, areaCmd.Args(areaCmd, []string{"1", "2", "3"}))
}

func TestPrepareRegistersCommands(t *testing.T) {
	root := Prepare()

	search, _, err := root.Find([]string{"search", "coordinate"})
	require.NoError(t, err)
	assert.Equal(t, "coordinate", search.Name())

	for _, name := range []string{"bucket", "download", "first", "by-size", "by-all", "index", "by-collection-name", "exclude", "concurrency-multiplier"} {
		assert.NotNil(t, search.InheritedFlags().Lookup(name), name)
	}

	flag := search.InheritedFlags().Lookup("by-collection-name")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
}

func TestVersion(t *testing.T) {
	out := &bytes.Buffer{}

	version := versionCMD()
	version.SetOut(out)
	version.SetArgs([]string{})
	require.NoError(t, version.Execute())

	assert.True(t, strings.HasPrefix(out.String(), "linzstac "))
	assert.Contains(t, out.String(), "- go/version:")
}
