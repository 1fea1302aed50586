package crawler

import "errors"

var (
	// ErrRootCatalog is returned when the root catalog of a bucket cannot be read
	ErrRootCatalog = errors.New("unable to read root catalog")
	// ErrNoFilterProvided is returned when a search has neither a spatial nor a name filter
	ErrNoFilterProvided = errors.New("no filter provided, set a coordinate, a collection name or select all collections")
	// ErrDimensionAndCoordinateRange is returned when both a second corner and dimensions are given
	ErrDimensionAndCoordinateRange = errors.New("a coordinate range and dimensions cannot be used together")
	// ErrIncompleteCorner is returned when only one value of the second corner is given
	ErrIncompleteCorner = errors.New("the second corner needs both a latitude and a longitude")
	// ErrTooManyCorners is returned when a query has more than two corners
	ErrTooManyCorners = errors.New("a query rectangle has at most two corners")
)
