package crawler

import (
	"math"

	"github.com/internetarchive/linzstac/internal/pkg/stac"
)

// metresPerDegree is the length of one degree of latitude.
const metresPerDegree = 111320.0

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// SpatialParams describes a spatial filter: a point, a rectangle given by a
// second corner, or a rectangle of Width by Height metres centred on the point.
type SpatialParams struct {
	Lat  float64
	Lon  float64
	Lat2 *float64
	Lon2 *float64

	Width  *float64
	Height *float64
}

// Resolve returns the corners of the query rectangle.
func (p SpatialParams) Resolve() ([]Coordinate, error) {
	hasCorner := p.Lat2 != nil || p.Lon2 != nil
	hasDimension := p.Width != nil || p.Height != nil

	switch {
	case hasCorner && hasDimension:
		return nil, ErrDimensionAndCoordinateRange
	case hasCorner:
		if p.Lat2 == nil || p.Lon2 == nil {
			return nil, ErrIncompleteCorner
		}
		return []Coordinate{{p.Lat, p.Lon}, {*p.Lat2, *p.Lon2}}, nil
	case hasDimension:
		width, height := deref(p.Width), deref(p.Height)
		if p.Height == nil {
			height = width
		}
		if p.Width == nil {
			width = height
		}
		southWest, northEast := CoordinateFromDimension(p.Lat, p.Lon, width, height)
		return []Coordinate{southWest, northEast}, nil
	default:
		return []Coordinate{{p.Lat, p.Lon}}, nil
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// CoordinateFromDimension returns the south-west and north-east corners of a
// width by height metres rectangle centred on lat, lon.
func CoordinateFromDimension(lat, lon, width, height float64) (Coordinate, Coordinate) {
	latOffset := height / metresPerDegree
	lonOffset := width / (metresPerDegree * math.Cos(lat*math.Pi/180))

	return Coordinate{Lat: lat - latOffset/2, Lon: lon - lonOffset/2},
		Coordinate{Lat: lat + latOffset/2, Lon: lon + lonOffset/2}
}

// QueryRect returns the rectangle spanned by corners, nil when there are none.
func QueryRect(corners ...Coordinate) (*stac.BBox, error) {
	var rect stac.BBox

	switch len(corners) {
	case 0:
		return nil, nil
	case 1:
		rect = stac.Point(corners[0].Lat, corners[0].Lon)
	case 2:
		rect = stac.Rect(corners[0].Lat, corners[0].Lon, corners[1].Lat, corners[1].Lon)
	default:
		return nil, ErrTooManyCorners
	}

	return &rect, nil
}
