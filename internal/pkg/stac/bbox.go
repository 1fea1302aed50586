package stac

import (
	"encoding/json"
	"fmt"
	"math"
)

// BBox is an axis-aligned longitude/latitude rectangle.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Overlaps reports whether b and other share at least one point, edges included.
func (b BBox) Overlaps(other BBox) bool {
	return b.MinX <= other.MaxX &&
		b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY &&
		b.MaxY >= other.MinY
}

// Point returns the zero-area rectangle of a single coordinate.
func Point(lat, lon float64) BBox {
	return BBox{MinX: lon, MinY: lat, MaxX: lon, MaxY: lat}
}

// Rect returns the rectangle spanned by two coordinates, in any corner order.
func Rect(lat1, lon1, lat2, lon2 float64) BBox {
	return BBox{
		MinX: math.Min(lon1, lon2),
		MinY: math.Min(lat1, lat2),
		MaxX: math.Max(lon1, lon2),
		MaxY: math.Max(lat1, lat2),
	}
}

func (b BBox) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// UnmarshalJSON accepts 2D [minx, miny, maxx, maxy] and 3D
// [minx, miny, minz, maxx, maxy, maxz] arrays.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	switch len(values) {
	case 4:
		*b = BBox{MinX: values[0], MinY: values[1], MaxX: values[2], MaxY: values[3]}
	case 6:
		*b = BBox{MinX: values[0], MinY: values[1], MaxX: values[3], MaxY: values[4]}
	default:
		return fmt.Errorf("bbox must have 4 or 6 values, got %d", len(values))
	}

	return nil
}

// MarshalJSON writes the 2D array form.
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{b.MinX, b.MinY, b.MaxX, b.MaxY})
}
