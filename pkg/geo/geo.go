// Package geo holds the great-circle distance math and the distance wording
// shown to shoppers.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates is returned for NaN, infinite or out-of-range coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Validate checks latitude is in [-90, 90] and longitude in [-180, 180].
func Validate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, lon)
	}
	return nil
}

// DistanceKm returns the Haversine distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := Validate(lat1, lon1); err != nil {
		return 0, err
	}
	if err := Validate(lat2, lon2); err != nil {
		return 0, err
	}

	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c, nil
}

// FormatDistance renders a distance for display:
// under 1 km as whole meters, under 10 km with one decimal, otherwise whole kilometers.
func FormatDistance(km float64) string {
	switch {
	case km < 1:
		return fmt.Sprintf("%dm away", int64(math.Round(km*1000)))
	case km < 10:
		return fmt.Sprintf("%.1fkm away", km)
	default:
		return fmt.Sprintf("%dkm away", int64(math.Round(km)))
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
