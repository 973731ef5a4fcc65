package entities

import "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/geo"

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Validate checks the coordinates are finite and within range
func (l Location) Validate() error {
	return geo.Validate(l.Latitude, l.Longitude)
}

// DistanceTo returns the great-circle distance to other in kilometers
func (l Location) DistanceTo(other Location) (float64, error) {
	return geo.DistanceKm(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

// FloorPosition is a point on a store floorplan, relative to the plan image.
// It has no geodesic meaning.
type FloorPosition struct {
	X float64 `json:"x" db:"position_x"`
	Y float64 `json:"y" db:"position_y"`
}
