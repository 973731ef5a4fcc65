package entities

// Ranked annotates an entity with its distance from the user.
// DistanceKm is nil when no distance could be computed.
type Ranked[T any] struct {
	Entity            T        `json:"entity"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	FormattedDistance string   `json:"formatted_distance,omitempty"`
}
