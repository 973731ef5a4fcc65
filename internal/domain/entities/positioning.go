package entities

import "time"

// PermissionState is the device's location permission as last observed
type PermissionState string

const (
	PermissionUnknown     PermissionState = "unknown"
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionPrompt      PermissionState = "prompt"
	PermissionUnsupported PermissionState = "unsupported"
)

// PositionFix is a single location reading from the positioning platform
type PositionFix struct {
	Location       Location  `json:"location"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Timestamp      time.Time `json:"timestamp"`
}
