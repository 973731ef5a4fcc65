package entities

import "time"

// ReportType is the kind of crowd observation made about an item
type ReportType string

const (
	ReportTypeMissing ReportType = "missing"
	ReportTypeMoved   ReportType = "moved"
	ReportTypeFound   ReportType = "found"
	ReportTypeConfirm ReportType = "confirm"
)

// Valid reports whether t is one of the known report types
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeMissing, ReportTypeMoved, ReportTypeFound, ReportTypeConfirm:
		return true
	}
	return false
}

// IsNegative reports whether the report says the item is not where the pin shows
func (t ReportType) IsNegative() bool {
	return t == ReportTypeMissing || t == ReportTypeMoved
}

// Report is an immutable crowd submission about an item
type Report struct {
	ID        string     `json:"id" db:"id"`
	ItemID    string     `json:"item_id" db:"item_id"`
	StoreID   string     `json:"store_id" db:"store_id"`
	Type      ReportType `json:"type" db:"type"`
	Comment   string     `json:"comment,omitempty" db:"comment"`
	UserID    *string    `json:"user_id,omitempty" db:"user_id"`
	Location  *Location  `json:"location,omitempty" db:"-"`
	Timestamp time.Time  `json:"timestamp" db:"created_at"`
}

// ReportStats counts an item's reports by type
type ReportStats struct {
	Total     int `json:"total"`
	Missing   int `json:"missing"`
	Moved     int `json:"moved"`
	Found     int `json:"found"`
	Confirmed int `json:"confirmed"`
}

// Negative is the number of missing and moved reports
func (s ReportStats) Negative() int {
	return s.Missing + s.Moved
}

// Positive is the number of found and confirm reports
func (s ReportStats) Positive() int {
	return s.Found + s.Confirmed
}

// Add counts one report of type t
func (s *ReportStats) Add(t ReportType) {
	s.Total++
	switch t {
	case ReportTypeMissing:
		s.Missing++
	case ReportTypeMoved:
		s.Moved++
	case ReportTypeFound:
		s.Found++
	case ReportTypeConfirm:
		s.Confirmed++
	}
}

// FoldReports computes stats over a set of reports
func FoldReports(reports []*Report) ReportStats {
	var stats ReportStats
	for _, r := range reports {
		stats.Add(r.Type)
	}
	return stats
}
