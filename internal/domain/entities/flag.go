package entities

import "time"

// FlagStatus is the review state of a flag. Only pending_review is created here.
type FlagStatus string

const (
	FlagStatusPendingReview FlagStatus = "pending_review"
)

// FlagRecord marks an item for administrative review
type FlagRecord struct {
	ID        string     `json:"id" db:"id"`
	ItemID    string     `json:"item_id" db:"item_id"`
	StoreID   string     `json:"store_id" db:"store_id"`
	Reason    string     `json:"reason" db:"reason"`
	Status    FlagStatus `json:"status" db:"status"`
	Timestamp time.Time  `json:"timestamp" db:"created_at"`
}
