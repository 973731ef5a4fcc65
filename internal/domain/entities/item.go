package entities

import "time"

// Item is a product pinned to a position on a store's floorplan
type Item struct {
	ID          string        `json:"id" db:"id"`
	StoreID     string        `json:"store_id" db:"store_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	Position    FloorPosition `json:"position" db:"-"`
	Verified    bool          `json:"verified" db:"verified"`
	VerifiedAt  *time.Time    `json:"verified_at,omitempty" db:"verified_at"`
	ReportCount int           `json:"report_count" db:"report_count"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// NewItem holds the fields supplied when an item is created
type NewItem struct {
	StoreID     string        `json:"store_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Position    FloorPosition `json:"position"`
}

// ItemUpdate is a partial update of an item's verification fields.
// Nil pointers leave the stored value untouched; UpdatedAt is always written.
type ItemUpdate struct {
	Verified   *bool
	VerifiedAt *time.Time
	UpdatedAt  time.Time
}

// Apply writes the update onto item
func (u ItemUpdate) Apply(item *Item) {
	if u.Verified != nil {
		item.Verified = *u.Verified
	}
	if u.VerifiedAt != nil {
		t := *u.VerifiedAt
		item.VerifiedAt = &t
	}
	item.UpdatedAt = u.UpdatedAt
}

// ItemWithStore pairs an item with the store it belongs to, for ranking items by store distance
type ItemWithStore struct {
	Item  *Item  `json:"item"`
	Store *Store `json:"store"`
}
