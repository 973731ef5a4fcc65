package entities

import (
	"time"

	"github.com/google/uuid"
)

// ItemEventType represents the type of item event
type ItemEventType string

const (
	ItemEventTypeReportSubmitted       ItemEventType = "report_submitted"
	ItemEventTypeFlagged               ItemEventType = "item_flagged"
	ItemEventTypeVerified              ItemEventType = "item_verified"
	ItemEventTypeUnverified            ItemEventType = "item_unverified"
	ItemEventTypeVerificationRefreshed ItemEventType = "verification_refreshed"
	ItemEventTypeReportCountReset      ItemEventType = "report_count_reset"
)

// ItemEvent is published whenever an item's trust data changes
type ItemEvent struct {
	ID        string                 `json:"id"`
	ItemID    string                 `json:"item_id"`
	StoreID   string                 `json:"store_id,omitempty"`
	EventType ItemEventType          `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewItemEvent creates a new item event
func NewItemEvent(itemID, storeID string, eventType ItemEventType, data map[string]interface{}) *ItemEvent {
	return &ItemEvent{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		StoreID:   storeID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
