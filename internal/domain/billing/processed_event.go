package billing

import "time"

// ProcessedEvent marks a provider event id as claimed. The primary key is the
// only dedup guard; a second insert of the same id fails at the database.
type ProcessedEvent struct {
	EventID   string    `gorm:"primaryKey;column:event_id;type:varchar(255)" json:"event_id"`
	EventType string    `gorm:"column:event_type;type:varchar(100)" json:"event_type"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}
