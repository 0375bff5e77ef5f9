package models

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Settings represents the global configuration for a gateway deployment.
// This is a singleton model (only one row should exist).
type Settings struct {
	BaseModel
	// Session token signing secret, auto-generated on first start (64 hex chars)
	SessionSecret string `json:"-" gorm:"type:varchar(64);not null"`

	// Snapshot refresh configuration
	RefreshSchedule string     `json:"refresh_schedule"`  // Cron expression, e.g. "0 */6 * * *", empty = no auto refresh
	LastRefreshedAt *time.Time `json:"last_refreshed_at"` // When the last refresh was enqueued
	NextRefreshAt   *time.Time `json:"next_refresh_at"`   // Calculated from the cron schedule

	// Snapshots kept per content kind before pruning
	MaxSnapshots int `json:"max_snapshots" gorm:"not null;default:3"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ContentSnapshot is one cached pull of a listing collection from the backend.
// Items holds the raw JSON array exactly as the backend returned it.
type ContentSnapshot struct {
	BaseModel
	Kind      string    `json:"kind" gorm:"not null;index"`
	Items     string    `json:"-" gorm:"type:text;not null"`
	ItemCount int       `json:"item_count" gorm:"not null"`
	Source    string    `json:"source" gorm:"not null"` // backend base URL the pull came from
	FetchedAt time.Time `json:"fetched_at" gorm:"not null;index"`
}

// RawItems decodes the stored item array
func (s *ContentSnapshot) RawItems() ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s.Items), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Settings{}, &ContentSnapshot{})
}
