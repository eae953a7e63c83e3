package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncLog is one append-only row per sync attempt.
type SyncLog struct {
	BaseModel
	PlatformID      string                      `gorm:"type:varchar(36);not null;index" json:"platform_id"`
	CandidatesFound int                         `gorm:"not null;default:0" json:"candidates_found"`
	CandidatesNew   int                         `gorm:"not null;default:0" json:"candidates_new"`
	SkippedEmails   datatypes.JSONSlice[string] `json:"skipped_emails"`
	Status          SyncStatus                  `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage    *string                     `gorm:"type:text" json:"error_message,omitempty"`
	SyncedAt        time.Time                   `gorm:"not null;index" json:"synced_at"`
}
