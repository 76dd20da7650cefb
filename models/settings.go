package models

import "time"

// Default check-in window for freshly created settings rows.
const (
	DefaultCheckinStart = "05:00"
	DefaultCheckinEnd   = "06:00"
	DefaultTimezone     = "UTC"
)

// UserSettings holds the per-user check-in window and timezone.
// Created lazily with defaults on first read. The timezone is an IANA
// zone name and is silently updated when the client reports a
// different current zone.
type UserSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CheckinStartTime string    `gorm:"size:5;not null;default:'05:00'" json:"checkin_start_time"`
	CheckinEndTime   string    `gorm:"size:5;not null;default:'06:00'" json:"checkin_end_time"`
	Timezone         string    `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultSettings returns a fresh settings row for userID with the
// stock window and timezone.
func DefaultSettings(userID uint) UserSettings {
	return UserSettings{
		UserID:           userID,
		CheckinStartTime: DefaultCheckinStart,
		CheckinEndTime:   DefaultCheckinEnd,
		Timezone:         DefaultTimezone,
	}
}
