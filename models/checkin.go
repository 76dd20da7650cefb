package models

import "time"

// Mood is the feeling attached to a daily check-in.
type Mood int8

const (
	MoodHappy Mood = iota + 1
	MoodNeutral
	MoodSad
	MoodAngry
	MoodThinking
)

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	return m >= MoodHappy && m <= MoodThinking
}

func (m Mood) String() string {
	switch m {
	case MoodHappy:
		return "happy"
	case MoodNeutral:
		return "neutral"
	case MoodSad:
		return "sad"
	case MoodAngry:
		return "angry"
	case MoodThinking:
		return "thinking"
	default:
		return "unknown"
	}
}

// Checkin stores one daily check-in. Records are immutable once
// created. LocalDate is the calendar day CreatedAt falls on in the
// user's configured timezone at admission time; the composite unique
// index is the authoritative one-check-in-per-local-day constraint.
type Checkin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_checkins_user_day,unique" json:"user_id"`
	LocalDate string    `gorm:"size:10;not null;index:idx_checkins_user_day,unique" json:"local_date"`
	Mood      Mood      `gorm:"not null" json:"mood"`
	Content   string    `gorm:"size:500" json:"content"`
	City      string    `gorm:"size:128" json:"city,omitempty"`
	Country   string    `gorm:"size:128" json:"country,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
