// Package domain defines the persistence models for trips, itinerary days,
// time blocks, user preferences, chat history, and diary entries. These types
// are mapped with GORM and form the core data layer of the trip backend.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Trip represents a saved travel itinerary owned by a user. A trip owns an
// ordered set of TripDay rows; deleting a trip must cascade to its days,
// blocks, and diary entries (see TripService.Delete).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the trip owner; indexed for efficient retrieval.
//   - Days / Nights: trip length descriptors as requested by the user.
//   - StyleTags: JSON array of style tag strings, stored serialized in a
//     TEXT column (never a native array type).
//   - CreatedAt / UpdatedAt: set once at save time; no update path exists.
type Trip struct {
	ID         string                      `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID     string                      `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_trips"`
	Title      string                      `json:"title"      gorm:"type:varchar(255);not null"`
	Days       int                         `json:"days"       gorm:"not null"`
	Nights     int                         `json:"nights"     gorm:"not null"`
	Companions string                      `json:"companions" gorm:"type:varchar(64)"`
	Budget     string                      `json:"budget"     gorm:"type:varchar(64)"`
	StyleTags  datatypes.JSONSlice[string] `json:"style_tags" gorm:"type:text"`
	City       string                      `json:"city"       gorm:"type:varchar(128)"`
	Country    string                      `json:"country"    gorm:"type:varchar(128)"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for Trip.
func (Trip) TableName() string { return "trips" }

// TripDay is one day within a trip. The day index is the canonical ordering
// and matches the `day` field of the generated plan.
type TripDay struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	TripID   string `json:"trip_id"   gorm:"type:char(36);not null;index:idx_trip_days"`
	DayIndex int    `json:"day_index" gorm:"not null"`
	Notes    string `json:"notes"     gorm:"type:text"`
}

// TableName returns the database table name for TripDay.
func (TripDay) TableName() string { return "trip_days" }

// Block is a single scheduled activity within a day. Blocks are ordered by
// the lexicographic value of Time ("HH:MM") within their day; this is a
// display ordering only and does not handle cross-midnight schedules.
//
// Fields:
//   - Tags: JSON array of tag strings, stored serialized in a TEXT column.
//   - EstDuration: estimated minutes; 60 is substituted when absent.
//   - LLMSource: attribution for the model that produced the block.
type Block struct {
	ID          string                      `json:"id"           gorm:"type:char(36);primaryKey"`
	TripDayID   string                      `json:"trip_day_id"  gorm:"type:char(36);not null;index:idx_day_blocks"`
	Time        string                      `json:"time"         gorm:"type:varchar(8);not null"`
	Title       string                      `json:"title"        gorm:"type:varchar(255);not null"`
	PlaceName   string                      `json:"place_name"   gorm:"type:varchar(255)"`
	Tags        datatypes.JSONSlice[string] `json:"tags"         gorm:"type:text"`
	EstDuration int                         `json:"est_duration" gorm:"not null;default:60"`
	LLMSource   string                      `json:"llm_source"   gorm:"type:varchar(128)"`
}

// TableName returns the database table name for Block.
func (Block) TableName() string { return "blocks" }

// UserPrefs holds per-user itinerary preferences consulted at generation
// time. When no row exists (or the read fails) a fixed default record is
// substituted; see repo.DefaultUserPrefs.
type UserPrefs struct {
	UserID    string                      `json:"user_id"    gorm:"type:varchar(64);primaryKey"`
	WakeStart string                      `json:"wake_start" gorm:"type:varchar(8)"`
	WakeEnd   string                      `json:"wake_end"   gorm:"type:varchar(8)"`
	Pace      string                      `json:"pace"       gorm:"type:varchar(32)"`
	Budget    string                      `json:"budget"     gorm:"type:varchar(32)"`
	LikeTags  datatypes.JSONSlice[string] `json:"like_tags"  gorm:"type:text"`
	AvoidTags datatypes.JSONSlice[string] `json:"avoid_tags" gorm:"type:text"`
}

// TableName returns the database table name for UserPrefs.
func (UserPrefs) TableName() string { return "user_prefs" }

// ChatMessage is one utterance in the append-only recommendation chat log.
// Role is either "user" or "assistant". Messages are read newest-first and
// re-reversed for chronological display.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_msgs,priority:1"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_msgs,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// TripDiary stores one generated journal entry for a trip day: the raw user
// sentences alongside the model-written journal text.
type TripDiary struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	TripID        string    `json:"trip_id"        gorm:"type:char(36);not null;index:idx_trip_diary"`
	DayIndex      int       `json:"day_index"      gorm:"not null"`
	UserSentences string    `json:"user_sentences" gorm:"type:text"`
	LLMJournal    string    `json:"llm_journal"    gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for TripDiary.
func (TripDiary) TableName() string { return "trip_diary" }
