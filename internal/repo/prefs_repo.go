package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/domain"
)

// GetUserPrefs fetches the preference record for userID. A missing row
// returns ErrNotFound; other storage failures propagate the raw error so
// the caller can tell "no row" apart from "store unreachable" before
// deciding to substitute defaults.
func GetUserPrefs(ctx context.Context, db *gorm.DB, userID string) (*domain.UserPrefs, error) {
	var p domain.UserPrefs
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DefaultUserPrefs returns the fixed fallback preference record used when a
// user has no stored preferences or the read failed.
func DefaultUserPrefs() domain.UserPrefs {
	return domain.UserPrefs{
		WakeStart: "07:30",
		WakeEnd:   "22:30",
		Pace:      "relaxed",
		Budget:    "mid",
		LikeTags:  []string{"coffee", "art"},
		AvoidTags: []string{},
	}
}
