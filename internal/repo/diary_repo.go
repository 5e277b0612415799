package repo

import (
	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/domain"
)

// CreateDiaryEntry inserts one generated journal row. Only written after
// the model call succeeded; a failed summarization leaves no trace.
func CreateDiaryEntry(db *gorm.DB, d *domain.TripDiary) error {
	return db.Create(d).Error
}
