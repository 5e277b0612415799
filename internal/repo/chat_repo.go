// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only recommendation chat log.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/domain"
)

// ListRecentChatMessages returns up to limit messages for userID ordered
// newest first. Callers that need chronological display re-reverse the
// slice (see RecoService.History).
func ListRecentChatMessages(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateChatMessage inserts one chat log row. Services append the user and
// assistant rows of an exchange inside a single transaction so the pair is
// all-or-nothing.
func CreateChatMessage(db *gorm.DB, m *domain.ChatMessage) error {
	return db.Create(m).Error
}
