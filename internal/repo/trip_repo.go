// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for trips, their
// days, and their time blocks.
//
// All read functions are context-aware and accept a *gorm.DB handle, making
// them safe for use within transactions or connection-scoped operations.
// Insert and delete helpers take the handle as-is so services can compose
// them inside a gorm Transaction for all-or-nothing batches. They follow the
// "thin repository" approach: no business logic, only CRUD persistence and
// query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// TripSummary is the projection returned by trip listings: just enough to
// render a trip card, never the nested plan.
type TripSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTrip inserts a fully populated Trip row. Callers are expected to
// have assigned the ID and timestamps already so that day and block rows
// created in the same transaction share them.
func CreateTrip(db *gorm.DB, t *domain.Trip) error {
	return db.Create(t).Error
}

// CreateTripDay inserts one TripDay row.
func CreateTripDay(db *gorm.DB, d *domain.TripDay) error {
	return db.Create(d).Error
}

// CreateBlock inserts one Block row.
func CreateBlock(db *gorm.DB, b *domain.Block) error {
	return db.Create(b).Error
}

// GetTrip fetches a single trip by ID. If the record does not exist, it
// returns ErrNotFound.
func GetTrip(ctx context.Context, db *gorm.DB, id string) (*domain.Trip, error) {
	var t domain.Trip
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTripSummaries returns up to limit trips owned by userID, newest first
// by creation timestamp, projected to the summary columns only.
func ListTripSummaries(ctx context.Context, db *gorm.DB, userID string, limit int) ([]TripSummary, error) {
	out := []TripSummary{}
	err := db.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("id, title, city, country, created_at").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListTripIDs returns up to limit trip IDs owned by userID, newest first.
// Used by the recommendation profile scan.
func ListTripIDs(ctx context.Context, db *gorm.DB, userID string, limit int) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Trip{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// ListTripDays returns all days of a trip ordered by day index ascending.
func ListTripDays(ctx context.Context, db *gorm.DB, tripID string) ([]domain.TripDay, error) {
	var out []domain.TripDay
	err := db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("day_index asc").
		Find(&out).Error
	return out, err
}

// ListTripDayIDs returns the IDs of all days belonging to a trip.
func ListTripDayIDs(ctx context.Context, db *gorm.DB, tripID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.TripDay{}).
		Where("trip_id = ?", tripID).
		Pluck("id", &ids).Error
	return ids, err
}

// GetTripDay fetches one day by trip and day index, or ErrNotFound.
func GetTripDay(ctx context.Context, db *gorm.DB, tripID string, dayIndex int) (*domain.TripDay, error) {
	var d domain.TripDay
	err := db.WithContext(ctx).
		Where("trip_id = ? AND day_index = ?", tripID, dayIndex).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDayBlocks returns all blocks of a day ordered by the time string
// ascending. The ordering is lexicographic by design.
func ListDayBlocks(ctx context.Context, db *gorm.DB, tripDayID string) ([]domain.Block, error) {
	var out []domain.Block
	err := db.WithContext(ctx).
		Where("trip_day_id = ?", tripDayID).
		Order("time asc").
		Find(&out).Error
	return out, err
}

// DeleteBlocksByDayIDs removes every block belonging to the given day IDs.
// A nil/empty slice is a no-op.
func DeleteBlocksByDayIDs(db *gorm.DB, dayIDs []string) error {
	if len(dayIDs) == 0 {
		return nil
	}
	return db.Where("trip_day_id IN ?", dayIDs).Delete(&domain.Block{}).Error
}

// DeleteTripDays removes every day row of a trip.
func DeleteTripDays(db *gorm.DB, tripID string) error {
	return db.Where("trip_id = ?", tripID).Delete(&domain.TripDay{}).Error
}

// DeleteTripDiary removes every diary row of a trip.
func DeleteTripDiary(db *gorm.DB, tripID string) error {
	return db.Where("trip_id = ?", tripID).Delete(&domain.TripDiary{}).Error
}

// DeleteTrip removes the trip row itself, scoped to the owning user. When
// the trip belongs to a different user no rows are affected and no error is
// returned; the delete is a silent no-op.
func DeleteTrip(db *gorm.DB, tripID, userID string) error {
	return db.Where("id = ? AND user_id = ?", tripID, userID).Delete(&domain.Trip{}).Error
}
