// Package services – TripService
//
// This file implements TripService, which owns the trip listing and the
// cascade delete. The delete removes blocks, days, diary entries, and the
// trip row itself inside a single transaction so a failure partway through
// leaves the store unchanged.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultListLimit = 50

// TripService lists and deletes stored trips.
type TripService struct {
	DB *gorm.DB

	// ListLimit caps the number of trips returned by List. Zero means the
	// default of 50.
	ListLimit int
}

// List returns the caller's trips as summaries, newest first, capped at the
// configured limit.
func (s *TripService) List(ctx context.Context, userID string) ([]repo.TripSummary, error) {
	tr := otel.Tracer("services/TripService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	limit := s.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	return repo.ListTripSummaries(ctx, s.DB, userID, limit)
}

// Delete removes a trip and everything hanging off it: blocks first, then
// days, then diary entries, then the trip row. All four deletes run in one
// transaction. Only the trip row itself is scoped to userID; deleting
// someone else's trip is a silent no-op on that final step.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	tr := otel.Tracer("services/TripService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("trip.id", tripID),
		),
	)
	defer span.End()

	dayIDs, err := repo.ListTripDayIDs(ctx, s.DB, tripID)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteBlocksByDayIDs(tx, dayIDs); err != nil {
			return err
		}
		if err := repo.DeleteTripDays(tx, tripID); err != nil {
			return err
		}
		if err := repo.DeleteTripDiary(tx, tripID); err != nil {
			return err
		}
		return repo.DeleteTrip(tx, tripID, userID)
	})
}
