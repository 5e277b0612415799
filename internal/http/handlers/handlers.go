// Handler wiring.
//
// This file declares the service contracts consumed by the HTTP layer and
// the Handlers aggregate that binds them. Handlers are transport-thin: they
// validate input, call application services, and translate results into
// HTTP responses.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trip-backend/internal/domain"
	"github.com/tbourn/go-trip-backend/internal/repo"
	"github.com/tbourn/go-trip-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ItineraryService defines plan generation and trip persistence operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ItineraryService interface {
	// Generate produces a day/block plan for the request without persisting.
	Generate(ctx context.Context, userID string, in services.GenerateInput) ([]domain.DayPlan, error)
	// Save persists a trip header plus its plan atomically, returning the
	// new trip ID.
	Save(ctx context.Context, userID string, in services.TripInput, plan []domain.DayPlan) (string, error)
	// Load returns a stored trip and its reconstructed plan.
	Load(ctx context.Context, tripID string) (*domain.Trip, []domain.DayPlan, error)
}

// TripService defines trip listing and deletion operations.
type TripService interface {
	// List returns the user's trip summaries, newest first.
	List(ctx context.Context, userID string) ([]repo.TripSummary, error)
	// Delete removes a trip and its days, blocks, and diary entries.
	Delete(ctx context.Context, userID, tripID string) error
}

// RecoService defines the destination recommendation chat operations.
type RecoService interface {
	// History returns the user's recent chat log, oldest first.
	History(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	// NextDestination runs one recommendation turn and returns the reply.
	NextDestination(ctx context.Context, userID, message string) (string, error)
}

// DiaryService defines the day summarization operation.
type DiaryService interface {
	// Summarize writes a journal entry for one trip day.
	Summarize(ctx context.Context, tripID string, dayIndex int, sentences string) (string, error)
}

// Handlers groups the HTTP endpoints for itineraries, trips, the
// recommendation chat, and the diary. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	itinSvc  ItineraryService
	tripSvc  TripService
	recoSvc  RecoService
	diarySvc DiaryService
}

// New constructs a Handlers instance bound to the given services.
func New(itinSvc ItineraryService, tripSvc TripService, recoSvc RecoService, diarySvc DiaryService) *Handlers {
	return &Handlers{itinSvc: itinSvc, tripSvc: tripSvc, recoSvc: recoSvc, diarySvc: diarySvc}
}

// userID extracts the authenticated user id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-User-ID" header
// (tests use it), and finally to "demo-user". It never touches c.Request if
// it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}
