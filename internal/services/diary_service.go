// Package services – DiaryService
//
// This file implements DiaryService, which turns a day's planned blocks
// plus the user's own sentences into a short first-person journal entry.
// The entry is stored only after the model call succeeded.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/ai"
	"github.com/tbourn/go-trip-backend/internal/domain"
	"github.com/tbourn/go-trip-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DiaryService summarizes trip days into journal entries.
type DiaryService struct {
	DB *gorm.DB
	AI ai.Client

	// ChatModel is the conversational model used for journal text.
	ChatModel string
}

// Summarize generates a journal entry for one day of a trip and persists it
// alongside the user's raw sentences. Returns ErrDayNotFound when the trip
// has no day at dayIndex. A model failure leaves no row behind.
func (s *DiaryService) Summarize(ctx context.Context, tripID string, dayIndex int, sentences string) (string, error) {
	tr := otel.Tracer("services/DiaryService")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(
			attribute.String("trip.id", tripID),
			attribute.Int("trip.day_index", dayIndex),
		),
	)
	defer span.End()

	day, err := repo.GetTripDay(ctx, s.DB, tripID, dayIndex)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrDayNotFound
		}
		return "", err
	}

	blocks, err := repo.ListDayBlocks(ctx, s.DB, day.ID)
	if err != nil {
		return "", err
	}

	system, user := buildDiaryPrompts(blocks, sentences)

	journal, err := s.AI.Complete(ctx, ai.Request{
		Model:       s.ChatModel,
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAI, err)
	}

	entry := &domain.TripDiary{
		ID:            uuid.NewString(),
		TripID:        tripID,
		DayIndex:      dayIndex,
		UserSentences: sentences,
		LLMJournal:    journal,
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.CreateDiaryEntry(s.DB.WithContext(ctx), entry); err != nil {
		return "", err
	}
	return journal, nil
}

// buildDiaryPrompts renders the journal instructions: the day's planned
// blocks as bullet lines plus the traveler's own sentences.
func buildDiaryPrompts(blocks []domain.Block, sentences string) (string, string) {
	system := `Turn user's sentences and today's travel blocks into a first-person mini journal (120-180 words).
Write naturally and engagingly, capturing the experience and emotions.`

	var b strings.Builder
	fmt.Fprintf(&b, "User's thoughts: %s\n\n", sentences)
	b.WriteString("Today's activities:\n")
	for _, blk := range blocks {
		place := blk.PlaceName
		if place == "" {
			place = "location"
		}
		fmt.Fprintf(&b, "- %s: %s at %s\n", blk.Time, blk.Title, place)
	}
	b.WriteString("\nWrite a brief first-person travel journal entry.")

	return system, b.String()
}
