// Package services – RecoService
//
// This file implements RecoService, the destination recommendation chat.
// A recommendation turn aggregates a taste profile from the caller's stored
// trips (tag frequencies and preferred times of day), embeds it together
// with the recent conversation into the prompt, and asks the model for
// three destination suggestions. On success the user message and assistant
// reply are appended to the chat log as one transaction; on model failure
// nothing is persisted.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
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

const (
	defaultHistoryLimit  = 10
	defaultTripScanLimit = 30
	defaultTopTagLimit   = 6
)

// tasteProfile is the aggregate fed into the recommendation prompt.
type tasteProfile struct {
	TopTags     []string
	TimePattern string
}

// RecoService answers destination questions using the chat model plus a
// profile mined from the caller's stored trips.
type RecoService struct {
	DB *gorm.DB
	AI ai.Client

	// ChatModel is the conversational model used for recommendations.
	ChatModel string
	// HistoryLimit caps the conversation window embedded in the prompt
	// and returned by History. Zero means 10.
	HistoryLimit int
	// TripScanLimit caps how many recent trips feed the taste profile.
	// Zero means 30.
	TripScanLimit int
	// TopTagLimit caps how many tags the profile reports. Zero means 6.
	TopTagLimit int
}

// History returns the caller's recent chat log in chronological order.
func (s *RecoService) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/RecoService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	limit := s.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	msgs, err := repo.ListRecentChatMessages(ctx, s.DB, userID, limit)
	if err != nil {
		return nil, err
	}
	// Newest-first from the store; flip for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// NextDestination runs one recommendation turn for message and returns the
// assistant's markdown reply. The log pair is written only after the model
// call succeeded, inside one transaction sharing one timestamp so the two
// rows sort together.
func (s *RecoService) NextDestination(ctx context.Context, userID, message string) (string, error) {
	tr := otel.Tracer("services/RecoService")
	ctx, span := tr.Start(ctx, "NextDestination",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	history, err := s.History(ctx, userID)
	if err != nil {
		return "", err
	}
	profile, err := s.buildProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	system, user := buildRecoPrompts(message, history, profile)

	reply, err := s.AI.Complete(ctx, ai.Request{
		Model:       s.ChatModel,
		System:      system,
		User:        user,
		Temperature: 0.8,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAI, err)
	}

	ts := time.Now().UTC()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateChatMessage(tx, &domain.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    userID,
			Role:      "user",
			Content:   message,
			CreatedAt: ts,
		}); err != nil {
			return err
		}
		return repo.CreateChatMessage(tx, &domain.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    userID,
			Role:      "assistant",
			Content:   reply,
			CreatedAt: ts,
		})
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// buildProfile scans the caller's recent trips and aggregates block tags
// and start-time buckets. Any storage error aborts the turn; a profile
// computed from partial data would silently skew recommendations.
func (s *RecoService) buildProfile(ctx context.Context, userID string) (tasteProfile, error) {
	scan := s.TripScanLimit
	if scan <= 0 {
		scan = defaultTripScanLimit
	}
	topN := s.TopTagLimit
	if topN <= 0 {
		topN = defaultTopTagLimit
	}

	tripIDs, err := repo.ListTripIDs(ctx, s.DB, userID, scan)
	if err != nil {
		return tasteProfile{}, err
	}

	tagCounts := map[string]int{}
	timeCounts := map[string]int{}
	for _, tripID := range tripIDs {
		days, err := repo.ListTripDays(ctx, s.DB, tripID)
		if err != nil {
			return tasteProfile{}, err
		}
		for _, d := range days {
			blocks, err := repo.ListDayBlocks(ctx, s.DB, d.ID)
			if err != nil {
				return tasteProfile{}, err
			}
			for _, b := range blocks {
				for _, tag := range b.Tags {
					tagCounts[strings.ToLower(tag)]++
				}
				timeCounts[timeBucket(b.Time)]++
			}
		}
	}

	return tasteProfile{
		TopTags:     topTags(tagCounts, topN),
		TimePattern: bucketHistogram(timeCounts),
	}, nil
}

// buildRecoPrompts renders the recommendation instructions. History and the
// mined profile are folded into the user prompt as plain text.
func buildRecoPrompts(message string, history []domain.ChatMessage, profile tasteProfile) (string, string) {
	system := `You are a travel recommender. Based on user's travel history and chat context, recommend 3 destinations.

IMPORTANT: Format your response as a structured Markdown list with:
- **City Name, Country**: Brief description (1 sentence)
  + Activity 1 (concise)
  + Activity 2 (concise)
  + Activity 3 (concise)

Be specific about activities and locations. Use proper Markdown formatting with **bold** for city names and + for activities.`

	tagsJSON, _ := json.Marshal(profile.TopTags)
	pattern := profile.TimePattern
	if pattern == "" {
		pattern = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User's current request: %q\n\n", message)
	b.WriteString("Travel history analysis:\n")
	fmt.Fprintf(&b, "- Top preferred tags: %s\n", tagsJSON)
	fmt.Fprintf(&b, "- Time preferences: %s\n\n", pattern)
	b.WriteString("Recent chat context:\n")
	if len(history) == 0 {
		b.WriteString("No previous messages")
	} else {
		lines := make([]string, len(history))
		for i, m := range history {
			lines[i] = fmt.Sprintf("%s: %s", m.Role, m.Content)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n\nRecommend 3 destinations that match their interests and current request.")

	return system, b.String()
}

// timeBucket maps an HH:MM start time onto morning/afternoon/evening. The
// hour is whatever parses before the first colon; anything unparseable
// counts as hour zero.
func timeBucket(t string) string {
	h := 0
	if i := strings.IndexByte(t, ':'); i >= 0 {
		t = t[:i]
	}
	if n, err := strconv.Atoi(t); err == nil {
		h = n
	}
	switch {
	case h < 11:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// topTags returns the n most frequent tags, most frequent first. Ties sort
// alphabetically so the output is stable.
func topTags(counts map[string]int, n int) []string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// bucketHistogram renders time-of-day counts as "evening:5, morning:2",
// highest count first, ties alphabetical.
func bucketHistogram(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	buckets := make([]string, 0, len(counts))
	for b := range counts {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if counts[buckets[i]] != counts[buckets[j]] {
			return counts[buckets[i]] > counts[buckets[j]]
		}
		return buckets[i] < buckets[j]
	})
	parts := make([]string, len(buckets))
	for i, b := range buckets {
		parts[i] = fmt.Sprintf("%s:%d", b, counts[b])
	}
	return strings.Join(parts, ", ")
}
