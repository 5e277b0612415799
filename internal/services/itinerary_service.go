// Package services – ItineraryService
//
// This file implements ItineraryService, the application-level component
// that owns itinerary generation and persistence. Generation assembles a
// prompt from stored preferences plus the request parameters, invokes the
// model with a JSON-schema-constrained completion under a hard deadline,
// and parses the day/block plan. Persistence writes a trip with its nested
// days and blocks as one transaction and reconstructs the nested shape on
// load.
//
// Observability: the public methods are OpenTelemetry-instrumented; spans
// include user and trip identifiers where applicable.
package services

import (
	"context"
	"encoding/json"
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

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultBlockMinutes is substituted when the model omits est_duration.
const defaultBlockMinutes = 60

// GenerateInput carries the normalized parameters of a generation request.
// Nights is a pointer so "absent" can be told apart from zero; it is
// accepted for wire compatibility and does not influence generation.
type GenerateInput struct {
	Days       int
	Nights     *int
	Companions string
	StyleTags  []string
	City       string
	Budget     string
}

// TripInput is the trip header supplied alongside a plan on save.
type TripInput struct {
	Title      string
	Days       int
	Nights     int
	Companions string
	Budget     string
	StyleTags  []string
	City       string
	Country    string
}

// ItineraryService generates day/block plans via the model and persists
// them as trips.
type ItineraryService struct {
	DB *gorm.DB
	AI ai.Client

	// PlanModel is the schema-capable model used for generation.
	PlanModel string
	// PlanSource is the attribution stored on persisted blocks.
	PlanSource string
	// GenerateTimeout bounds the model call; the context deadline cancels
	// the underlying request rather than abandoning it.
	GenerateTimeout time.Duration
	// TitleLocale controls casing of default trip titles derived from the
	// city name.
	TitleLocale language.Tag
}

// Generate builds the prompt from stored preferences plus in, invokes the
// model with a strict output schema, and returns the parsed plan. A
// preference-read failure is resolved into the fixed default record; the
// generation never fails solely because preferences could not be read.
func (s *ItineraryService) Generate(ctx context.Context, userID string, in GenerateInput) ([]domain.DayPlan, error) {
	tr := otel.Tracer("services/ItineraryService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("trip.days", in.Days),
			attribute.String("trip.city", in.City),
		),
	)
	defer span.End()

	if in.Days < 1 {
		return nil, ErrInvalidDays
	}

	companions := in.Companions
	if companions == "" {
		companions = "friends"
	}
	styleTags := in.StyleTags
	if styleTags == nil {
		styleTags = []string{}
	}

	prefs := s.loadPrefs(ctx, userID)
	system, user := buildPlanPrompts(in.Days, in.City, companions, in.Budget, styleTags, prefs)

	cctx := ctx
	if s.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.GenerateTimeout)
		defer cancel()
	}

	raw, err := s.AI.Complete(cctx, ai.Request{
		Model:       s.PlanModel,
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   2000,
		Schema:      &ai.Schema{Name: "itinerary_plan", Definition: planResponseSchema()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAI, err)
	}

	var out struct {
		Days []domain.DayPlan `json:"days"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable completion: %v", ErrAI, err)
	}
	plan := out.Days
	if plan == nil {
		plan = []domain.DayPlan{}
	}
	return plan, nil
}

// loadPrefs resolves the caller's preference record, substituting the fixed
// default both when no row exists and when the store is unreachable. The
// two cases stay distinguishable at the repo layer; only the resolution is
// shared.
func (s *ItineraryService) loadPrefs(ctx context.Context, userID string) domain.UserPrefs {
	p, err := repo.GetUserPrefs(ctx, s.DB, userID)
	if err == nil {
		return *p
	}
	if !errors.Is(err, repo.ErrNotFound) {
		trace.SpanFromContext(ctx).RecordError(err)
	}
	return repo.DefaultUserPrefs()
}

// Save persists one trip header and its plan as a single transaction: one
// trip row, one day row per plan day, one block row per block. Missing
// est_duration defaults to 60 minutes, missing place_name and tags to
// empty. Partial application is never observable.
func (s *ItineraryService) Save(ctx context.Context, userID string, in TripInput, plan []domain.DayPlan) (string, error) {
	tr := otel.Tracer("services/ItineraryService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("plan.days", len(plan)),
		),
	)
	defer span.End()

	tripID := uuid.NewString()
	now := time.Now().UTC()

	styleTags := in.StyleTags
	if styleTags == nil {
		styleTags = []string{}
	}

	trip := &domain.Trip{
		ID:         tripID,
		UserID:     userID,
		Title:      s.defaultTitle(in.Title, in.City),
		Days:       in.Days,
		Nights:     in.Nights,
		Companions: in.Companions,
		Budget:     in.Budget,
		StyleTags:  styleTags,
		City:       in.City,
		Country:    in.Country,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateTrip(tx, trip); err != nil {
			return err
		}
		for _, day := range plan {
			d := &domain.TripDay{
				ID:       uuid.NewString(),
				TripID:   tripID,
				DayIndex: day.Day,
				Notes:    "",
			}
			if err := repo.CreateTripDay(tx, d); err != nil {
				return err
			}
			for _, b := range day.Blocks {
				tags := b.Tags
				if tags == nil {
					tags = []string{}
				}
				est := b.EstDuration
				if est <= 0 {
					est = defaultBlockMinutes
				}
				blk := &domain.Block{
					ID:          uuid.NewString(),
					TripDayID:   d.ID,
					Time:        b.Time,
					Title:       b.Title,
					PlaceName:   b.PlaceName,
					Tags:        tags,
					EstDuration: est,
					LLMSource:   s.PlanSource,
				}
				if err := repo.CreateBlock(tx, blk); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return tripID, nil
}

// Load reads a trip and reconstructs its nested plan: days ordered by day
// index, blocks ordered by time string ascending, tags deserialized and
// durations defaulted. The reads are sequential and non-transactional.
func (s *ItineraryService) Load(ctx context.Context, tripID string) (*domain.Trip, []domain.DayPlan, error) {
	tr := otel.Tracer("services/ItineraryService")
	ctx, span := tr.Start(ctx, "Load",
		trace.WithAttributes(attribute.String("trip.id", tripID)),
	)
	defer span.End()

	trip, err := repo.GetTrip(ctx, s.DB, tripID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrTripNotFound
		}
		return nil, nil, err
	}

	days, err := repo.ListTripDays(ctx, s.DB, tripID)
	if err != nil {
		return nil, nil, err
	}

	plan := make([]domain.DayPlan, 0, len(days))
	for _, d := range days {
		blocks, err := repo.ListDayBlocks(ctx, s.DB, d.ID)
		if err != nil {
			return nil, nil, err
		}
		out := make([]domain.PlanBlock, 0, len(blocks))
		for _, b := range blocks {
			tags := []string(b.Tags)
			if tags == nil {
				tags = []string{}
			}
			est := b.EstDuration
			if est <= 0 {
				est = defaultBlockMinutes
			}
			out = append(out, domain.PlanBlock{
				Time:        b.Time,
				Title:       b.Title,
				PlaceName:   b.PlaceName,
				Tags:        tags,
				EstDuration: est,
			})
		}
		plan = append(plan, domain.DayPlan{Day: d.DayIndex, Blocks: out})
	}
	return trip, plan, nil
}

// defaultTitle falls back to the title-cased city, then to "Trip", when no
// explicit title was supplied.
func (s *ItineraryService) defaultTitle(title, city string) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	if city = strings.TrimSpace(city); city != "" {
		loc := s.TitleLocale
		if loc == language.Und {
			loc = language.English
		}
		return cases.Title(loc).String(city)
	}
	return "Trip"
}

// buildPlanPrompts renders the system and user instructions for plan
// generation. Preferences are embedded as JSON so the model sees the exact
// stored record.
func buildPlanPrompts(days int, city, companions, budget string, styleTags []string, prefs domain.UserPrefs) (string, string) {
	system := `You are a trip itinerary composer. Create detailed travel itineraries with time blocks.
Granularity: 30-90min per activity. Cluster activities by area to minimize travel time. Include buffer time.
Return strictly valid JSON matching the schema.`

	prefsJSON, _ := json.Marshal(prefs)
	tagsJSON, _ := json.Marshal(styleTags)

	budgetLine := budget
	if budgetLine == "" {
		budgetLine = "Not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day itinerary for %s.\n", days, city)
	fmt.Fprintf(&b, "Preferences: %s\n", prefsJSON)
	fmt.Fprintf(&b, "Companions: %s\n", companions)
	fmt.Fprintf(&b, "Budget: %s\n", budgetLine)
	fmt.Fprintf(&b, "Style tags: %s\n", tagsJSON)
	fmt.Fprintf(&b, "Wake hours: %s to %s\n", prefs.WakeStart, prefs.WakeEnd)
	if budget != "" {
		fmt.Fprintf(&b, "\nIMPORTANT: Consider the budget constraint of %s when suggesting activities, restaurants, and accommodations. Choose cost-effective options that fit within this budget.\n", budget)
	}
	b.WriteString("\nGenerate an array of day plans. Each day should have multiple time blocks with activities.")

	return system, b.String()
}

// planResponseSchema is the strict output schema for generation: an array
// of {day, blocks[]} objects where each block requires time, title, tags.
func planResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day": map[string]any{"type": "number"},
						"blocks": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"time":       map[string]any{"type": "string"},
									"title":      map[string]any{"type": "string"},
									"place_name": map[string]any{"type": "string"},
									"tags": map[string]any{
										"type":  "array",
										"items": map[string]any{"type": "string"},
									},
									"est_duration": map[string]any{"type": "number"},
								},
								"required": []string{"time", "title", "tags"},
							},
						},
					},
					"required": []string{"day", "blocks"},
				},
			},
		},
		"required": []string{"days"},
	}
}
