package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-trip-backend/internal/ai"
	"github.com/tbourn/go-trip-backend/internal/domain"
	"github.com/tbourn/go-trip-backend/internal/repo"
)

// ----- Shared fixtures -----

// stubAI is a scripted ai.Client. With block set it waits for context
// cancellation, simulating a hung provider.
type stubAI struct {
	reply string
	err   error
	block bool

	calls int
	last  ai.Request
}

func (s *stubAI) Complete(ctx context.Context, req ai.Request) (string, error) {
	s.calls++
	s.last = req
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

const planFixture = `{"days":[{"day":1,"blocks":[{"time":"09:00","title":"Coffee at Fabrica","place_name":"Fabrica Coffee Roasters","tags":["coffee"],"est_duration":45},{"time":"11:00","title":"Alfama walk","tags":["walk","views"]}]}]}`

func newItinSvc(db *gorm.DB, client ai.Client) *ItineraryService {
	return &ItineraryService{
		DB:              db,
		AI:              client,
		PlanModel:       "test-model",
		PlanSource:      "groq:test-model",
		GenerateTimeout: 5 * time.Second,
	}
}

// ----- Generate -----

func TestGenerate_RejectsNonPositiveDays(t *testing.T) {
	svc := newItinSvc(newServiceDB(t), &stubAI{reply: planFixture})

	for _, days := range []int{0, -3} {
		_, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: days, City: "Lisbon"})
		if !errors.Is(err, ErrInvalidDays) {
			t.Fatalf("days=%d: expected ErrInvalidDays, got %v", days, err)
		}
	}
}

func TestGenerate_ParsesPlanAndAppliesSchema(t *testing.T) {
	client := &stubAI{reply: planFixture}
	svc := newItinSvc(newServiceDB(t), client)

	plan, err := svc.Generate(context.Background(), "u1", GenerateInput{
		Days: 1, City: "Lisbon", StyleTags: []string{"food"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(plan) != 1 || plan[0].Day != 1 || len(plan[0].Blocks) != 2 {
		t.Fatalf("unexpected plan shape: %+v", plan)
	}
	if plan[0].Blocks[0].PlaceName != "Fabrica Coffee Roasters" || plan[0].Blocks[0].EstDuration != 45 {
		t.Fatalf("block fields lost: %+v", plan[0].Blocks[0])
	}

	if client.last.Model != "test-model" {
		t.Fatalf("wrong model: %s", client.last.Model)
	}
	if client.last.Schema == nil || client.last.Schema.Name != "itinerary_plan" {
		t.Fatalf("expected JSON-schema constrained request, got %+v", client.last.Schema)
	}
	if !strings.Contains(client.last.User, "1-day itinerary for Lisbon") {
		t.Fatalf("user prompt missing request parameters:\n%s", client.last.User)
	}
}

func TestGenerate_DefaultPrefsWhenNoneStored(t *testing.T) {
	client := &stubAI{reply: planFixture}
	svc := newItinSvc(newServiceDB(t), client)

	if _, err := svc.Generate(context.Background(), "no-prefs-user", GenerateInput{Days: 2, City: "Porto"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(client.last.User, "07:30") || !strings.Contains(client.last.User, "22:30") {
		t.Fatalf("default wake hours not in prompt:\n%s", client.last.User)
	}
}

func TestGenerate_UsesStoredPrefs(t *testing.T) {
	db := newServiceDB(t)
	prefs := domain.UserPrefs{
		UserID: "u1", WakeStart: "06:00", WakeEnd: "21:00",
		Pace: "packed", Budget: "high",
		LikeTags: []string{"hiking"}, AvoidTags: []string{},
	}
	if err := db.Create(&prefs).Error; err != nil {
		t.Fatalf("seed prefs: %v", err)
	}

	client := &stubAI{reply: planFixture}
	svc := newItinSvc(db, client)
	if _, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 2, City: "Porto"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(client.last.User, "06:00 to 21:00") {
		t.Fatalf("stored wake hours not in prompt:\n%s", client.last.User)
	}
	if !strings.Contains(client.last.User, "hiking") {
		t.Fatalf("stored like tags not in prompt:\n%s", client.last.User)
	}
}

func TestGenerate_BudgetConstraintOnlyWhenSet(t *testing.T) {
	client := &stubAI{reply: planFixture}
	svc := newItinSvc(newServiceDB(t), client)

	if _, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 1, City: "Lisbon"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(client.last.User, "IMPORTANT: Consider the budget constraint") {
		t.Fatalf("budget paragraph present without a budget:\n%s", client.last.User)
	}
	if !strings.Contains(client.last.User, "Budget: Not specified") {
		t.Fatalf("missing budget placeholder:\n%s", client.last.User)
	}

	if _, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 1, City: "Lisbon", Budget: "low"}); err != nil {
		t.Fatalf("Generate with budget: %v", err)
	}
	if !strings.Contains(client.last.User, "budget constraint of low") {
		t.Fatalf("budget paragraph missing:\n%s", client.last.User)
	}
}

func TestGenerate_WrapsProviderError(t *testing.T) {
	svc := newItinSvc(newServiceDB(t), &stubAI{err: errors.New("upstream boom")})

	_, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 1, City: "Lisbon"})
	if !errors.Is(err, ErrAI) {
		t.Fatalf("expected ErrAI, got %v", err)
	}
	if !strings.Contains(err.Error(), "AI error") || !strings.Contains(err.Error(), "upstream boom") {
		t.Fatalf("error should carry provider text: %v", err)
	}
}

func TestGenerate_UnparseableCompletionIsAIError(t *testing.T) {
	svc := newItinSvc(newServiceDB(t), &stubAI{reply: "I'd love to help but here is prose"})

	_, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 1, City: "Lisbon"})
	if !errors.Is(err, ErrAI) {
		t.Fatalf("expected ErrAI for unparseable output, got %v", err)
	}
}

func TestGenerate_TimeoutCancelsCall(t *testing.T) {
	svc := newItinSvc(newServiceDB(t), &stubAI{block: true})
	svc.GenerateTimeout = 50 * time.Millisecond

	start := time.Now()
	_, err := svc.Generate(context.Background(), "u1", GenerateInput{Days: 1, City: "Lisbon"})
	if !errors.Is(err, ErrAI) {
		t.Fatalf("expected ErrAI on timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout did not fire promptly: %v", elapsed)
	}
}

// ----- Save -----

func TestSave_AppliesBlockDefaultsAndAttribution(t *testing.T) {
	db := newServiceDB(t)
	svc := newItinSvc(db, &stubAI{})

	plan := []domain.DayPlan{{
		Day: 1,
		Blocks: []domain.PlanBlock{
			{Time: "09:00", Title: "Coffee"}, // no tags, no place, no duration
		},
	}}

	tripID, err := svc.Save(context.Background(), "u1", TripInput{Days: 1, City: "Lisbon"}, plan)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tripID == "" {
		t.Fatal("empty trip id")
	}

	var blocks []domain.Block
	if err := db.Find(&blocks).Error; err != nil {
		t.Fatalf("load blocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	b := blocks[0]
	if b.EstDuration != 60 {
		t.Fatalf("duration default not applied: %d", b.EstDuration)
	}
	if b.PlaceName != "" || len(b.Tags) != 0 {
		t.Fatalf("optional fields should be empty: %+v", b)
	}
	if b.LLMSource != "groq:test-model" {
		t.Fatalf("missing model attribution: %q", b.LLMSource)
	}
}

func TestSave_FailureRollsBackEverything(t *testing.T) {
	db := newServiceDB(t)
	svc := newItinSvc(db, &stubAI{})

	// Make the block inserts fail mid-transaction.
	if err := db.Migrator().DropTable(&domain.Block{}); err != nil {
		t.Fatalf("drop blocks table: %v", err)
	}

	plan := []domain.DayPlan{{
		Day: 1,
		Blocks: []domain.PlanBlock{
			{Time: "09:00", Title: "Coffee", Tags: []string{"coffee"}},
		},
	}}
	if _, err := svc.Save(context.Background(), "u1", TripInput{Days: 1, City: "Lisbon"}, plan); err == nil {
		t.Fatal("expected error from failing block insert")
	}

	// Earlier steps must have rolled back.
	if n := countRows(t, db, &domain.Trip{}); n != 0 {
		t.Fatalf("trip row should not survive rollback, found %d", n)
	}
	if n := countRows(t, db, &domain.TripDay{}); n != 0 {
		t.Fatalf("day rows should not survive rollback, found %d", n)
	}
}

func TestSave_DefaultsTitleFromCity(t *testing.T) {
	db := newServiceDB(t)
	svc := newItinSvc(db, &stubAI{})

	id1, err := svc.Save(context.Background(), "u1", TripInput{Days: 1, City: "lisbon"}, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	t1, err := repo.GetTrip(context.Background(), db, id1)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if t1.Title != "Lisbon" {
		t.Fatalf("expected title-cased city, got %q", t1.Title)
	}

	id2, err := svc.Save(context.Background(), "u1", TripInput{Days: 1}, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	t2, err := repo.GetTrip(context.Background(), db, id2)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if t2.Title != "Trip" {
		t.Fatalf("expected fallback title, got %q", t2.Title)
	}

	id3, err := svc.Save(context.Background(), "u1", TripInput{Days: 1, Title: "  My trip  ", City: "lisbon"}, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	t3, err := repo.GetTrip(context.Background(), db, id3)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if t3.Title != "My trip" {
		t.Fatalf("explicit title should win: %q", t3.Title)
	}
}

// ----- Load -----

func TestLoad_UnknownTrip(t *testing.T) {
	svc := newItinSvc(newServiceDB(t), &stubAI{})
	_, _, err := svc.Load(context.Background(), "missing")
	if !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestSaveThenLoad_ReconstructsOrderedPlan(t *testing.T) {
	db := newServiceDB(t)
	svc := newItinSvc(db, &stubAI{})

	plan := []domain.DayPlan{
		{Day: 1, Blocks: []domain.PlanBlock{
			{Time: "14:00", Title: "Museum", Tags: []string{"art"}, EstDuration: 90},
			{Time: "09:00", Title: "Coffee", Tags: []string{"coffee"}, PlaceName: "Fabrica"},
		}},
		{Day: 2, Blocks: []domain.PlanBlock{
			{Time: "10:00", Title: "Tram 28", Tags: []string{"views"}},
		}},
	}

	tripID, err := svc.Save(context.Background(), "u1", TripInput{
		Title: "Lisbon weekend", Days: 2, Nights: 1,
		StyleTags: []string{"food"}, City: "Lisbon", Country: "Portugal",
	}, plan)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	trip, got, err := svc.Load(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if trip.Title != "Lisbon weekend" || trip.Days != 2 {
		t.Fatalf("trip header mismatch: %+v", trip)
	}
	if len(got) != 2 || got[0].Day != 1 || got[1].Day != 2 {
		t.Fatalf("day order mismatch: %+v", got)
	}
	day1 := got[0].Blocks
	if len(day1) != 2 || day1[0].Time != "09:00" || day1[1].Time != "14:00" {
		t.Fatalf("blocks not time-ordered: %+v", day1)
	}
	if day1[0].EstDuration != 60 {
		t.Fatalf("duration default lost on load: %d", day1[0].EstDuration)
	}
	if day1[0].PlaceName != "Fabrica" || len(day1[1].Tags) != 1 || day1[1].Tags[0] != "art" {
		t.Fatalf("block fields lost on load: %+v", day1)
	}
}
