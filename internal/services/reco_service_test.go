package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/domain"
)

func seedTripWithBlocks(t *testing.T, db *gorm.DB, userID string, created time.Time, blocks []domain.Block) {
	t.Helper()

	tripID := uuid.NewString()
	trip := domain.Trip{
		ID: tripID, UserID: userID, Title: "T", Days: 1, Nights: 0,
		StyleTags: []string{}, CreatedAt: created, UpdatedAt: created,
	}
	if err := db.Create(&trip).Error; err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	day := domain.TripDay{ID: uuid.NewString(), TripID: tripID, DayIndex: 1}
	if err := db.Create(&day).Error; err != nil {
		t.Fatalf("seed day: %v", err)
	}
	for i := range blocks {
		blocks[i].ID = uuid.NewString()
		blocks[i].TripDayID = day.ID
		if blocks[i].Tags == nil {
			blocks[i].Tags = []string{}
		}
		if err := db.Create(&blocks[i]).Error; err != nil {
			t.Fatalf("seed block: %v", err)
		}
	}
}

// ----- Profile helpers -----

func TestTimeBucket_Boundaries(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"08:30", "morning"},
		{"10:59", "morning"},
		{"11:00", "afternoon"},
		{"16:59", "afternoon"},
		{"17:00", "evening"},
		{"23:45", "evening"},
		{"", "morning"},       // unparseable counts as hour zero
		{"late", "morning"},   // ditto
		{"9", "morning"},      // bare hour, no colon
	}
	for _, c := range cases {
		if got := timeBucket(c.in); got != c.want {
			t.Errorf("timeBucket(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTopTags_OrderAndCap(t *testing.T) {
	counts := map[string]int{
		"coffee": 5, "art": 3, "food": 3, "views": 1,
	}
	got := topTags(counts, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %v", got)
	}
	if got[0] != "coffee" {
		t.Fatalf("most frequent first, got %v", got)
	}
	// art/food tie resolves alphabetically.
	if got[1] != "art" || got[2] != "food" {
		t.Fatalf("tie should be alphabetical: %v", got)
	}
}

func TestBucketHistogram_Rendering(t *testing.T) {
	if s := bucketHistogram(nil); s != "" {
		t.Fatalf("empty counts should render empty, got %q", s)
	}
	got := bucketHistogram(map[string]int{"morning": 2, "evening": 5})
	if got != "evening:5, morning:2" {
		t.Fatalf("unexpected histogram: %q", got)
	}
}

// ----- History -----

func TestHistory_ChronologicalWindow(t *testing.T) {
	db := newServiceDB(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		m := domain.ChatMessage{
			ID: uuid.NewString(), UserID: "u1", Role: role,
			Content: strings.Repeat("x", i+1), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	svc := &RecoService{DB: db, AI: &stubAI{}, ChatModel: "test-model"}
	got, err := svc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected window of 10, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatalf("history not chronological at %d: %+v", i, got)
		}
	}
	// The two oldest messages fall outside the window.
	if got[0].Content != strings.Repeat("x", 3) {
		t.Fatalf("window should start at the third message, got %q", got[0].Content)
	}
}

// ----- NextDestination -----

func TestNextDestination_ProfileFedIntoPrompt(t *testing.T) {
	db := newServiceDB(t)
	// Tag counting must be case-insensitive: Coffee + coffee = 2.
	seedTripWithBlocks(t, db, "u1", time.Now().UTC(), []domain.Block{
		{Time: "09:00", Title: "A", Tags: []string{"Coffee"}},
		{Time: "18:00", Title: "B", Tags: []string{"coffee"}},
		{Time: "19:00", Title: "C", Tags: []string{"food"}},
	})

	client := &stubAI{reply: "1. Porto\n2. Sevilla\n3. Valencia"}
	svc := &RecoService{DB: db, AI: client, ChatModel: "test-model"}

	text, err := svc.NextDestination(context.Background(), "u1", "somewhere warm")
	if err != nil {
		t.Fatalf("NextDestination: %v", err)
	}
	if !strings.Contains(text, "Porto") {
		t.Fatalf("reply not passed through: %q", text)
	}
	if client.last.Model != "test-model" || client.last.Schema != nil {
		t.Fatalf("recommendation must be free-form text on the chat model: %+v", client.last)
	}
	if !strings.Contains(client.last.User, `["coffee","food"]`) {
		t.Fatalf("top tags missing from prompt:\n%s", client.last.User)
	}
	if strings.Contains(client.last.User, "Coffee") {
		t.Fatalf("tags should be lowercased in the profile:\n%s", client.last.User)
	}
	if !strings.Contains(client.last.User, "Time preferences: evening:2, morning:1") {
		t.Fatalf("time pattern missing from prompt:\n%s", client.last.User)
	}
	if !strings.Contains(client.last.User, `User's current request: "somewhere warm"`) {
		t.Fatalf("user message missing from prompt:\n%s", client.last.User)
	}
	if !strings.Contains(client.last.User, "No previous messages") {
		t.Fatalf("empty history placeholder missing:\n%s", client.last.User)
	}
}

func TestNextDestination_PersistsExchangePair(t *testing.T) {
	db := newServiceDB(t)
	client := &stubAI{reply: "Go to Porto."}
	svc := &RecoService{DB: db, AI: client, ChatModel: "test-model"}

	if _, err := svc.NextDestination(context.Background(), "u1", "hello"); err != nil {
		t.Fatalf("NextDestination: %v", err)
	}

	var msgs []domain.ChatMessage
	if err := db.Order("role desc").Find(&msgs).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user+assistant pair, got %d rows", len(msgs))
	}
	var user, assistant *domain.ChatMessage
	for i := range msgs {
		switch msgs[i].Role {
		case "user":
			user = &msgs[i]
		case "assistant":
			assistant = &msgs[i]
		}
	}
	if user == nil || assistant == nil {
		t.Fatalf("missing pair roles: %+v", msgs)
	}
	if user.Content != "hello" || assistant.Content != "Go to Porto." {
		t.Fatalf("content mismatch: %+v", msgs)
	}
	if !user.CreatedAt.Equal(assistant.CreatedAt) {
		t.Fatalf("pair should share one timestamp: %v vs %v", user.CreatedAt, assistant.CreatedAt)
	}
}

func TestNextDestination_ModelFailurePersistsNothing(t *testing.T) {
	db := newServiceDB(t)
	svc := &RecoService{DB: db, AI: &stubAI{err: errors.New("boom")}, ChatModel: "test-model"}

	_, err := svc.NextDestination(context.Background(), "u1", "hello")
	if !errors.Is(err, ErrAI) {
		t.Fatalf("expected ErrAI, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.ChatMessage{}).Count(&count).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed turn must not persist messages, found %d", count)
	}
}

func TestNextDestination_HistoryEmbedded(t *testing.T) {
	db := newServiceDB(t)
	old := domain.ChatMessage{
		ID: uuid.NewString(), UserID: "u1", Role: "assistant",
		Content: "Previously I suggested Porto.", CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}

	client := &stubAI{reply: "ok"}
	svc := &RecoService{DB: db, AI: client, ChatModel: "test-model"}
	if _, err := svc.NextDestination(context.Background(), "u1", "what else?"); err != nil {
		t.Fatalf("NextDestination: %v", err)
	}
	if !strings.Contains(client.last.User, "assistant: Previously I suggested Porto.") {
		t.Fatalf("history not embedded:\n%s", client.last.User)
	}
}
