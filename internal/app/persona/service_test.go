package persona_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soulscript/persona-api/internal/adapters/llm"
	"github.com/soulscript/persona-api/internal/adapters/storage/memory"
	"github.com/soulscript/persona-api/internal/app/persona"
	"github.com/soulscript/persona-api/internal/app/pipeline"
	"github.com/soulscript/persona-api/internal/domain"
)

const testUser = domain.UserID("test-user")

func newFixture(t *testing.T) (*persona.Service, *memory.PersonaStore, *atomic.Int64) {
	t.Helper()

	records := memory.NewRecordStore()
	records.SeedChat(testUser, []domain.Record{
		{ID: "c1", Timestamp: time.Now(), Title: "Hi", Content: "Hello."},
	})
	records.SeedJournal(testUser, []domain.Record{
		{ID: "j1", Timestamp: time.Now(), Title: "Today", Content: "Fine."},
	})

	var calls atomic.Int64
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		calls.Add(1)
		if strings.Contains(prompt, "clinical scoring system") {
			return `{"symptoms": [{"name": "Fatigue", "score": 4}]}`, nil
		}
		return `{"personalInformation": [{"label": "Name", "value": "Alex"}]}`, nil
	}

	store := memory.NewPersonaStore()
	svc := persona.NewService(pipeline.New(records, mock, 5), store, 24*time.Hour)
	return svc, store, &calls
}

func TestIsUpdateNeededWithoutProfile(t *testing.T) {
	svc, _, _ := newFixture(t)

	stale, err := svc.IsUpdateNeeded(context.Background(), testUser)
	if err != nil {
		t.Fatalf("IsUpdateNeeded failed: %v", err)
	}
	if !stale {
		t.Fatal("expected update needed for user without a profile")
	}
}

func TestRefreshPersistsProfile(t *testing.T) {
	svc, store, _ := newFixture(t)

	profile, err := svc.Refresh(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if profile.LastUpdated.IsZero() {
		t.Fatal("expected LastUpdated to be stamped")
	}
	if profile.Info["personalInformation"][0].Value != "Alex" {
		t.Fatalf("unexpected info: %+v", profile.Info)
	}

	stored, err := store.GetPersona(context.Background(), testUser)
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}
	if !stored.LastUpdated.Equal(profile.LastUpdated) {
		t.Fatal("stored profile does not match the refreshed one")
	}

	stale, err := svc.IsUpdateNeeded(context.Background(), testUser)
	if err != nil {
		t.Fatalf("IsUpdateNeeded failed: %v", err)
	}
	if stale {
		t.Fatal("freshly refreshed profile should not need an update")
	}
}

func TestEnsureReusesFreshProfile(t *testing.T) {
	svc, _, calls := newFixture(t)

	if _, err := svc.Refresh(context.Background(), testUser); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	after := calls.Load()

	profile, err := svc.Ensure(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}
	if calls.Load() != after {
		t.Fatalf("fresh profile should be reused without model calls, got %d extra", calls.Load()-after)
	}
}

func TestEnsureRebuildsStaleProfile(t *testing.T) {
	svc, store, calls := newFixture(t)

	old := &domain.PersonaProfile{
		UserID:      testUser,
		Info:        map[string][]domain.InfoField{"personalInformation": {{Label: "Name", Value: "old"}}},
		LastUpdated: time.Now().Add(-48 * time.Hour),
	}
	if err := store.SavePersona(context.Background(), old); err != nil {
		t.Fatalf("SavePersona failed: %v", err)
	}

	profile, err := svc.Ensure(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	if calls.Load() == 0 {
		t.Fatal("stale profile should trigger a rebuild")
	}
	if profile.Info["personalInformation"][0].Value != "Alex" {
		t.Fatalf("expected rebuilt profile, got %+v", profile.Info)
	}
}
