package match

import (
	"context"
	"errors"
	"testing"
	"time"

	matchDomain "matchtrack/internal/domain/match"
	"matchtrack/internal/domain/preference"
	"matchtrack/internal/infra/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.SeedUsers()
	store.SeedMatches()
	return store
}

func TestListUseCase_Execute(t *testing.T) {
	store := seededStore(t)
	uc := NewListUseCase(store, store)
	ctx := context.Background()

	t.Run("AnonymousUsesDefaults", func(t *testing.T) {
		items, err := uc.Execute(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 3 {
			t.Fatalf("items = %d", len(items))
		}
		for i := 1; i < len(items); i++ {
			if items[i].KickoffAt.Before(items[i-1].KickoffAt) {
				t.Error("not sorted by kickoff_at asc")
			}
		}
	})

	t.Run("UserPreferenceApplied", func(t *testing.T) {
		u, _ := store.FindByUsername(ctx, "viewer")
		p := preference.Defaults()
		p.SortCol = "home_team"
		p.SortOrder = "desc"
		store.Save(ctx, u.ID, p)

		items, err := uc.Execute(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if items[0].HomeTeam != "Dynamo" {
			t.Errorf("first = %s", items[0].HomeTeam)
		}
	})

	t.Run("BadStoredSortFallsBack", func(t *testing.T) {
		u, _ := store.FindByUsername(ctx, "admin")
		store.Save(ctx, u.ID, preference.Preferences{SortCol: "evil; DROP", SortOrder: "sideways"})

		items, err := uc.Execute(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if items[0].KickoffAt.After(items[1].KickoffAt) {
			t.Error("did not fall back to kickoff_at asc")
		}
	})
}

func TestUpdateUseCase_Execute(t *testing.T) {
	store := seededStore(t)
	uc := NewUpdateUseCase(store)
	ctx := context.Background()

	items, _ := store.List(ctx, "kickoff_at", "asc", 1)
	seen := true
	if err := uc.Execute(ctx, matchDomain.Update{ID: items[0].ID, Seen: &seen}); err != nil {
		t.Fatal(err)
	}

	if err := uc.Execute(ctx, matchDomain.Update{ID: items[0].ID}); !errors.Is(err, matchDomain.ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

type stubSource struct {
	fixtures []matchDomain.Match
	err      error
}

func (s stubSource) ListFixtures(_ context.Context, _, _ time.Time) ([]matchDomain.Match, error) {
	return s.fixtures, s.err
}

func TestImportUseCase_Execute(t *testing.T) {
	store := memory.NewStore()
	kickoff := time.Now().Add(72 * time.Hour)
	src := stubSource{fixtures: []matchDomain.Match{
		{KickoffAt: kickoff, HomeTeam: "Inter", AwayTeam: "Milan", Tournament: "Serie A", League: "Italy", Status: "scheduled"},
		{KickoffAt: kickoff.Add(time.Hour), HomeTeam: "Roma", AwayTeam: "Lazio", Tournament: "Serie A", League: "Italy", Status: "scheduled"},
	}}

	uc := NewImportUseCase(src, store, 14)
	n, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}

	items, _ := store.List(context.Background(), "kickoff_at", "asc", 1000)
	if len(items) != 2 {
		t.Errorf("stored = %d", len(items))
	}

	// 重跑不該長出重複列
	if _, err := uc.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	items, _ = store.List(context.Background(), "kickoff_at", "asc", 1000)
	if len(items) != 2 {
		t.Errorf("after rerun stored = %d", len(items))
	}
}

func TestImportUseCase_SourceError(t *testing.T) {
	store := memory.NewStore()
	uc := NewImportUseCase(stubSource{err: errors.New("quota exceeded")}, store, 14)
	if _, err := uc.Execute(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
