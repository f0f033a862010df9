package shopping

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lembas/internal/database"
	"lembas/internal/ingredient"
	"lembas/internal/logger"

	"github.com/google/go-cmp/cmp"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	items := []ingredient.Quantity{{Ingredient: flour, Quantity: 100}}
	export := &Export{
		From:  "2024-05-27",
		To:    "2024-06-02",
		Items: items,
		Text:  Plaintext(items),
	}

	id, err := repo.Save(ctx, export)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id == 0 || export.ID != id {
		t.Errorf("Expected export id to be set, got %d / %d", id, export.ID)
	}

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got == nil {
			t.Fatal("Expected an export, got nil")
		}
		if diff := cmp.Diff(items, got.Items); diff != "" {
			t.Errorf("items mismatch (-want +got):\n%s", diff)
		}
		if got.Text != "Shopping List\n\n- Flour, 100g\n" {
			t.Errorf("Expected saved text, got %q", got.Text)
		}
		if got.From != "2024-05-27" || got.To != "2024-06-02" {
			t.Errorf("Expected range 2024-05-27..2024-06-02, got %s..%s", got.From, got.To)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, id+100)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for a missing export, got %+v", got)
		}
	})

	t.Run("ListRecentAndCleanup", func(t *testing.T) {
		old := &Export{From: "2023-01-02", To: "2023-01-08", Items: items, Text: "old", CreatedAt: time.Now().UTC().AddDate(0, 0, -60)}
		if _, err := repo.Save(ctx, old); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		recent, err := repo.ListRecent(ctx, 10)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("Expected 2 exports, got %d", len(recent))
		}
		if recent[0].ID != id {
			t.Errorf("Expected newest export first, got id %d", recent[0].ID)
		}

		removed, err := repo.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 export removed, got %d", removed)
		}

		recent, err = repo.ListRecent(ctx, 10)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recent) != 1 {
			t.Errorf("Expected 1 export left, got %d", len(recent))
		}
	})
}
