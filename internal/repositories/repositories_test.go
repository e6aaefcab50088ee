package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "exports")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for missing sequence table")
	}
}

func TestExportRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		result := &models.ExportResult{
			PlaylistID:     "p.abc",
			AddedCount:     1,
			RequestedCount: 2,
			Unresolved:     []models.TrackRequest{{Artist: "Unknown Artist", Title: "Unknown Song"}},
			State:          models.StateDone,
		}
		rec := models.NewExportRecord("apple", "Live Aid", result)

		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}
		if rec.ID == "" || rec.Sequence != 1 {
			t.Errorf("expected id and sequence to be set, got %q #%d", rec.ID, rec.Sequence)
		}

		got, err := repo.Get(rec.ID)
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}

		if got.Name != "Live Aid" || got.Provider != "apple" || got.PlaylistID != "p.abc" {
			t.Errorf("unexpected record %+v", got)
		}
		if got.State != "done" || got.Requested != 2 || got.Added != 1 {
			t.Errorf("unexpected counts %+v", got)
		}
		if len(got.Unresolved) != 1 || got.Unresolved[0].Artist != "Unknown Artist" {
			t.Errorf("unexpected unresolved %+v", got.Unresolved)
		}
		if got.ErrorMessage != "" {
			t.Errorf("expected empty error message, got %q", got.ErrorMessage)
		}
	})

	t.Run("Failed Export Without Playlist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		result := &models.ExportResult{
			RequestedCount: 1,
			State:          models.StateFailed,
			FatalError:     shared.ErrNoMatches,
		}
		rec := models.NewExportRecord("spotify", "Mix", result)

		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create export: %v", err)
		}

		got, err := repo.Get(rec.ID)
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}
		if got.PlaylistID != "" {
			t.Errorf("expected no playlist id, got %q", got.PlaylistID)
		}
		if got.ErrorMessage != shared.ErrNoMatches.Error() {
			t.Errorf("expected error message to be stored, got %q", got.ErrorMessage)
		}
		if len(got.Unresolved) != 0 {
			t.Errorf("expected empty unresolved list, got %#v", got.Unresolved)
		}
	})

	t.Run("Create Validates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewExportRepository(db).Create(&models.ExportRecord{Name: "x"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewExportRepository(db).Get("does-not-exist")
		if !errors.Is(err, shared.ErrExportNotFound) {
			t.Errorf("expected ErrExportNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		for i := range 5 {
			rec := models.NewExportRecord("youtube", fmt.Sprintf("Mix %d", i), &models.ExportResult{State: models.StateDone})
			if err := repo.Create(rec); err != nil {
				t.Fatalf("failed to create export: %v", err)
			}
		}

		records, err := repo.List(3)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].Name != "Mix 4" || records[2].Name != "Mix 2" {
			t.Errorf("expected newest first, got %s .. %s", records[0].Name, records[2].Name)
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(all) != 5 {
			t.Errorf("expected default limit to return all 5, got %d", len(all))
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		repo := NewExportRepository(db)
		if err := repo.Create(&models.ExportRecord{Provider: "apple", State: "done"}); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(1); err == nil {
			t.Error("expected error on closed database")
		}
	})
}
