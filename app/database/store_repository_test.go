package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) *StoreRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "store.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewStoreRepository(db)
}

func TestRunMigrations(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("Expected clean version 2, got %d (dirty=%v)", version, dirty)
	}

	// Running again is a no-op.
	if _, _, err := RunMigrations(db); err != nil {
		t.Errorf("Expected second run to succeed, got %v", err)
	}
}

func TestStoreRepository_LoadEmpty(t *testing.T) {
	repo := newTestRepository(t)

	snapshot, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !snapshot.CheckedAt.IsZero() {
		t.Errorf("Expected zero checked_at, got %v", snapshot.CheckedAt)
	}
	if len(snapshot.Files) != 0 {
		t.Errorf("Expected no files, got %d", len(snapshot.Files))
	}
}

func TestStoreRepository_SaveAndLoad(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t0 := time.Date(2024, 3, 1, 10, 30, 0, 123, time.UTC)
	t1 := t0.Add(26 * time.Hour)

	snapshot := &Snapshot{
		CheckedAt: t1,
		Files: []FileRecord{
			{
				SourceID:  "awesome-go",
				FilePath:  "README.md",
				UpdatedAt: t1,
				Entries: []EntryRecord{
					{Identifier: "https://b.dev", Category: "Tools", Markdown: "- b ⭐ 5", Source: "- b", HTML: "<li>b</li>", UpdatedAt: t1, DayBucket: "20240302"},
					{Identifier: "https://a.dev", Category: "Tools", Markdown: "- a", HTML: "<li>a</li>", UpdatedAt: t0, DayBucket: "20240301"},
				},
			},
			{SourceID: "awesome-go", FilePath: "empty.md", UpdatedAt: t0},
		},
	}

	if err := repo.Save(ctx, snapshot); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !loaded.CheckedAt.Equal(t1) {
		t.Errorf("Expected checked_at %v, got %v", t1, loaded.CheckedAt)
	}
	if len(loaded.Files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(loaded.Files))
	}

	readme := loaded.Files[0]
	if readme.FilePath != "README.md" || len(readme.Entries) != 2 {
		t.Fatalf("Expected README.md with 2 entries, got %s with %d", readme.FilePath, len(readme.Entries))
	}
	// Entry order is preserved, not sorted by identifier.
	if readme.Entries[0].Identifier != "https://b.dev" {
		t.Errorf("Expected first entry 'https://b.dev', got '%s'", readme.Entries[0].Identifier)
	}
	if !readme.Entries[1].UpdatedAt.Equal(t0) {
		t.Errorf("Expected updated_at %v, got %v", t0, readme.Entries[1].UpdatedAt)
	}
	if readme.Entries[1].HTML != "<li>a</li>" || readme.Entries[1].DayBucket != "20240301" {
		t.Errorf("Unexpected entry contents: %+v", readme.Entries[1])
	}
	if readme.Entries[0].Source != "- b" || readme.Entries[0].Markdown != "- b ⭐ 5" {
		t.Errorf("Expected source and enriched markdown to be kept apart, got %+v", readme.Entries[0])
	}
}

func TestStoreRepository_SaveReplaces(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := &Snapshot{
		CheckedAt: now,
		Files: []FileRecord{
			{SourceID: "old", FilePath: "README.md", UpdatedAt: now, Entries: []EntryRecord{{Identifier: "x", UpdatedAt: now}}},
		},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second := &Snapshot{
		CheckedAt: now.Add(time.Hour),
		Files:     []FileRecord{{SourceID: "new", FilePath: "README.md", UpdatedAt: now}},
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	files, err := repo.ListFiles(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files) != 1 || files[0].SourceID != "new" {
		t.Errorf("Expected only the new source, got %+v", files)
	}
}

func TestStoreRepository_SaveFailureKeepsState(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	good := &Snapshot{
		CheckedAt: now,
		Files:     []FileRecord{{SourceID: "src", FilePath: "README.md", UpdatedAt: now}},
	}
	if err := repo.Save(ctx, good); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Duplicate identifiers violate the primary key.
	bad := &Snapshot{
		CheckedAt: now.Add(time.Hour),
		Files: []FileRecord{
			{
				SourceID:  "other",
				FilePath:  "README.md",
				UpdatedAt: now,
				Entries:   []EntryRecord{{Identifier: "dup", UpdatedAt: now}, {Identifier: "dup", UpdatedAt: now}},
			},
		},
	}
	if err := repo.Save(ctx, bad); err == nil {
		t.Fatal("Expected error for duplicate identifiers")
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !loaded.CheckedAt.Equal(now) {
		t.Errorf("Expected checked_at to be kept at %v, got %v", now, loaded.CheckedAt)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].SourceID != "src" {
		t.Errorf("Expected previous files to be kept, got %+v", loaded.Files)
	}
}
