package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

const checkedAtKey = "checked_at"

// StoreRepository persists tracker snapshots
type StoreRepository struct {
	db *DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Load reads the whole store. An empty database yields an empty snapshot.
func (r *StoreRepository) Load(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{}

	checkedAt, err := r.loadCheckedAt(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.CheckedAt = checkedAt

	files, err := r.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[[2]string]int, len(files))
	for i, f := range files {
		index[[2]string{f.SourceID, f.FilePath}] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id, file_path, identifier, category, markdown, source_markdown, html, updated_at, day_bucket
		FROM entries
		ORDER BY source_id, file_path, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID, filePath string
		var entry EntryRecord
		var updatedAt int64

		if err := rows.Scan(&sourceID, &filePath, &entry.Identifier, &entry.Category, &entry.Markdown, &entry.Source, &entry.HTML, &updatedAt, &entry.DayBucket); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry.UpdatedAt = fromUnixNano(updatedAt)

		i, ok := index[[2]string{sourceID, filePath}]
		if !ok {
			continue
		}
		files[i].Entries = append(files[i].Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	snapshot.Files = files
	return snapshot, nil
}

// ListFiles returns the store index ordered by source and path, without entries.
func (r *StoreRepository) ListFiles(ctx context.Context) ([]FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id, file_path, updated_at
		FROM files
		ORDER BY source_id, file_path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var updatedAt int64
		if err := rows.Scan(&f.SourceID, &f.FilePath, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.UpdatedAt = fromUnixNano(updatedAt)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}

	return files, nil
}

// Save replaces the stored state with snapshot in a single transaction. On failure
// the previous state is left intact.
func (r *StoreRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}

	for _, f := range snapshot.Files {
		if err := insertFile(ctx, tx, f); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, checkedAtKey, strconv.FormatInt(toUnixNano(snapshot.CheckedAt), 10))
	if err != nil {
		return fmt.Errorf("failed to store checked_at: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit store: %w", err)
	}

	return nil
}

func insertFile(ctx context.Context, tx *sql.Tx, f FileRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO files (source_id, file_path, updated_at) VALUES (?, ?, ?)
	`, f.SourceID, f.FilePath, toUnixNano(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert file %s/%s: %w", f.SourceID, f.FilePath, err)
	}

	for i, e := range f.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (
				source_id, file_path, identifier, position, category,
				markdown, source_markdown, html, updated_at, day_bucket
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.SourceID, f.FilePath, e.Identifier, i, e.Category, e.Markdown, e.Source, e.HTML, toUnixNano(e.UpdatedAt), e.DayBucket)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s in %s/%s: %w", e.Identifier, f.SourceID, f.FilePath, err)
		}
	}

	return nil
}

func (r *StoreRepository) loadCheckedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, checkedAtKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query checked_at: %w", err)
	}

	nanos, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse checked_at: %w", err)
	}

	return fromUnixNano(nanos), nil
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
