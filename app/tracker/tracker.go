// Package tracker decides which list entries are new or edited between runs and
// keeps their timestamps stable otherwise.
package tracker

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/list-comb/app/database"
	"github.com/lysyi3m/list-comb/app/list"
	"github.com/pmezard/go-difflib/difflib"
)

// Tracker owns the store for the duration of a run. It is not safe for concurrent use.
type Tracker struct {
	store    Store
	renderer Renderer
	now      func() time.Time

	checkedAt time.Time
	files     map[FileKey]*FileMeta
	created   map[FileKey]bool
}

func NewTracker(store Store, renderer Renderer, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store:    store,
		renderer: renderer,
		now:      now,
		files:    make(map[FileKey]*FileMeta),
		created:  make(map[FileKey]bool),
	}
}

// Load replaces the in-memory state with the persisted snapshot.
func (t *Tracker) Load(ctx context.Context) error {
	snapshot, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	t.checkedAt = snapshot.CheckedAt
	t.files = make(map[FileKey]*FileMeta, len(snapshot.Files))
	t.created = make(map[FileKey]bool)

	for _, record := range snapshot.Files {
		meta := &FileMeta{
			SourceID:  record.SourceID,
			FilePath:  record.FilePath,
			UpdatedAt: record.UpdatedAt,
			Entries:   make([]TrackedEntry, 0, len(record.Entries)),
		}
		for _, e := range record.Entries {
			meta.Entries = append(meta.Entries, TrackedEntry{
				Identifier: e.Identifier,
				Category:   e.Category,
				Markdown:   e.Markdown,
				Source:     cmp.Or(e.Source, e.Markdown),
				HTML:       e.HTML,
				UpdatedAt:  e.UpdatedAt,
			})
		}
		t.files[meta.Key()] = meta
	}

	slog.Debug("Store loaded", "files", len(t.files), "checked_at", t.checkedAt)

	return nil
}

// PruneSources drops every file of a source that is no longer configured and
// returns the dropped source ids.
func (t *Tracker) PruneSources(configured []string) []string {
	keep := make(map[string]bool, len(configured))
	for _, id := range configured {
		keep[id] = true
	}

	pruned := make(map[string]bool)
	for key := range t.files {
		if !keep[key.SourceID] {
			delete(t.files, key)
			pruned[key.SourceID] = true
		}
	}

	ids := make([]string, 0, len(pruned))
	for id := range pruned {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) > 0 {
		slog.Info("Pruned unconfigured sources", "sources", ids)
	}

	return ids
}

// ChangedFilesSince lists the files to rebuild in (source, path) order. With explicit
// source ids it returns every tracked file of those sources regardless of timestamps;
// unknown ids are logged and skipped. Otherwise it returns the files updated after
// since, plus files first tracked during this run. A positive limit caps the result.
func (t *Tracker) ChangedFilesSince(since time.Time, explicit []string, limit int) []FileKey {
	var keys []FileKey

	if len(explicit) > 0 {
		for _, id := range explicit {
			files := t.sourceFiles(id)
			if len(files) == 0 {
				slog.Error("Skipping forced rebuild", "source", id, "error", ErrUnknownSource)
				continue
			}
			keys = append(keys, files...)
		}
	} else {
		for key, meta := range t.files {
			if meta.UpdatedAt.After(since) || t.created[key] {
				keys = append(keys, key)
			}
		}
		sortKeys(keys)
	}

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	return keys
}

func (t *Tracker) sourceFiles(sourceID string) []FileKey {
	var keys []FileKey
	for key := range t.files {
		if key.SourceID == sourceID {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

// Reconcile merges freshly parsed entries into the tracked state of a file. New
// entries and entries whose list text changed are stamped with the current time;
// unchanged entries keep their timestamp but take the fresh enriched body; missing
// entries are dropped. A render failure leaves the file's tracked state untouched.
func (t *Tracker) Reconcile(sourceID, filePath string, fresh []list.Entry) (Result, error) {
	key := FileKey{SourceID: sourceID, FilePath: filePath}
	now := t.now().UTC()

	prior := make(map[string]TrackedEntry)
	if meta, ok := t.files[key]; ok {
		for _, e := range meta.Entries {
			prior[e.Identifier] = e
		}
	}

	var result Result
	next := &FileMeta{
		SourceID: sourceID,
		FilePath: filePath,
		Entries:  make([]TrackedEntry, 0, len(fresh)),
	}

	seen := make(map[string]bool, len(fresh))

	for _, entry := range fresh {
		html, err := t.renderer.Run(entry.Markdown)
		if err != nil {
			return Result{}, fmt.Errorf("failed to render entry %s: %w", entry.Identifier, err)
		}

		tracked := TrackedEntry{
			Identifier: entry.Identifier,
			Category:   entry.Category,
			Markdown:   entry.Markdown,
			Source:     cmp.Or(entry.Source, entry.Markdown),
			HTML:       html,
			UpdatedAt:  now,
		}

		previous, ok := prior[entry.Identifier]
		switch {
		case !ok:
			result.Added++
		case previous.Source == tracked.Source:
			tracked.UpdatedAt = previous.UpdatedAt
			result.Unchanged++
		default:
			result.Changed++
			slog.Debug("Entry changed",
				"source", sourceID,
				"file", filePath,
				"identifier", entry.Identifier,
				"diff", entryDiff(previous.Source, tracked.Source))
		}

		seen[entry.Identifier] = true
		next.Entries = append(next.Entries, tracked)

		if tracked.UpdatedAt.After(next.UpdatedAt) {
			next.UpdatedAt = tracked.UpdatedAt
		}
	}

	for id := range prior {
		if !seen[id] {
			result.Removed++
		}
	}

	if _, ok := t.files[key]; !ok {
		t.created[key] = true
	}
	t.files[key] = next

	return result, nil
}

// File returns the tracked state of a file.
func (t *Tracker) File(sourceID, filePath string) (*FileMeta, bool) {
	meta, ok := t.files[FileKey{SourceID: sourceID, FilePath: filePath}]
	return meta, ok
}

// Entries returns the tracked entries of a file in document order.
func (t *Tracker) Entries(sourceID, filePath string) []TrackedEntry {
	if meta, ok := t.File(sourceID, filePath); ok {
		return meta.Entries
	}
	return nil
}

func (t *Tracker) CheckedAt() time.Time {
	return t.checkedAt
}

func (t *Tracker) MarkChecked(at time.Time) {
	t.checkedAt = at.UTC()
}

// Flush persists the full in-memory state in one write.
func (t *Tracker) Flush(ctx context.Context) error {
	snapshot := &database.Snapshot{
		CheckedAt: t.checkedAt,
		Files:     make([]database.FileRecord, 0, len(t.files)),
	}

	keys := make([]FileKey, 0, len(t.files))
	for key := range t.files {
		keys = append(keys, key)
	}
	sortKeys(keys)

	for _, key := range keys {
		meta := t.files[key]
		record := database.FileRecord{
			SourceID:  meta.SourceID,
			FilePath:  meta.FilePath,
			UpdatedAt: meta.UpdatedAt,
			Entries:   make([]database.EntryRecord, 0, len(meta.Entries)),
		}
		for _, e := range meta.Entries {
			record.Entries = append(record.Entries, database.EntryRecord{
				Identifier: e.Identifier,
				Category:   e.Category,
				Markdown:   e.Markdown,
				Source:     e.Source,
				HTML:       e.HTML,
				UpdatedAt:  e.UpdatedAt,
				DayBucket:  e.DayBucket(),
			})
		}
		snapshot.Files = append(snapshot.Files, record)
	}

	if err := t.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to flush store: %w", err)
	}

	slog.Debug("Store flushed", "files", len(snapshot.Files), "checked_at", t.checkedAt)

	return nil
}

func sortKeys(keys []FileKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SourceID != keys[j].SourceID {
			return keys[i].SourceID < keys[j].SourceID
		}
		return keys[i].FilePath < keys[j].FilePath
	})
}

func entryDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return diff
}
