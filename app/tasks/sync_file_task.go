package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/list-comb/app/fetch"
	"github.com/lysyi3m/list-comb/app/list"
	"github.com/lysyi3m/list-comb/app/source"
	"github.com/lysyi3m/list-comb/app/tracker"
)

// SyncFileTask fetches a tracked file, parses it and reconciles its entries.
type SyncFileTask struct {
	Task
	Source   *source.Source
	Document *list.Document // Set after a successful Execute
	Result   tracker.Result // Set after a successful Execute
	fetcher  fetch.Fetcher
	parser   *list.Parser
	tracker  *tracker.Tracker
}

func NewSyncFileTask(src *source.Source, filePath string, fetcher fetch.Fetcher, parser *list.Parser, tr *tracker.Tracker) *SyncFileTask {
	return &SyncFileTask{
		Task:    NewTask(TaskTypeSyncFile, src.ID, filePath, DefaultMaxRetries),
		Source:  src,
		fetcher: fetcher,
		parser:  parser,
		tracker: tr,
	}
}

func (t *SyncFileTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := t.fetcher.Fetch(ctx, t.Source, t.FilePath)
	if err != nil {
		return fmt.Errorf("failed to fetch file: %w", err)
	}

	doc := t.parser.Run(ctx, content, list.OptionsFor(t.Source, t.FilePath))

	result, err := t.tracker.Reconcile(t.SourceID, t.FilePath, doc.Entries)
	if err != nil {
		return fmt.Errorf("failed to reconcile entries: %w", err)
	}

	t.Document = doc
	t.Result = result

	slog.Info("Task completed",
		"type", "SyncFile",
		"source", t.SourceID,
		"file", t.FilePath,
		"duration", t.GetDuration(),
		"total", len(doc.Entries),
		"added", result.Added,
		"changed", result.Changed,
		"unchanged", result.Unchanged,
		"removed", result.Removed)

	return nil
}
