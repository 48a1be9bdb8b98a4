package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lysyi3m/list-comb/app/feed"
	"github.com/lysyi3m/list-comb/app/fetch"
	"github.com/lysyi3m/list-comb/app/list"
	"github.com/lysyi3m/list-comb/app/publish"
	"github.com/lysyi3m/list-comb/app/source"
	"github.com/lysyi3m/list-comb/app/tracker"
)

// RunOptions selects what a build run does.
type RunOptions struct {
	Sources       []string // Forced sources, rebuilt regardless of timestamps
	Force         bool     // Rebuild every file
	Limit         int      // Cap on the number of files built, 0 for none
	Markdown      bool
	HTML          bool
	CleanMarkdown bool
	CleanHTML     bool
	Push          bool
}

// Summary reports the outcome of a build run.
type Summary struct {
	Synced int
	Built  int
	Failed int
}

// Runner executes one build run: every configured file is synced, then the files
// that changed are rendered. Tasks run one at a time in (source, path) order.
type Runner struct {
	config    *source.Config
	tracker   *tracker.Tracker
	fetcher   fetch.Fetcher
	parser    *list.Parser
	builder   *feed.Builder
	writer    *feed.Writer
	publisher publish.Publisher
	now       func() time.Time
}

func NewRunner(config *source.Config, tr *tracker.Tracker, fetcher fetch.Fetcher, parser *list.Parser,
	builder *feed.Builder, writer *feed.Writer, publisher publish.Publisher, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{
		config:    config,
		tracker:   tr,
		fetcher:   fetcher,
		parser:    parser,
		builder:   builder,
		writer:    writer,
		publisher: publisher,
		now:       now,
	}
}

func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	summary := &Summary{}

	if err := r.tracker.Load(ctx); err != nil {
		return nil, err
	}

	r.tracker.PruneSources(r.config.SourceIDs())

	if opts.Push {
		if err := r.publisher.Prepare(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare publisher: %w", err)
		}
	}

	documents := make(map[tracker.FileKey]*list.Document)
	modified := make(map[tracker.FileKey]bool)

	for _, id := range r.config.SourceIDs() {
		src := r.config.Sources[id]
		if src.Skip {
			slog.Debug("Source skipped", "source", id)
			continue
		}
		for _, filePath := range src.FilePaths() {
			task := NewSyncFileTask(src, filePath, r.fetcher, r.parser, r.tracker)
			if err := r.execute(ctx, task); err != nil {
				summary.Failed++
				continue
			}
			summary.Synced++
			key := tracker.FileKey{SourceID: id, FilePath: filePath}
			documents[key] = task.Document
			if task.Result.Modified() {
				modified[key] = true
			}
		}
	}

	clean := opts.CleanMarkdown || opts.CleanHTML
	if clean {
		if err := r.writer.Clean(opts.CleanMarkdown, opts.CleanHTML); err != nil {
			return nil, err
		}
	}

	if opts.Markdown || opts.HTML {
		now := r.now()
		for _, key := range r.selectFiles(opts, clean, modified) {
			src := r.config.Sources[key.SourceID]
			task := NewBuildFileTask(src, key.FilePath, documents[key], r.tracker, r.builder, r.writer, opts.Markdown, opts.HTML, now)
			if err := r.execute(ctx, task); err != nil {
				summary.Failed++
				continue
			}
			summary.Built++
		}
	}

	r.tracker.MarkChecked(r.now())
	if err := r.tracker.Flush(ctx); err != nil {
		return summary, err
	}

	if opts.Push && summary.Built > 0 {
		message := fmt.Sprintf("Update %d file(s)", summary.Built)
		if err := r.publisher.Publish(ctx, message); err != nil {
			return summary, fmt.Errorf("failed to publish: %w", err)
		}
	}

	slog.Info("Run completed", "synced", summary.Synced, "built", summary.Built, "failed", summary.Failed)

	return summary, nil
}

// selectFiles picks the files to render: files updated since the last check plus
// files modified by this run's sync, which covers entries that were only removed.
// Files whose source or path is no longer configured are left out.
func (r *Runner) selectFiles(opts RunOptions, rebuildAll bool, modified map[tracker.FileKey]bool) []tracker.FileKey {
	since := r.tracker.CheckedAt()
	if opts.Force || rebuildAll {
		since = time.Time{}
	}

	var forced []string
	for _, id := range opts.Sources {
		if _, ok := r.config.Sources[id]; !ok {
			slog.Error("Skipping forced rebuild", "source", id, "error", tracker.ErrUnknownSource)
			continue
		}
		forced = append(forced, id)
	}
	if len(opts.Sources) > 0 && len(forced) == 0 {
		return nil
	}

	candidates := r.tracker.ChangedFilesSince(since, forced, 0)
	if len(forced) == 0 {
		selected := make(map[tracker.FileKey]bool, len(candidates))
		for _, key := range candidates {
			selected[key] = true
		}
		for key := range modified {
			if !selected[key] {
				candidates = append(candidates, key)
			}
		}
		slices.SortFunc(candidates, func(a, b tracker.FileKey) int {
			return cmp.Or(cmp.Compare(a.SourceID, b.SourceID), cmp.Compare(a.FilePath, b.FilePath))
		})
	}

	var keys []tracker.FileKey
	for _, key := range candidates {
		src, ok := r.config.Sources[key.SourceID]
		if !ok {
			continue
		}
		if _, ok := src.Files[key.FilePath]; !ok {
			continue
		}
		keys = append(keys, key)
	}

	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}

	return keys
}

func (r *Runner) execute(ctx context.Context, task TaskInterface) error {
	for {
		task.Start()
		err := task.Execute(ctx)
		if err == nil {
			return nil
		}

		if task.CanRetry() && ctx.Err() == nil {
			task.IncrementRetryCount()
			slog.Warn("Task failed, retrying",
				"type", task.GetType(),
				"source", task.GetSourceID(),
				"file", task.GetFilePath(),
				"retry", task.GetRetryCount(),
				"error", err)
			continue
		}

		slog.Error("Task failed",
			"type", task.GetType(),
			"source", task.GetSourceID(),
			"file", task.GetFilePath(),
			"duration", task.GetDuration(),
			"error", err)
		return err
	}
}
