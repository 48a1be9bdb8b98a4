package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/list-comb/app/feed"
	"github.com/lysyi3m/list-comb/app/list"
	"github.com/lysyi3m/list-comb/app/source"
	"github.com/lysyi3m/list-comb/app/tracker"
)

// BuildFileTask renders and writes the artifacts of a tracked file.
type BuildFileTask struct {
	Task
	Source   *source.Source
	document *list.Document
	tracker  *tracker.Tracker
	builder  *feed.Builder
	writer   *feed.Writer
	markdown bool
	html     bool
	now      time.Time
}

func NewBuildFileTask(src *source.Source, filePath string, doc *list.Document, tr *tracker.Tracker, builder *feed.Builder, writer *feed.Writer, markdown, html bool, now time.Time) *BuildFileTask {
	return &BuildFileTask{
		Task:     NewTask(TaskTypeBuildFile, src.ID, filePath, 0),
		Source:   src,
		document: doc,
		tracker:  tr,
		builder:  builder,
		writer:   writer,
		markdown: markdown,
		html:     html,
		now:      now,
	}
}

func (t *BuildFileTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries := t.tracker.Entries(t.SourceID, t.FilePath)
	page := PageFor(t.Source, t.FilePath, t.document)

	artifacts, err := t.builder.Run(page, entries, t.now)
	if err != nil {
		return fmt.Errorf("failed to build artifacts: %w", err)
	}

	if err := t.writer.Run(page.Folder, artifacts, t.markdown, t.html); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}

	slog.Info("Task completed",
		"type", "BuildFile",
		"source", t.SourceID,
		"file", t.FilePath,
		"duration", t.GetDuration(),
		"entries", len(entries),
		"folder", page.Folder)

	return nil
}

// PageFor describes a tracked file for rendering. doc may be nil when the file was
// not parsed during this run.
func PageFor(src *source.Source, filePath string, doc *list.Document) feed.Page {
	page := feed.Page{
		SourceID:  src.ID,
		FilePath:  filePath,
		Folder:    src.OutputFolder(filePath),
		Name:      src.Name,
		SourceURL: src.URL,
	}

	var docDescription string
	if doc != nil {
		docDescription = doc.Description
	}

	file, ok := src.Files[filePath]
	if ok {
		page.Name = file.Name
	}
	page.Description = cmp.Or(src.Description, docDescription)

	if ok && file.Index && len(src.Files) > 1 {
		for _, other := range src.FilePaths() {
			if other == filePath {
				continue
			}
			rel := strings.TrimPrefix(src.OutputFolder(other), src.OutputFolder(filePath)+"/")
			page.Related = append(page.Related, feed.Nav{
				Name:        src.Files[other].Name,
				MarkdownURL: rel + "/" + feed.MarkdownFile,
				HTMLURL:     rel + "/",
			})
		}
	}

	return page
}
