package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/list-comb/app/feed"
	"github.com/lysyi3m/list-comb/app/source"
)

func NewHandler(files FileLister, config *source.Config, publicDir, version string) *Handler {
	return &Handler{
		files:     files,
		config:    config,
		reader:    feed.NewReader(),
		publicDir: publicDir,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"sources":   len(h.config.Sources),
	}

	if files, err := h.files.ListFiles(c.Request.Context()); err == nil {
		health["tracked_files"] = len(files)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	var feeds []FeedStats

	err := filepath.WalkDir(h.publicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != feed.JSONFeedFile {
			return nil
		}

		parsed, err := h.reader.Run(path)
		if err != nil {
			slog.Warn("Failed to read feed", "path", path, "error", err)
			return nil
		}

		folder, _ := filepath.Rel(h.publicDir, filepath.Dir(path))
		stats := FeedStats{
			Folder: filepath.ToSlash(folder),
			Title:  parsed.Title,
			Items:  len(parsed.Items),
		}

		var latest time.Time
		for _, item := range parsed.Items {
			if item.UpdatedParsed != nil && item.UpdatedParsed.After(latest) {
				latest = *item.UpdatedParsed
			}
		}
		if !latest.IsZero() {
			stats.LastModified = latest.UTC().Format(time.RFC3339)
		}

		feeds = append(feeds, stats)
		return nil
	})
	if err != nil && !errorsIsNotExist(err) {
		slog.Error("Failed to collect feed stats", "dir", h.publicDir, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect feed stats"})
		return
	}

	if feeds == nil {
		feeds = []FeedStats{}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	records, err := h.files.ListFiles(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_files", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	updated := make(map[[2]string]time.Time, len(records))
	for _, r := range records {
		updated[[2]string{r.SourceID, r.FilePath}] = r.UpdatedAt
	}

	sources := make([]SourceInfo, 0, len(h.config.Sources))
	for _, id := range h.config.SourceIDs() {
		src := h.config.Sources[id]
		info := SourceInfo{
			ID:    id,
			Name:  src.Name,
			URL:   src.URL,
			Skip:  src.Skip,
			Files: make([]FileInfo, 0, len(src.Files)),
		}
		for _, p := range src.FilePaths() {
			file := FileInfo{
				Path:   p,
				Name:   src.Files[p].Name,
				Folder: src.OutputFolder(p),
			}
			if at, ok := updated[[2]string{id, p}]; ok && !at.IsZero() {
				file.UpdatedAt = at.Format(time.RFC3339)
			}
			info.Files = append(info.Files, file)
		}
		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}
