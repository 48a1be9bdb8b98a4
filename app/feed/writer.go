package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	MarkdownFile = "README.md"
	HTMLFile     = "index.html"
	JSONFeedFile = "feed.json"
	RSSFile      = "rss.xml"
)

// Writer stores artifacts below the content (markdown) and public (HTML, feeds) roots.
type Writer struct {
	contentDir string
	publicDir  string
}

func NewWriter(contentDir, publicDir string) *Writer {
	return &Writer{contentDir: contentDir, publicDir: publicDir}
}

// Run writes the selected artifacts of the file whose output folder is folder.
func (w *Writer) Run(folder string, artifacts *Artifacts, markdown, html bool) error {
	if markdown {
		path := filepath.Join(w.contentDir, filepath.FromSlash(folder), MarkdownFile)
		if err := writeFileAtomic(path, []byte(artifacts.Markdown)); err != nil {
			return err
		}
		slog.Debug("Artifact written", "path", path)
	}

	if html {
		dir := filepath.Join(w.publicDir, filepath.FromSlash(folder))
		files := map[string][]byte{
			HTMLFile:     []byte(artifacts.HTML),
			JSONFeedFile: artifacts.JSONFeed,
			RSSFile:      []byte(artifacts.RSS),
		}
		for name, data := range files {
			path := filepath.Join(dir, name)
			if err := writeFileAtomic(path, data); err != nil {
				return err
			}
			slog.Debug("Artifact written", "path", path)
		}
	}

	return nil
}

// Clean removes previously built artifacts. The directories themselves and any .git
// checkout inside them are kept.
func (w *Writer) Clean(markdown, html bool) error {
	if markdown {
		if err := cleanDir(w.contentDir); err != nil {
			return err
		}
	}
	if html {
		if err := cleanDir(w.publicDir); err != nil {
			return err
		}
	}
	return nil
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to clean %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dir, err)
		}
	}
	return nil
}

func (w *Writer) PublicDir() string {
	return w.publicDir
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}

	return nil
}
