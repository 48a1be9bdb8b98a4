package markdown

import (
	"strings"
	"testing"
)

func TestRendererRun(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.Run("- [Foo](https://foo.dev) bar")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(html, `<a href="https://foo.dev">Foo</a>`) {
		t.Errorf("Expected rendered link, got: %s", html)
	}
	if !strings.HasPrefix(html, "<ul>") {
		t.Errorf("Expected list markup, got: %s", html)
	}
	if strings.HasSuffix(html, "\n") {
		t.Error("Expected rendered HTML to be trimmed")
	}
}

func TestRendererAutolinks(t *testing.T) {
	html, err := NewRenderer().Run("- see https://example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(html, `href="https://example.com"`) {
		t.Errorf("Expected bare URL to be linked, got: %s", html)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	source := []byte("---\ntitle: Awesome Tools\ndescription: A list\n---\n## Tools\n- [Foo](https://foo.dev)\n")

	meta, body, offset := SplitFrontMatter(source)

	if meta.Title != "Awesome Tools" {
		t.Errorf("Expected title 'Awesome Tools', got '%s'", meta.Title)
	}
	if meta.Description != "A list" {
		t.Errorf("Expected description 'A list', got '%s'", meta.Description)
	}
	if !strings.HasPrefix(string(body), "## Tools") {
		t.Errorf("Expected body to start at the first heading, got: %q", body)
	}
	if offset != 4 {
		t.Errorf("Expected line offset 4, got %d", offset)
	}
}

func TestSplitFrontMatterWithoutMetadata(t *testing.T) {
	source := []byte("## Tools\n- [Foo](https://foo.dev)\n")

	meta, body, offset := SplitFrontMatter(source)

	if meta.Title != "" {
		t.Errorf("Expected empty title, got '%s'", meta.Title)
	}
	if string(body) != string(source) {
		t.Errorf("Expected body to be unchanged, got: %q", body)
	}
	if offset != 0 {
		t.Errorf("Expected line offset 0, got %d", offset)
	}
}
