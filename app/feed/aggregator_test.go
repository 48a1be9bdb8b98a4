package feed

import (
	"testing"
	"time"

	"github.com/lysyi3m/list-comb/app/tracker"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestAggregator_Run(t *testing.T) {
	aggregator := NewAggregator()

	entries := []tracker.TrackedEntry{
		{Identifier: "e1", Category: "Tools", Markdown: "- e1", HTML: "<li>e1</li>", UpdatedAt: at(1, 10)},
		{Identifier: "e2", Category: "Libs", Markdown: "- e2", HTML: "<li>e2</li>", UpdatedAt: at(2, 9)},
		{Identifier: "e3", Category: "Tools", Markdown: "- e3", HTML: "<li>e3</li>", UpdatedAt: at(2, 8)},
		{Identifier: "e4", Category: "Tools", Markdown: "- e4", HTML: "<li>e4</li>", UpdatedAt: at(2, 12)},
	}

	buckets := aggregator.Run(entries, at(3, 0))

	if len(buckets) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(buckets))
	}

	latest := buckets[0]
	if latest.Key != "20240302" {
		t.Errorf("Expected newest bucket first, got %s", latest.Key)
	}
	if latest.Name != "Mar 02, 2024" {
		t.Errorf("Expected name 'Mar 02, 2024', got '%s'", latest.Name)
	}
	if latest.Path != "2024/03/02/" {
		t.Errorf("Expected path '2024/03/02/', got '%s'", latest.Path)
	}
	if len(latest.Groups) != 2 || latest.Groups[0].Category != "Libs" || latest.Groups[1].Category != "Tools" {
		t.Fatalf("Expected groups [Libs Tools], got %+v", latest.Groups)
	}
	if latest.Groups[1].Entries[0].Identifier != "e3" || latest.Groups[1].Entries[1].Identifier != "e4" {
		t.Errorf("Expected entries to keep their order, got %+v", latest.Groups[1].Entries)
	}
	if !latest.DatePublished.Equal(at(2, 8)) {
		t.Errorf("Expected date published %v, got %v", at(2, 8), latest.DatePublished)
	}
	if !latest.DateModified.Equal(at(2, 12)) {
		t.Errorf("Expected date modified %v, got %v", at(2, 12), latest.DateModified)
	}
	if latest.Summary() != "3 project(s) updated on Mar 02, 2024" {
		t.Errorf("Unexpected summary '%s'", latest.Summary())
	}

	if buckets[1].Summary() != "1 project(s) updated on Mar 01, 2024" {
		t.Errorf("Unexpected summary '%s'", buckets[1].Summary())
	}
}

func TestAggregator_Run_UTCDays(t *testing.T) {
	aggregator := NewAggregator()
	loc := time.FixedZone("UTC-5", -5*60*60)

	entries := []tracker.TrackedEntry{
		{Identifier: "late", UpdatedAt: time.Date(2024, 3, 1, 21, 0, 0, 0, loc)},
		{Identifier: "early", UpdatedAt: time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)},
	}

	buckets := aggregator.Run(entries, at(5, 0))

	if len(buckets) != 1 || buckets[0].Key != "20240302" {
		t.Fatalf("Expected a single UTC bucket 20240302, got %+v", buckets)
	}
	if buckets[0].Count() != 2 {
		t.Errorf("Expected 2 entries, got %d", buckets[0].Count())
	}
}

func TestAggregator_Run_Empty(t *testing.T) {
	if buckets := NewAggregator().Run(nil, at(1, 0)); len(buckets) != 0 {
		t.Errorf("Expected no buckets, got %d", len(buckets))
	}
}

func TestBucket_Bodies(t *testing.T) {
	bucket := NewAggregator().Run([]tracker.TrackedEntry{
		{Identifier: "a", Category: "", Markdown: "- a", HTML: "<ul><li>a</li></ul>", UpdatedAt: at(1, 1)},
		{Identifier: "b", Category: "Tools & More", Markdown: "- b", HTML: "<ul><li>b</li></ul>", UpdatedAt: at(1, 2)},
	}, at(2, 0))[0]

	expected := "\n\n- a\n\n### Tools & More\n\n- b"
	if got := bucket.MarkdownBody(); got != expected {
		t.Errorf("Expected markdown %q, got %q", expected, got)
	}

	htmlBody := bucket.HTMLBody()
	if !containsAll(htmlBody, "<ul><li>a</li></ul>", "Tools &amp; More</h3>", "<h3 id=\"20240301-") {
		t.Errorf("Unexpected HTML body %q", htmlBody)
	}
	if bucket.Anchor() == "" {
		t.Error("Expected bucket anchor")
	}
}
