package vectorstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kumar-cmd/syngenta-ai/internal/schema"
)

func writeIndex(t *testing.T, entries []indexEntry) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFileName), data, 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return dir
}

func TestLocalIndexSearchRanking(t *testing.T) {
	dir := writeIndex(t, []indexEntry{
		{ID: "a", Content: "alpha", Vector: []float32{1, 0, 0}},
		{ID: "b", Content: "beta", Vector: []float32{0, 1, 0}},
		{ID: "c", Content: "gamma", Vector: []float32{0.9, 0.1, 0}},
	})

	idx, err := OpenLocalIndex(dir)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}

	results, err := idx.SearchDocs(context.Background(), []float32{1, 0, 0}, &schema.SearchOptions{TopK: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "a" || results[1].Document.ID != "c" {
		t.Errorf("unexpected ranking: %s, %s", results[0].Document.ID, results[1].Document.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %f < %f", results[0].Score, results[1].Score)
	}
}

func TestLocalIndexThreshold(t *testing.T) {
	dir := writeIndex(t, []indexEntry{
		{ID: "a", Content: "alpha", Vector: []float32{1, 0, 0}},
		{ID: "b", Content: "beta", Vector: []float32{0, 1, 0}},
	})

	idx, err := OpenLocalIndex(dir)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}

	results, err := idx.SearchDocs(context.Background(), []float32{1, 0, 0}, &schema.SearchOptions{TopK: 10, Threshold: 0.5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != "a" {
		t.Errorf("threshold did not filter orthogonal entry: %+v", results)
	}
}

func TestOpenLocalIndexMissingDirFails(t *testing.T) {
	if _, err := OpenLocalIndex(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing index directory")
	}
}

func TestOpenLocalIndexEmptyFails(t *testing.T) {
	dir := writeIndex(t, []indexEntry{})
	if _, err := OpenLocalIndex(dir); err == nil {
		t.Fatal("expected error for empty index")
	}
}

func TestOpenLocalIndexDimensionMismatchFails(t *testing.T) {
	dir := writeIndex(t, []indexEntry{
		{ID: "a", Content: "alpha", Vector: []float32{1, 0}},
		{ID: "b", Content: "beta", Vector: []float32{0, 1, 0}},
	})
	if _, err := OpenLocalIndex(dir); err == nil {
		t.Fatal("expected error for inconsistent dimensions")
	}
}

func TestLocalIndexMetadataCarried(t *testing.T) {
	dir := writeIndex(t, []indexEntry{
		{ID: "a", Content: "alpha", Metadata: map[string]string{"file": "report.pdf", "page": "3"}, Vector: []float32{1, 0, 0}},
	})
	idx, err := OpenLocalIndex(dir)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	results, err := idx.SearchDocs(context.Background(), []float32{1, 0, 0}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Document.Metadata["page"] != "3" {
		t.Errorf("metadata lost: %+v", results[0].Document.Metadata)
	}
}
