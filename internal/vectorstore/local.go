package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/schema"
)

// indexFileName is the persisted representation inside the index directory.
const indexFileName = "index.json"

type indexEntry struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"vector"`
}

// LocalIndex is an in-process read-only index loaded from a persisted
// directory. All entries are held in memory for the process lifetime;
// there is no mutation path, so reads need no locking.
type LocalIndex struct {
	dir     string
	entries []indexEntry
}

// OpenLocalIndex loads the persisted index from dir.
func OpenLocalIndex(dir string) (*LocalIndex, error) {
	path := filepath.Join(dir, indexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load vector index %s: %w", path, err)
	}
	var entries []indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse vector index %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("vector index %s holds no entries", path)
	}
	dim := len(entries[0].Vector)
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("vector index %s: entry %d has dimension %d, want %d", path, i, len(e.Vector), dim)
		}
	}
	logger.Infof("vectorstore: loaded local index from %s (%d chunks, dim=%d)", dir, len(entries), dim)
	return &LocalIndex{dir: dir, entries: entries}, nil
}

func (l *LocalIndex) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topK := 10
	threshold := 0.0
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	results := make([]schema.SearchResult, 0, len(l.entries))
	for _, e := range l.entries {
		score := cosine(vector, e.Vector)
		if score < threshold {
			continue
		}
		results = append(results, schema.SearchResult{
			Document: schema.Document{ID: e.ID, Content: e.Content, Metadata: e.Metadata},
			Score:    score,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (l *LocalIndex) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
