package vectorstore

import (
	"context"
	"fmt"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/schema"
)

// Provider is a read-only similarity search backend over a prebuilt index.
// The index is constructed and maintained externally; this system only
// opens it at startup and issues queries.
type Provider interface {
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	Close() error
}

// NewProvider opens the configured vector index. Errors here are fatal to
// the caller: the process must not serve queries with a missing index.
func NewProvider(cfg *config.VectorDBConfig) (Provider, error) {
	switch cfg.Provider {
	case "local":
		return OpenLocalIndex(cfg.Dir)
	case "milvus":
		return NewMilvusProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
