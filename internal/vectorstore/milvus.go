package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	milvus "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/schema"
)

const (
	milvusIDField       = "id"
	milvusContentField  = "content"
	milvusMetadataField = "metadata"
	milvusVectorField   = "vector"
)

// MilvusProvider issues read-only similarity searches against a Milvus
// collection that an external indexing pipeline maintains.
type MilvusProvider struct {
	client     milvus.Client
	collection string
}

func NewMilvusProvider(cfg *config.VectorDBConfig) (*MilvusProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := milvus.NewClient(ctx, milvus.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus at %s: %w", addr, err)
	}

	has, err := c.HasCollection(ctx, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("check milvus collection %s: %w", cfg.Collection, err)
	}
	if !has {
		return nil, fmt.Errorf("milvus collection %s does not exist", cfg.Collection)
	}
	if err := c.LoadCollection(ctx, cfg.Collection, false); err != nil {
		return nil, fmt.Errorf("load milvus collection %s: %w", cfg.Collection, err)
	}
	logger.Infof("vectorstore: connected to milvus %s, collection %s", addr, cfg.Collection)
	return &MilvusProvider{client: c, collection: cfg.Collection}, nil
}

func (m *MilvusProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 10
	threshold := 0.0
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	searchResults, err := m.client.Search(
		ctx,
		m.collection,
		nil,
		"",
		[]string{milvusIDField, milvusContentField, milvusMetadataField},
		[]entity.Vector{entity.FloatVector(vector)},
		milvusVectorField,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var out []schema.SearchResult
	for _, sr := range searchResults {
		for i := 0; i < sr.ResultCount; i++ {
			score := float64(sr.Scores[i])
			if score < threshold {
				continue
			}
			doc := schema.Document{}
			if col := sr.Fields.GetColumn(milvusIDField); col != nil {
				if v, err := col.Get(i); err == nil {
					doc.ID = fmt.Sprint(v)
				}
			}
			if col := sr.Fields.GetColumn(milvusContentField); col != nil {
				if v, err := col.Get(i); err == nil {
					doc.Content = fmt.Sprint(v)
				}
			}
			if col := sr.Fields.GetColumn(milvusMetadataField); col != nil {
				if v, err := col.Get(i); err == nil {
					doc.Metadata = parseMetadata(fmt.Sprint(v))
				}
			}
			out = append(out, schema.SearchResult{Document: doc, Score: score})
		}
	}
	return out, nil
}

func (m *MilvusProvider) Close() error {
	return m.client.Close()
}

// parseMetadata decodes the JSON metadata column; malformed payloads
// degrade to an empty map rather than failing the query.
func parseMetadata(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var md map[string]string
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		logger.Warnf("vectorstore: malformed metadata payload: %v", err)
		return map[string]string{}
	}
	return md
}
