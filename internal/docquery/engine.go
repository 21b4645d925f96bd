package docquery

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kumar-cmd/syngenta-ai/internal/cache"
	"github.com/kumar-cmd/syngenta-ai/internal/embedding"
	"github.com/kumar-cmd/syngenta-ai/internal/llm"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/metrics"
	"github.com/kumar-cmd/syngenta-ai/internal/schema"
	"github.com/kumar-cmd/syngenta-ai/internal/vectorstore"
)

// Source is one retrieved chunk that contributed to an answer.
type Source struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Result is a synthesized answer plus the chunks it was grounded on.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Options tunes retrieval and context assembly.
type Options struct {
	TopK          int
	Threshold     float64
	ContextBudget int // max context tokens fed to the model
	CacheTTL      time.Duration
}

const answerPromptTemplate = `Answer the question using only the context below. If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`

// Engine answers free-text questions over a prebuilt read-only vector
// index. All collaborators are injected; the engine owns no lifecycle
// beyond its optional answer cache.
type Engine struct {
	embedder embedding.Provider
	store    vectorstore.Provider
	llm      llm.Provider
	opts     Options
	cache    cache.Cache[*Result]
	encoder  *tiktoken.Tiktoken
}

// NewEngine wires an engine. answerCache may be nil to disable caching.
func NewEngine(embedder embedding.Provider, store vectorstore.Provider, llmProvider llm.Provider, opts Options, answerCache cache.Cache[*Result]) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = 3000
	}
	// The encoder asset is fetched lazily by tiktoken; without it token
	// counts degrade to a character-based estimate.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warnf("docquery: token encoder unavailable, using estimate: %v", err)
		enc = nil
	}
	return &Engine{
		embedder: embedder,
		store:    store,
		llm:      llmProvider,
		opts:     opts,
		cache:    answerCache,
		encoder:  enc,
	}
}

func (e *Engine) countTokens(text string) int {
	if e.encoder != nil {
		return len(e.encoder.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// Query retrieves the top-ranked chunks for q, synthesizes an answer over
// them and returns the answer with its cited sources.
func (e *Engine) Query(ctx context.Context, q string) (*Result, error) {
	key := cacheKey(q)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
	}

	retrieveStart := time.Now()
	vec, err := e.embedder.GetEmbedding(ctx, q)
	if err != nil {
		metrics.IncUpstreamError("embedding")
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := e.store.SearchDocs(ctx, vec, &schema.SearchOptions{
		TopK:      e.opts.TopK,
		Threshold: e.opts.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	metrics.ObserveQueryStage("retrieve", retrieveStart)

	used := e.fitBudget(results)
	contextText := buildContext(used)
	logger.Debugf("docquery: using %d/%d chunks for query %q", len(used), len(results), q)

	answer, err := e.llm.GenerateCompletion(ctx, fmt.Sprintf(answerPromptTemplate, contextText, q))
	if err != nil {
		metrics.IncUpstreamError("llm")
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	res := &Result{Answer: strings.TrimSpace(answer), Sources: make([]Source, 0, len(used))}
	for _, r := range used {
		md := r.Document.Metadata
		if md == nil {
			md = map[string]string{}
		}
		res.Sources = append(res.Sources, Source{Text: r.Document.Content, Metadata: md})
	}

	if e.cache != nil {
		e.cache.Set(key, res, e.opts.CacheTTL)
	}
	return res, nil
}

// fitBudget keeps top-ranked chunks until the token budget is spent.
// At least one chunk is always kept so the model sees some context.
func (e *Engine) fitBudget(results []schema.SearchResult) []schema.SearchResult {
	used := make([]schema.SearchResult, 0, len(results))
	budget := e.opts.ContextBudget
	for _, r := range results {
		cost := e.countTokens(r.Document.Content)
		if cost > budget && len(used) > 0 {
			break
		}
		used = append(used, r)
		budget -= cost
		if budget <= 0 {
			break
		}
	}
	return used
}

func buildContext(results []schema.SearchResult) string {
	if len(results) == 0 {
		return "(no relevant documents found)"
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, r.Document.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cacheKey(q string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(strings.ToLower(q))))
	return hex.EncodeToString(sum[:])
}
