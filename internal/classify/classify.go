package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kumar-cmd/syngenta-ai/internal/llm"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
)

// Label is the intent category assigned to a user query.
type Label string

const (
	LabelDocument Label = "document"
	LabelSQL      Label = "sql"
	LabelHybrid   Label = "hybrid"
)

// ErrUpstream wraps failures of the underlying model call so the HTTP
// layer can surface them as an upstream-unavailable condition.
var ErrUpstream = errors.New("classifier upstream unavailable")

// ErrUnrecognized marks model output that is not one of the known labels.
var ErrUnrecognized = errors.New("unrecognized classification")

const promptTemplate = `You are a smart classifier. Categorize the following user query into one of these:

- "document" (unstructured text: summarize, extract, QA from documents)
- "sql" (structured data: tables, filters, group by, aggregates)
- "hybrid" (combines document and structured data)

Respond ONLY with: document, sql, or hybrid.

User query: %s
`

// Classifier labels a query's intent with a single constrained model call.
type Classifier struct {
	Provider llm.Provider
}

func New(provider llm.Provider) *Classifier {
	return &Classifier{Provider: provider}
}

// Classify runs one round-trip to the model. The output is trimmed and
// lowercased before matching; anything outside the three labels yields
// ErrUnrecognized.
func (c *Classifier) Classify(ctx context.Context, query string) (Label, error) {
	resp, err := c.Provider.GenerateCompletion(ctx, fmt.Sprintf(promptTemplate, query))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	label := Label(strings.ToLower(strings.TrimSpace(resp)))
	switch label {
	case LabelDocument, LabelSQL, LabelHybrid:
		logger.Debugf("classify: %q -> %s", query, label)
		return label, nil
	}
	logger.Warnf("classify: model returned unexpected label %q for query %q", resp, query)
	return "", fmt.Errorf("%w: %q", ErrUnrecognized, resp)
}
