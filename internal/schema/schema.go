package schema

// Document is a chunk of indexed source text with its metadata.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SearchOptions tunes a similarity search.
type SearchOptions struct {
	TopK      int
	Threshold float64
}
