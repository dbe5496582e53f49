package domain

import "context"

// Document represents a single source file loaded into the system.
// Content has already been passed through secret redaction.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded slice of a document used for embedding and retrieval.
// Source carries the originating file path so answers can cite it.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Source     string
	Text       string
	Index      int
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the append-only session log. Turns are never
// mutated after creation; the session owns the log and passes it in
// explicitly on each request.
type Turn struct {
	Role    Role
	Content string
}

// Message is a role-tagged entry of a structured prompt, produced by the
// history adapter from prior turns.
type Message struct {
	Role    Role
	Content string
}

// Prompt is the fully composed input for one generation call. System holds
// the mode-specific instructions with the retrieved context substituted in;
// Messages holds prior dialogue followed by the new question as the final
// user message.
type Prompt struct {
	System   string
	Messages []Message
}

// Answer is the post-processed result of one query.
type Answer struct {
	Text     string
	Sources  []string
	Diagrams []string
}

// Embedder converts text into fixed-dimension vectors. Document and query
// embeddings are separate because some backends optimize for asymmetric
// retrieval.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists (vector, chunk) pairs and answers top-k
// nearest-neighbor queries. Ingestion calls Clear then Upsert so a re-run
// replaces the index wholesale.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// Generator produces a natural-language answer from a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
