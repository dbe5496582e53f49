// Package gemini embeds text with Google's Gemini embedding API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-embedding-001"

// Embedder generates embeddings through the GenAI API. Documents are
// embedded with the RETRIEVAL_DOCUMENT task type and queries with
// RETRIEVAL_QUERY, which the model family optimizes for asymmetric search.
type Embedder struct {
	client *genai.Client
	model  string
}

// Config configures the Gemini embedder.
type Config struct {
	APIKey string
	Model  string
}

// NewEmbedder creates a Gemini embedding client.
func NewEmbedder(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Embedder{client: client, model: cfg.Model}, nil
}

// EmbedDocuments embeds a batch of chunk texts for indexing.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

// EmbedQuery embeds a single user question.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{TaskType: task},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Name identifies the embedder backend.
func (e *Embedder) Name() string {
	return fmt.Sprintf("gemini:%s", e.model)
}
