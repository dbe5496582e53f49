// Package service orchestrates the ingestion pipeline and the query-time
// retrieval-and-generation chain.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"infraguard/internal/diagram"
	"infraguard/internal/domain"
	"infraguard/internal/loader"
	"infraguard/internal/prompt"
	"infraguard/internal/splitter"
)

var (
	// ErrNoDocuments is the hard-failure terminal state of an ingestion
	// run that found nothing to index.
	ErrNoDocuments = errors.New("no documents found in source directory")

	// ErrEmptyIndex means a query arrived before any ingestion run.
	ErrEmptyIndex = errors.New("vector index is empty; run ingest first")
)

const defaultEmbedBatchSize = 32

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Documents int
	Chunks    int
}

// RAGService wires loader, splitter, embedder, vector store and generator
// into the two operations the entry points call: Ingest and Answer. It
// holds no per-request mutable state; session history is passed in by the
// caller on every request.
type RAGService struct {
	loader    *loader.Loader
	splitter  *splitter.Splitter
	embedder  domain.Embedder
	store     domain.VectorStore
	generator domain.Generator
	batchSize int
	logger    *zap.Logger
}

// New creates the service. generator may be nil for ingest-only use.
func New(ld *loader.Loader, sp *splitter.Splitter, embedder domain.Embedder, store domain.VectorStore, generator domain.Generator, logger *zap.Logger) *RAGService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGService{
		loader:    ld,
		splitter:  sp,
		embedder:  embedder,
		store:     store,
		generator: generator,
		batchSize: defaultEmbedBatchSize,
		logger:    logger,
	}
}

// Ingest loads every matching file under dir, splits the documents into
// chunks, embeds them in batches and replaces the index contents
// wholesale. Re-running against an unchanged directory is deterministic.
// This is an offline maintenance operation; it must not run concurrently
// with live queries against the same index.
func (s *RAGService) Ingest(ctx context.Context, dir string) (IngestStats, error) {
	docs, err := s.loader.Load(dir)
	if err != nil {
		return IngestStats{}, fmt.Errorf("loading documents: %w", err)
	}
	if len(docs) == 0 {
		return IngestStats{}, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}

	chunks := s.splitter.Split(docs)
	if len(chunks) == 0 {
		return IngestStats{}, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}
	s.logger.Info("split documents",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		batch, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return IngestStats{}, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return IngestStats{}, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}

	// wholesale replace: clear the old contents first, then re-initialize
	// for the new dimension, so backends whose Clear tears the index down
	// (qdrant drops the collection) are rebuilt before writing
	if err := s.store.Clear(ctx); err != nil {
		return IngestStats{}, fmt.Errorf("clearing index: %w", err)
	}
	if err := s.store.Init(ctx, len(vectors[0])); err != nil {
		return IngestStats{}, fmt.Errorf("initializing index: %w", err)
	}
	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return IngestStats{}, fmt.Errorf("persisting chunks: %w", err)
	}

	stats := IngestStats{Documents: len(docs), Chunks: len(chunks)}
	s.logger.Info("ingestion complete",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks))
	return stats, nil
}

// Answer runs the query-time chain for one question: embed, retrieve at
// the mode's depth, format context, compose the prompt with the prior
// turns, generate, and extract any diagram blocks. history must exclude
// the in-flight question. Failures are local to this request.
func (s *RAGService) Answer(ctx context.Context, question string, history []domain.Turn, mode prompt.Mode) (domain.Answer, error) {
	if s.generator == nil {
		return domain.Answer{}, errors.New("no generation backend configured")
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("vector index unavailable: %w", err)
	}
	if n == 0 {
		return domain.Answer{}, ErrEmptyIndex
	}

	vec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embedding question: %w", err)
	}
	results, err := s.store.Search(ctx, vec, mode.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("searching index: %w", err)
	}
	s.logger.Debug("retrieved chunks",
		zap.String("mode", mode.Name),
		zap.Int("k", mode.TopK),
		zap.Int("results", len(results)))

	composed := prompt.Compose(mode, prompt.FormatContext(results), prompt.AdaptHistory(history), question)
	text, err := s.generator.Generate(ctx, composed)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	return domain.Answer{
		Text:     text,
		Sources:  prompt.SourceNames(results),
		Diagrams: diagram.Extract(text),
	}, nil
}
