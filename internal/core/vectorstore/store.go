// Package vectorstore exposes the chunk embeddings as a namespaced store:
// one namespace per document, keyed by the document ID. A handle opened for
// a namespace only ever reads and writes vectors belonging to it.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/models"
)

// defaultBatchSize bounds how many chunk texts go to the embedder per request.
const defaultBatchSize = 16

type Store struct {
	db        core.DbClient
	embedder  core.EmbeddingProvider
	namespace string
	batchSize int
}

// Open returns a handle scoped to the given namespace (the document ID).
func Open(db core.DbClient, embedder core.EmbeddingProvider, namespace string) *Store {
	return &Store{
		db:        db,
		embedder:  embedder,
		namespace: namespace,
		batchSize: defaultBatchSize,
	}
}

// AddDocuments embeds the chunk texts in batches and persists the vectors
// under the handle's namespace. Incoming chunks are stamped with the
// namespace as their document ID regardless of what they carry.
func (s *Store) AddDocuments(ctx context.Context, chunks []models.DocumentChunk) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		vecs, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(batch))
		}

		rows := make([]models.DocumentChunk, len(batch))
		for i := range batch {
			rows[i] = batch[i]
			rows[i].DocumentID = s.namespace
			rows[i].Embedding = vecs[i]
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		if err := s.db.InsertDocumentChunks(ctx, rows); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}
	return nil
}

// SimilaritySearch embeds the query and returns the topK nearest chunks
// within the namespace.
func (s *Store) SimilaritySearch(ctx context.Context, query string, topK int) ([]models.DocumentChunk, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	return s.db.SearchDocumentChunks(ctx, s.namespace, vecs[0], topK)
}
