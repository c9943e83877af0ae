package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/core/vectorstore"
	"github.com/DavidGir/Camelot/internal/models"
)

// MaxDocumentsPerUser caps how many documents one user may hold at a time.
const MaxDocumentsPerUser = 4

// Fetcher retrieves an uploaded file from its URL on behalf of an owner.
type Fetcher interface {
	Fetch(ctx context.Context, fileURL, ownerID string) (data []byte, contentType string, err error)
}

// Ingestor is the workflow port the API layer depends on.
type Ingestor interface {
	Ingest(ctx context.Context, userID, fileURL, fileName string) (docID string, err error)
}

// DocumentIngestor runs the ingestion pipeline for one upload:
// quota-checked row creation, fetch, extract, split, embed, store.
// Each call is an independent, strictly sequential unit.
type DocumentIngestor struct {
	db        core.DbClient
	embedder  core.EmbeddingProvider
	extractor core.TextExtractor
	fetcher   Fetcher
	splitCfg  SplitterConfig
}

func NewDocumentIngestor(db core.DbClient, emb core.EmbeddingProvider, ex core.TextExtractor, f Fetcher, cfg SplitterConfig) *DocumentIngestor {
	return &DocumentIngestor{db: db, embedder: emb, extractor: ex, fetcher: f, splitCfg: cfg}
}

// Ingest creates the metadata row (which doubles as the vector namespace)
// and embeds the file's chunks under it. Returns the new document ID.
//
// The row is created before any upstream call so the namespace key is
// stable; if a later stage fails the row is kept with status "failed"
// rather than rolled back, and the caller gets a single ingestion error.
func (i *DocumentIngestor) Ingest(ctx context.Context, userID, fileURL, fileName string) (string, error) {
	now := time.Now()
	doc := &models.Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileName:  fileName,
		FileURL:   fileURL,
		Status:    "processing",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := i.db.CreateDocumentWithQuota(ctx, doc, MaxDocumentsPerUser); err != nil {
		return "", err
	}

	if err := i.process(ctx, doc); err != nil {
		log.Printf("ingest: document %s failed: %v", doc.ID, err)
		if stErr := i.db.UpdateDocumentStatus(ctx, doc.ID, "failed"); stErr != nil {
			log.Printf("ingest: document %s: mark failed: %v", doc.ID, stErr)
		}
		return "", fmt.Errorf("ingest document %s: %w", doc.ID, err)
	}

	if err := i.db.UpdateDocumentStatus(ctx, doc.ID, "ready"); err != nil {
		log.Printf("ingest: document %s: mark ready: %v", doc.ID, err)
	}
	return doc.ID, nil
}

func (i *DocumentIngestor) process(ctx context.Context, doc *models.Document) error {
	data, contentType, err := i.fetcher.Fetch(ctx, doc.FileURL, doc.UserID)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	text, err := i.extractor.Extract(ctx, data, contentType)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	chunks := Split(text, i.splitCfg)
	if len(chunks) == 0 {
		return fmt.Errorf("no text extracted")
	}
	log.Printf("ingest: document %s: %d chunks", doc.ID, len(chunks))

	// Tag every chunk with the owning document so vector queries join back.
	rows := make([]models.DocumentChunk, len(chunks))
	for idx, ch := range chunks {
		rows[idx] = models.DocumentChunk{
			DocumentID: doc.ID,
			Text:       ch.Text,
			Position:   ch.Position,
			CreatedAt:  time.Now(),
		}
	}

	store := vectorstore.Open(i.db, i.embedder, doc.ID)
	if err := store.AddDocuments(ctx, rows); err != nil {
		return fmt.Errorf("store vectors: %w", err)
	}
	return nil
}

var _ Ingestor = (*DocumentIngestor)(nil)
