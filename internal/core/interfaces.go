package core

import (
	"context"
	"errors"
	"io"

	"github.com/DavidGir/Camelot/internal/models"
)

// ErrNotFound is returned when a lookup or a scoped delete matches no row.
var ErrNotFound = errors.New("not found")

// ErrQuotaExceeded is returned when a user already holds the maximum
// number of documents.
var ErrQuotaExceeded = errors.New("document quota exceeded")

// ErrEmailTaken is returned when a signup collides with an existing account.
var ErrEmailTaken = errors.New("email already registered")

// DbClient defines all persistence operations the handlers and workflows
// need. It abstracts Postgres/pgvector so higher layers never depend on a
// specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateDocumentWithQuota inserts the document only if the owner holds
	// fewer than maxDocs documents; the count and the insert run in a single
	// transaction under a per-user advisory lock. Returns ErrQuotaExceeded
	// when the cap is hit.
	CreateDocumentWithQuota(ctx context.Context, doc *models.Document, maxDocs int) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	CountDocumentsByUser(ctx context.Context, userID string) (int, error)
	// DeleteDocument removes the chunks and the metadata row matched on both
	// id AND userID in one transaction. Returns ErrNotFound when no row
	// matches the pair.
	DeleteDocument(ctx context.Context, id, userID string) error
	UpdateDocumentStatus(ctx context.Context, id string, status string) error

	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error
	SearchDocumentChunks(ctx context.Context, docID string, queryVec []float32, limit int) ([]models.DocumentChunk, error)

	Close() error
}

// EmbeddingProvider converts text into vector representations.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion from a system and user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// TextExtractor extracts raw text from a document payload. The contentType
// hint picks the parsing strategy.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}
