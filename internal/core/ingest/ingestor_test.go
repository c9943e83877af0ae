package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/models"
)

// fakeDB is an in-memory core.DbClient for workflow tests.
type fakeDB struct {
	mu        sync.Mutex
	docs      map[string]models.Document
	chunks    []models.DocumentChunk
	users     map[string]models.User
	insertErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		docs:  make(map[string]models.Document),
		users: make(map[string]models.User),
	}
}

func (f *fakeDB) CreateUser(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CreateDocumentWithQuota(ctx context.Context, doc *models.Document, maxDocs int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, d := range f.docs {
		if d.UserID == doc.UserID {
			count++
		}
	}
	if count > maxDocs-1 {
		return core.ErrQuotaExceeded
	}
	f.docs[doc.ID] = *doc
	return nil
}

func (f *fakeDB) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.docs[id]; ok {
		out := d
		return &out, nil
	}
	return nil, nil
}

func (f *fakeDB) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDB) CountDocumentsByUser(ctx context.Context, userID string) (int, error) {
	docs, _ := f.ListDocumentsByUser(ctx, userID)
	return len(docs), nil
}

func (f *fakeDB) DeleteDocument(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.docs, id)
	kept := f.chunks[:0]
	for _, ch := range f.chunks {
		if ch.DocumentID != id {
			kept = append(kept, ch)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeDB) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	d.Status = status
	f.docs[id] = d
	return nil
}

func (f *fakeDB) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeDB) SearchDocumentChunks(ctx context.Context, docID string, queryVec []float32, limit int) ([]models.DocumentChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DocumentChunk
	for _, ch := range f.chunks {
		if ch.DocumentID == docID && len(out) < limit {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, fileURL, ownerID string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, "text/plain", nil
}

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	return string(data), nil
}

func newTestIngestor(db *fakeDB, emb *fakeEmbedder, fetch *fakeFetcher) *DocumentIngestor {
	cfg := NewSplitterConfig(DefaultChunkSize, DefaultChunkOverlap)
	return NewDocumentIngestor(db, emb, passthroughExtractor{}, fetch, cfg)
}

func TestIngestSuccessCreatesOneDocument(t *testing.T) {
	db := newFakeDB()
	text := strings.Repeat("a", 2500)
	ing := newTestIngestor(db, &fakeEmbedder{}, &fakeFetcher{data: []byte(text)})

	docID, err := ing.Ingest(context.Background(), "user-1", "https://files.example/doc.pdf", "doc.pdf")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if docID == "" {
		t.Fatal("expected a document id")
	}

	count, _ := db.CountDocumentsByUser(context.Background(), "user-1")
	if count != 1 {
		t.Fatalf("expected 1 document, got %d", count)
	}

	doc, _ := db.GetDocumentByID(context.Background(), docID)
	if doc == nil || doc.Status != "ready" {
		t.Fatalf("expected status ready, got %+v", doc)
	}

	if len(db.chunks) != 3 {
		t.Fatalf("expected 3 chunks for 2500 chars, got %d", len(db.chunks))
	}
	for i, ch := range db.chunks {
		if ch.DocumentID != docID {
			t.Fatalf("chunk %d not tagged with document id: %q", i, ch.DocumentID)
		}
		if len(ch.Embedding) == 0 {
			t.Fatalf("chunk %d has no embedding", i)
		}
	}
}

func TestIngestQuotaRejectsFifthDocument(t *testing.T) {
	db := newFakeDB()
	for i := 0; i < MaxDocumentsPerUser; i++ {
		doc := models.Document{ID: string(rune('a' + i)), UserID: "user-1", FileName: "f", Status: "ready"}
		db.docs[doc.ID] = doc
	}

	ing := newTestIngestor(db, &fakeEmbedder{}, &fakeFetcher{data: []byte("hello")})
	_, err := ing.Ingest(context.Background(), "user-1", "https://files.example/doc.pdf", "doc.pdf")
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	count, _ := db.CountDocumentsByUser(context.Background(), "user-1")
	if count != MaxDocumentsPerUser {
		t.Fatalf("document count changed: %d", count)
	}
	if len(db.chunks) != 0 {
		t.Fatalf("no chunks should be written, got %d", len(db.chunks))
	}
}

func TestIngestBelowCapSucceeds(t *testing.T) {
	db := newFakeDB()
	for i := 0; i < MaxDocumentsPerUser-1; i++ {
		doc := models.Document{ID: string(rune('a' + i)), UserID: "user-1", FileName: "f", Status: "ready"}
		db.docs[doc.ID] = doc
	}

	ing := newTestIngestor(db, &fakeEmbedder{}, &fakeFetcher{data: []byte("hello world")})
	if _, err := ing.Ingest(context.Background(), "user-1", "https://files.example/doc.pdf", "doc.pdf"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	count, _ := db.CountDocumentsByUser(context.Background(), "user-1")
	if count != MaxDocumentsPerUser {
		t.Fatalf("expected count %d, got %d", MaxDocumentsPerUser, count)
	}
}

func TestIngestFetchFailureKeepsRowMarkedFailed(t *testing.T) {
	db := newFakeDB()
	ing := newTestIngestor(db, &fakeEmbedder{}, &fakeFetcher{err: errors.New("boom")})

	_, err := ing.Ingest(context.Background(), "user-1", "https://files.example/doc.pdf", "doc.pdf")
	if err == nil {
		t.Fatal("expected an error")
	}

	// The metadata row is created before ingestion and is not rolled back.
	docs, _ := db.ListDocumentsByUser(context.Background(), "user-1")
	if len(docs) != 1 {
		t.Fatalf("expected the row to survive, got %d rows", len(docs))
	}
	if docs[0].Status != "failed" {
		t.Fatalf("expected status failed, got %q", docs[0].Status)
	}
	if len(db.chunks) != 0 {
		t.Fatalf("no chunks should be written, got %d", len(db.chunks))
	}
}

func TestIngestEmbedFailureMarksFailed(t *testing.T) {
	db := newFakeDB()
	ing := newTestIngestor(db, &fakeEmbedder{err: errors.New("embed down")}, &fakeFetcher{data: []byte("some text")})

	docID, err := ing.Ingest(context.Background(), "user-1", "https://files.example/doc.pdf", "doc.pdf")
	if err == nil {
		t.Fatal("expected an error")
	}
	if docID != "" {
		t.Fatalf("expected empty doc id on failure, got %q", docID)
	}

	docs, _ := db.ListDocumentsByUser(context.Background(), "user-1")
	if len(docs) != 1 || docs[0].Status != "failed" {
		t.Fatalf("expected one failed row, got %+v", docs)
	}
}
