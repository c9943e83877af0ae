package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQueryDocumentRepositoryFailureIsInternal(t *testing.T) {
	db := &stubDB{getErr: errors.New("connection reset")}
	h := NewChatHandler(db, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/chat/query",
		strings.NewReader(`{"document_id":"doc-1","query":"what is this?"}`), "user-1")
	h.QueryDocument(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Kind != "internal" {
		t.Fatalf("expected kind internal, got %q", body.Error.Kind)
	}
}

func TestQueryDocumentMissingIsNotFound(t *testing.T) {
	h := NewChatHandler(&stubDB{}, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/chat/query",
		strings.NewReader(`{"document_id":"doc-1","query":"what is this?"}`), "user-1")
	h.QueryDocument(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Kind != "not_found" {
		t.Fatalf("expected kind not_found, got %q", body.Error.Kind)
	}
}
