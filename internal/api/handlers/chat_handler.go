package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/DavidGir/Camelot/internal/api/respond"
	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/core/vectorstore"
)

type ChatHandler struct {
	dbclient core.DbClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
}

func NewChatHandler(db core.DbClient, emb core.EmbeddingProvider, llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{dbclient: db, embedder: emb, llm: llm}
}

type ChatRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
}

func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok || userID == "" {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "invalid request")
		return
	}

	// Confirm document belongs to user
	doc, err := h.dbclient.GetDocumentByID(ctx, req.DocumentID)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", "failed to load document")
		return
	}
	if doc == nil {
		respond.Error(w, r, http.StatusNotFound, "not_found", "document not found")
		return
	}
	if doc.UserID != userID {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "you are not authorized to access this document")
		return
	}

	store := vectorstore.Open(h.dbclient, h.embedder, doc.ID)
	chunks, err := store.SimilaritySearch(ctx, req.Query, 5)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", fmt.Sprintf("search failed: %v", err))
		return
	}

	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(ch.Text)
		sb.WriteString("\n---\n")
	}

	systemPrompt := "You are an intelligent assistant answering based only on the given document content. If unsure, say 'I cannot find this in the document.'"
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), req.Query)

	answer, err := h.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", fmt.Sprintf("LLM failed: %v", err))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"answer": answer,
	})
}
