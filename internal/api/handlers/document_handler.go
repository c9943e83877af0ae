package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/DavidGir/Camelot/internal/api/respond"
	"github.com/DavidGir/Camelot/internal/config"
	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/core/ingest"
	"github.com/DavidGir/Camelot/internal/core/objectclient"
)

const maxUploadSize = 50 << 20 // 50 MB

type DocumentHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	ingestor     ingest.Ingestor
	cfg          *config.Config
}

func NewDocumentHandler(dbclient core.DbClient, obj core.ObjectClient, ing ingest.Ingestor, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{dbclient: dbclient, objectclient: obj, ingestor: ing, cfg: cfg}
}

type ingestRequest struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

// IngestDocument runs the full pipeline for one remotely hosted file:
// quota-checked row creation, fetch, text extraction, splitting, embedding
// and vector upsert under the new document's namespace.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok || userID == "" {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "You must be logged in to ingest data")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "invalid body")
		return
	}
	if req.FileURL == "" || req.FileName == "" {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "fileUrl and fileName are required")
		return
	}

	docID, err := h.ingestor.Ingest(r.Context(), userID, req.FileURL, req.FileName)
	if err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			respond.Error(w, r, http.StatusForbidden, "quota_exceeded", "You have reached the maximum number of documents")
			return
		}
		respond.Error(w, r, http.StatusBadGateway, "ingestion_failed", "Failed to ingest your data")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"text": "Successfully embedded pdf",
		"id":   docID,
	})
}

// GetDocuments lists the caller's documents, newest first.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok || userID == "" {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "user_id not found in context")
		return
	}

	documents, err := h.dbclient.ListDocumentsByUser(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, documents)
}

// DeleteDocument removes the document identified by the id query parameter,
// scoped to the caller. The metadata row and the vector namespace go in one
// transaction; the stored binary is cleaned up best-effort afterwards.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok || userID == "" {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "You must be logged in to delete data")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "id is required")
		return
	}

	// Looked up before the delete so the stored binary can be cleaned up.
	doc, err := h.dbclient.GetDocumentByID(r.Context(), id)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", "Error deleting document")
		return
	}

	if err := h.dbclient.DeleteDocument(r.Context(), id, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "internal", "Error deleting document")
		return
	}

	// The fileUrl is caller data; only clean up objects under the caller's
	// own prefix so a forged URL can never delete another user's file.
	if doc != nil && h.objectclient != nil && h.cfg != nil {
		if bucket, key := objectclient.ParseS3URL(doc.FileURL); bucket == h.cfg.BucketName &&
			strings.HasPrefix(key, objectclient.UserObjectPrefix(userID)) {
			if err := h.objectclient.DeleteFile(r.Context(), bucket, key); err != nil {
				log.Printf("delete document %s: remove stored file: %v", id, err)
			}
		}
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Document %s deleted", id),
	})
}

// UploadDocument plays the upload-provider role: it stores the multipart
// file and returns the fileUrl/fileName pair the ingest endpoint consumes.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok || userID == "" {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", "user_id not found in context")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation_error", "invalid file")
		return
	}
	defer file.Close()

	// Sanitize filename to prevent path traversal or invalid characters
	cleanFilename := filepath.Base(header.Filename)
	key := fmt.Sprintf("%sdocuments/%s/%s", objectclient.UserObjectPrefix(userID), uuid.NewString(), cleanFilename)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	url, err := h.objectclient.UploadFile(r.Context(), h.cfg.BucketName, key, file, contentType)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal", fmt.Sprintf("upload failed: %v", err))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"fileUrl":  url,
		"fileName": header.Filename,
	})
}
