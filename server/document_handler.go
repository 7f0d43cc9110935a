package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sonicpdf/logger"
	"sonicpdf/model"
)

// maxDocumentBytes caps uploads at 50 MB.
const maxDocumentBytes = 50 << 20

// UploadDocumentHandler accepts a multipart PDF upload: the bytes go to
// object storage, the metadata to MySQL.
func (h *APIHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'document' file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Only PDF documents are accepted")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	pageCount, _ := strconv.Atoi(r.FormValue("pageCount"))

	objectKey := fmt.Sprintf("users/%d/%s.pdf", userID, uuid.NewString())
	if err := h.documents.Put(r.Context(), objectKey, file, header.Size); err != nil {
		logger.Error("document upload failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store document")
		return
	}

	doc := &model.Document{
		UserID:    userID,
		Title:     title,
		FileName:  header.Filename,
		ObjectKey: objectKey,
		SizeBytes: header.Size,
		PageCount: pageCount,
		LastPage:  1,
	}
	id, err := h.documentRepo.CreateDocument(doc)
	if err != nil {
		logger.Error("failed to record document", logger.ErrorField(err))
		// Metadata failed; do not leave the orphaned object behind.
		if delErr := h.documents.Delete(r.Context(), objectKey); delErr != nil {
			logger.Warn("failed to clean up orphaned object", logger.ErrorField(delErr))
		}
		writeError(w, http.StatusInternalServerError, "Failed to record document")
		return
	}
	doc.ID = id

	logger.Info("document uploaded",
		logger.Int64("user", userID),
		logger.Int64("document", id),
		logger.Int64("bytes", header.Size))
	writeJSON(w, http.StatusCreated, doc)
}

// ListDocumentsHandler returns the caller's documents.
func (h *APIHandler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	docs, err := h.documentRepo.ListDocumentsByUser(userID)
	if err != nil {
		logger.Error("failed to list documents", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []*model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// ownedDocument loads a document and checks the caller owns it.
func (h *APIHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*model.Document, int64, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document ID")
		return nil, 0, false
	}

	doc, err := h.documentRepo.GetDocumentByID(id)
	if err != nil {
		logger.Error("failed to load document", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load document")
		return nil, 0, false
	}
	if doc == nil || doc.UserID != userID {
		// Hide other users' documents entirely.
		writeError(w, http.StatusNotFound, "Document not found")
		return nil, 0, false
	}
	return doc, userID, true
}

// GetDocumentURLHandler issues a short-lived download link for the PDF.
func (h *APIHandler) GetDocumentURLHandler(w http.ResponseWriter, r *http.Request) {
	doc, _, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	url, err := h.documents.PresignedGetURL(r.Context(), doc.ObjectKey, 15*time.Minute)
	if err != nil {
		logger.Error("failed to presign document", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate download link")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// UpdateLastPageHandler stores the reader's resume position.
func (h *APIHandler) UpdateLastPageHandler(w http.ResponseWriter, r *http.Request) {
	doc, userID, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Page < 1 {
		writeError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	if err := h.documentRepo.UpdateLastPage(doc.ID, userID, req.Page); err != nil {
		logger.Error("failed to update last page", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update reading position")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"page": req.Page})
}

// DeleteDocumentHandler removes a document and its stored bytes, plus any
// cached recommendations for its pages.
func (h *APIHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, userID, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	if err := h.documentRepo.DeleteDocument(doc.ID, userID); err != nil {
		logger.Error("failed to delete document", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}
	if err := h.documents.Delete(r.Context(), doc.ObjectKey); err != nil {
		logger.Warn("failed to delete stored object", logger.ErrorField(err))
	}
	if h.recCache != nil {
		if err := h.recCache.Invalidate(r.Context(), doc.ID); err != nil {
			logger.Warn("failed to invalidate recommendation cache", logger.ErrorField(err))
		}
	}

	logger.Info("document deleted",
		logger.Int64("user", userID), logger.Int64("document", doc.ID))
	w.WriteHeader(http.StatusNoContent)
}
