package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"deepread/internal/models"
	"deepread/internal/services"
)

type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// ProcessPDF ingests a PDF that already sits in the configured PDF directory.
func (h *DocumentHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.documents.ProcessLocal(r.Context(), req.Filename)
	if err != nil {
		log.Printf("ERROR process_pdf %q: %v", req.Filename, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, models.ProcessPDFResponse{
		Message:          fmt.Sprintf("PDF %q processed successfully", result.Document.FileName),
		PDFInternalID:    result.Document.ID,
		OriginalFilename: result.Document.FileName,
		CollectionName:   result.Handle.CollectionName,
		PDFSessionID:     result.SessionID,
	})
}

// UploadDocument handles multipart file upload plus ingestion in one request.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(52 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload failed", http.StatusInternalServerError)
		return
	}

	// Sanitize filename to prevent path traversal or invalid characters
	cleanFilename := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")

	result, err := h.documents.UploadAndProcess(r.Context(), cleanFilename, contentType, data)
	if err != nil {
		log.Printf("ERROR upload %q: %v", cleanFilename, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, models.ProcessPDFResponse{
		Message:          fmt.Sprintf("PDF %q uploaded and processed successfully", result.Document.FileName),
		PDFInternalID:    result.Document.ID,
		OriginalFilename: result.Document.FileName,
		CollectionName:   result.Handle.CollectionName,
		PDFSessionID:     result.SessionID,
	})
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.documents.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// DownloadDocument streams the stored source file back to the caller.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rc, doc, err := h.documents.Download(r.Context(), id)
	if err != nil {
		log.Printf("ERROR download %s: %v", id, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are out; all we can do is log.
		log.Printf("ERROR streaming document %s: %v", id, err)
	}
}

// DeleteDocument removes a document, its stored file, and its collection.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.documents.Delete(r.Context(), id); err != nil {
		log.Printf("ERROR delete %s: %v", id, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "document deleted",
		"id":      id,
	})
}
