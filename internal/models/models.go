package models

import (
	"time"
)

// Document represents an uploaded or locally referenced PDF known to the system.
type Document struct {
	ID          string    `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"` // S3 URL or local path
	SourceType  string    `db:"source_type" json:"source_type"` // "upload" or "local"
	ContentType string    `db:"content_type" json:"content_type"`
	Status      string    `db:"status" json:"status"` // uploaded | processing | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PageText is one extracted page of a document, in source page order.
type PageText struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

// PassageRecord is one sentence-level unit extracted from a document.
// Records are created in bulk during ingestion and never mutated; they go
// away when their collection is dropped.
type PassageRecord struct {
	ID             int64  `db:"id" json:"id"`
	Text           string `db:"text" json:"text"`
	PageNumber     int    `db:"page_number" json:"page_number"` // 1-based
	DocumentID     string `db:"document_id" json:"document_id"`
	SourceFilename string `db:"source_filename" json:"source_filename"`
}

// CollectionHandle identifies a searchable collection produced by one
// ingestion run.
type CollectionHandle struct {
	DocumentID     string `json:"document_id"`
	CollectionName string `json:"collection_name"`
	SourceFilename string `json:"source_filename"`
}

// RetrievedPassage is one nearest-neighbor hit returned from the vector index.
type RetrievedPassage struct {
	Text       string  `json:"text"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in a conversation. Messages belong to exactly
// one session.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResult is what the orchestrator hands back for one answered turn.
type ChatResult struct {
	Answer            string             `json:"answer"`
	RetrievedPassages []RetrievedPassage `json:"retrieved_passages"`
}

// ProcessPDFRequest asks the backend to ingest a PDF already present in the
// configured PDF directory. Field names follow the DeepRead frontend.
type ProcessPDFRequest struct {
	Filename string `json:"filename"`
}

// ProcessPDFResponse reports a completed ingestion.
type ProcessPDFResponse struct {
	Message          string `json:"message"`
	PDFInternalID    string `json:"pdf_internal_id"`
	OriginalFilename string `json:"original_filename"`
	CollectionName   string `json:"collection_name_for_rag"`
	PDFSessionID     string `json:"pdf_session_id"`
}

// ChatWithPDFRequest is one question against an ingested PDF.
type ChatWithPDFRequest struct {
	Query          string `json:"query"`
	PDFSessionID   string `json:"pdf_session_id"`
	CollectionName string `json:"collection_name_for_rag"`
}

// ChatWithPDFResponse carries the answer plus the passages that were fed to
// the model, for caller-side transparency.
type ChatWithPDFResponse struct {
	Answer            string             `json:"answer"`
	RetrievedPassages []RetrievedPassage `json:"retrieved_passages"`
	PDFSessionID      string             `json:"pdf_session_id"`
}

// ChatHistoryResponse is the transcript of one session.
type ChatHistoryResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}
