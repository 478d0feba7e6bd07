package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"deepread/internal/core"
	"deepread/internal/core/ingestion_engine"
	"deepread/internal/models"
)

// ProcessResult is what a successful ingestion hands back to the API layer:
// the registered document, its searchable collection, and a fresh chat
// session id scoped to this processing run.
type ProcessResult struct {
	Document  *models.Document
	Handle    models.CollectionHandle
	SessionID string
}

type DocumentService struct {
	db       core.DbClient
	storage  core.ObjectClient
	pipeline *ingestion_engine.Pipeline
	index    core.VectorIndex
	pdfDir   string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, pipeline *ingestion_engine.Pipeline, index core.VectorIndex, pdfDir string) *DocumentService {
	return &DocumentService{db: db, storage: storage, pipeline: pipeline, index: index, pdfDir: pdfDir}
}

// ProcessLocal ingests a PDF already present in the configured PDF directory.
// The filename must be bare; anything that escapes the directory is rejected.
func (s *DocumentService) ProcessLocal(ctx context.Context, filename string) (*ProcessResult, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", core.ErrInvalidRequest)
	}
	if filepath.Base(filename) != filename || strings.HasPrefix(filename, ".") {
		return nil, fmt.Errorf("%w: invalid filename %q", core.ErrInvalidRequest, filename)
	}

	fullPath := filepath.Join(s.pdfDir, filename)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pdf %q: %w", filename, core.ErrNotFound)
		}
		return nil, fmt.Errorf("stat pdf %q: %w", filename, err)
	}

	doc := &models.Document{
		ID:          uuid.NewString(),
		FileName:    filename,
		StorageURL:  fullPath,
		SourceType:  "local",
		ContentType: "application/pdf",
		Status:      "uploaded",
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return s.ingest(ctx, doc, fullPath)
}

// UploadAndProcess stores an uploaded document and ingests it in one call.
func (s *DocumentService) UploadAndProcess(ctx context.Context, filename, contentType string, data []byte) (*ProcessResult, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", core.ErrInvalidRequest)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", core.ErrInvalidRequest)
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	docID := uuid.NewString()
	key := s.objectKey(docID, filename)

	url, err := s.storage.UploadFile(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:          docID,
		FileName:    filename,
		StorageURL:  url,
		SourceType:  "upload",
		ContentType: contentType,
		Status:      "uploaded",
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	// Extractors work on paths and route by extension, so the temp file must
	// carry the upload's original extension.
	tmp, err := os.CreateTemp("", "deepread-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return s.ingest(ctx, doc, tmp.Name())
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.db.ListDocuments(ctx)
}

// Download streams the stored source file for a document. The caller owns
// the returned reader.
func (s *DocumentService) Download(ctx context.Context, id string) (io.ReadCloser, *models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if doc.SourceType == "upload" {
		rc, err := s.storage.GetObjectReader(ctx, s.objectKey(doc.ID, doc.FileName))
		if err != nil {
			return nil, nil, err
		}
		return rc, doc, nil
	}

	// Local documents live in the PDF directory at their registered path.
	f, err := os.Open(doc.StorageURL)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file for document %s: %w", id, core.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open file for document %s: %w", id, err)
	}
	return f, doc, nil
}

// Delete removes a document: its vector collection, its stored object when
// it was uploaded, and its registry row. Source files referenced from the
// PDF directory are left in place.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.index.Drop(ctx, ingestion_engine.CollectionName(doc.ID)); err != nil {
		return err
	}
	if doc.SourceType == "upload" {
		if err := s.storage.DeleteFile(ctx, s.objectKey(doc.ID, doc.FileName)); err != nil {
			return err
		}
	}
	return s.db.DeleteDocument(ctx, id)
}

// ingest runs the pipeline for a registered document and tracks its status.
func (s *DocumentService) ingest(ctx context.Context, doc *models.Document, path string) (*ProcessResult, error) {
	if err := s.db.UpdateDocumentStatus(ctx, doc.ID, "processing"); err != nil {
		return nil, err
	}

	handle, err := s.pipeline.Ingest(ctx, path, doc.ID)
	if err != nil {
		_ = s.db.UpdateDocumentStatus(ctx, doc.ID, "failed")
		return nil, err
	}
	handle.SourceFilename = doc.FileName

	if err := s.db.UpdateDocumentStatus(ctx, doc.ID, "ready"); err != nil {
		return nil, err
	}
	doc.Status = "ready"

	return &ProcessResult{
		Document:  doc,
		Handle:    handle,
		SessionID: uuid.NewString(),
	}, nil
}

// objectKey creates a consistent storage key layout.
func (s *DocumentService) objectKey(docID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("documents", docID, filename)
}
