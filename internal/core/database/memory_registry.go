package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"deepread/internal/core"
	"deepread/internal/models"
)

// MemoryRegistry is a process-local document registry used when no Postgres
// is configured. It mirrors DatabaseClient behavior closely enough that the
// services layer cannot tell them apart.
type MemoryRegistry struct {
	mu   sync.RWMutex
	docs map[string]models.Document
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{docs: make(map[string]models.Document)}
}

var _ core.DbClient = (*MemoryRegistry)(nil)

func (r *MemoryRegistry) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *doc
	stampNew(&stored)
	r.docs[stored.ID] = stored
	return nil
}

func (r *MemoryRegistry) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	out := doc
	return &out, nil
}

func (r *MemoryRegistry) ListDocuments(ctx context.Context) ([]models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRegistry) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	doc.Status = status
	doc.UpdatedAt = time.Now()
	r.docs[id] = doc
	return nil
}

func (r *MemoryRegistry) DeleteDocument(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

func (r *MemoryRegistry) Close() error {
	return nil
}
