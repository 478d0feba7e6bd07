package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepread/internal/core"
	"deepread/internal/models"
)

func TestCreateDocumentStampsZeroTimestamps(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.CreateDocument(ctx, &models.Document{ID: "d1", FileName: "a.pdf"}))

	got, err := r.GetDocumentByID(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero(), "created_at must never be the zero time")
	assert.False(t, got.UpdatedAt.IsZero(), "updated_at must never be the zero time")
}

func TestCreateDocumentKeepsExplicitTimestamps(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.CreateDocument(ctx, &models.Document{
		ID: "d1", FileName: "a.pdf", CreatedAt: created, UpdatedAt: created,
	}))

	got, err := r.GetDocumentByID(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.UpdatedAt.Equal(created))
}

func TestStampNew(t *testing.T) {
	doc := &models.Document{ID: "d1"}
	stampNew(doc)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.False(t, doc.UpdatedAt.IsZero())

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	kept := &models.Document{ID: "d2", CreatedAt: fixed, UpdatedAt: fixed}
	stampNew(kept)
	assert.True(t, kept.CreatedAt.Equal(fixed))
	assert.True(t, kept.UpdatedAt.Equal(fixed))
}

func TestListDocumentsNewestFirst(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, r.CreateDocument(ctx, &models.Document{
			ID: id, FileName: id + ".pdf", CreatedAt: ts, UpdatedAt: ts,
		}))
	}

	docs, err := r.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestDeleteDocument(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.CreateDocument(ctx, &models.Document{ID: "d1", FileName: "a.pdf"}))
	require.NoError(t, r.DeleteDocument(ctx, "d1"))

	_, err := r.GetDocumentByID(ctx, "d1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, r.DeleteDocument(ctx, "d1"), core.ErrNotFound)
}

func TestUpdateDocumentStatus(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.CreateDocument(ctx, &models.Document{ID: "d1", FileName: "a.pdf"}))
	require.NoError(t, r.UpdateDocumentStatus(ctx, "d1", "ready"))

	got, err := r.GetDocumentByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "ready", got.Status)

	assert.ErrorIs(t, r.UpdateDocumentStatus(ctx, "missing", "ready"), core.ErrNotFound)
}
