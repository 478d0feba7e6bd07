package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepread/internal/core"
	"deepread/internal/core/database"
	"deepread/internal/core/index"
	"deepread/internal/core/ingestion_engine"
	"deepread/internal/core/llm"
	objectclient "deepread/internal/core/object-client"
	"deepread/internal/models"
)

// recordingExtractor returns fixed pages and remembers every path it saw.
type recordingExtractor struct {
	paths []string
	pages []models.PageText
}

func (r *recordingExtractor) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	r.paths = append(r.paths, path)
	return r.pages, nil
}

type serviceEnv struct {
	svc       *DocumentService
	extractor *recordingExtractor
	idx       *index.MemoryIndex
	registry  *database.MemoryRegistry
	pdfDir    string
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	idx := index.NewMemoryIndex()
	extractor := &recordingExtractor{pages: []models.PageText{
		{Number: 1, Text: "Alpha is first. Beta is second."},
	}}
	pipeline := ingestion_engine.NewPipeline(extractor, llm.NewMockEmbedder(16), idx)

	store, err := objectclient.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	registry := database.NewMemoryRegistry()
	pdfDir := t.TempDir()
	return &serviceEnv{
		svc:       NewDocumentService(registry, store, pipeline, idx, pdfDir),
		extractor: extractor,
		idx:       idx,
		registry:  registry,
		pdfDir:    pdfDir,
	}
}

func TestUploadKeepsSourceExtension(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	cases := []struct {
		filename string
		wantExt  string
	}{
		{"notes.txt", ".txt"},
		{"paper.PDF", ".pdf"},
		{"readme.md", ".md"},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			before := len(env.extractor.paths)
			_, err := env.svc.UploadAndProcess(ctx, tc.filename, "", []byte("file content"))
			require.NoError(t, err)

			require.Len(t, env.extractor.paths, before+1)
			got := env.extractor.paths[before]
			assert.Equal(t, tc.wantExt, filepath.Ext(got),
				"temp file must keep the upload's extension so extraction routes by format")
		})
	}
}

func TestUploadAndProcess(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	result, err := env.svc.UploadAndProcess(ctx, "notes.txt", "text/plain", []byte("Alpha notes."))
	require.NoError(t, err)

	assert.Equal(t, "ready", result.Document.Status)
	assert.Equal(t, "upload", result.Document.SourceType)
	assert.NotEmpty(t, result.SessionID)

	exists, err := env.idx.Has(ctx, result.Handle.CollectionName)
	require.NoError(t, err)
	assert.True(t, exists, "collection must be searchable after upload")

	docs, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.txt", docs[0].FileName)
}

func TestDownloadUploadedDocument(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	content := []byte("uploaded body bytes")

	result, err := env.svc.UploadAndProcess(ctx, "notes.txt", "text/plain", content)
	require.NoError(t, err)

	rc, doc, err := env.svc.Download(ctx, result.Document.ID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "notes.txt", doc.FileName)
	assert.Equal(t, "text/plain", doc.ContentType)
}

func TestDownloadLocalDocument(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	content := []byte("local pdf bytes")
	require.NoError(t, os.WriteFile(filepath.Join(env.pdfDir, "local.pdf"), content, 0o644))

	result, err := env.svc.ProcessLocal(ctx, "local.pdf")
	require.NoError(t, err)

	rc, doc, err := env.svc.Download(ctx, result.Document.ID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "local", doc.SourceType)
}

func TestDownloadUnknownDocument(t *testing.T) {
	env := newServiceEnv(t)

	_, _, err := env.svc.Download(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	result, err := env.svc.UploadAndProcess(ctx, "notes.txt", "text/plain", []byte("Alpha notes."))
	require.NoError(t, err)
	id := result.Document.ID

	require.NoError(t, env.svc.Delete(ctx, id))

	exists, err := env.idx.Has(ctx, result.Handle.CollectionName)
	require.NoError(t, err)
	assert.False(t, exists, "collection must be gone after delete")

	_, err = env.svc.Get(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = env.svc.Download(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, env.svc.Delete(ctx, id), core.ErrNotFound)
}

func TestProcessLocalRejectsBadFilenames(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	for _, filename := range []string{"", "  ", "../escape.pdf", "sub/dir.pdf", ".hidden.pdf"} {
		_, err := env.svc.ProcessLocal(ctx, filename)
		assert.ErrorIs(t, err, core.ErrInvalidRequest, "filename %q", filename)
	}
}
