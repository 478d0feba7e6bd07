package ingestion_engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepread/internal/core"
	"deepread/internal/core/index"
	"deepread/internal/core/llm"
	"deepread/internal/models"
)

// fakeExtractor serves canned pages keyed by path.
type fakeExtractor struct {
	pages map[string][]models.PageText
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	pages, ok := f.pages[path]
	if !ok {
		return nil, core.ErrExtraction
	}
	return pages, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}

func twoPageDoc() []models.PageText {
	return []models.PageText{
		{Number: 1, Text: "Alpha. Beta."},
		{Number: 2, Text: "Gamma."},
	}
}

func TestIngestTwoPageDocument(t *testing.T) {
	idx := index.NewMemoryIndex()
	extractor := &fakeExtractor{pages: map[string][]models.PageText{"/docs/ab.pdf": twoPageDoc()}}
	p := NewPipeline(extractor, llm.NewMockEmbedder(8), idx)

	handle, err := p.Ingest(context.Background(), "/docs/ab.pdf", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", handle.DocumentID)
	assert.Equal(t, "pdf_doc_1", handle.CollectionName)
	assert.Equal(t, "ab.pdf", handle.SourceFilename)

	// Collection is searchable immediately after Ingest returns.
	embedder := llm.NewMockEmbedder(8)
	qv, err := embedder.EmbedTexts(context.Background(), []string{"Beta."})
	require.NoError(t, err)
	hits, err := idx.Search(context.Background(), handle.CollectionName, qv[0], 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "Beta.", hits[0].Text, "exact text should be the nearest neighbor")

	texts := make(map[string]int)
	for _, h := range hits {
		texts[h.Text] = h.PageNumber
	}
	assert.Equal(t, map[string]int{"Alpha.": 1, "Beta.": 1, "Gamma.": 2}, texts)
}

func TestIngestPreservesPageOrder(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]models.PageText{"/docs/ab.pdf": twoPageDoc()}}

	var captured []models.PassageRecord
	idx := &capturingIndex{MemoryIndex: index.NewMemoryIndex(), captured: &captured}
	p := NewPipeline(extractor, llm.NewMockEmbedder(8), idx)

	_, err := p.Ingest(context.Background(), "/docs/ab.pdf", "doc-1")
	require.NoError(t, err)

	require.Len(t, captured, 3)
	wantTexts := []string{"Alpha.", "Beta.", "Gamma."}
	wantPages := []int{1, 1, 2}
	seen := make(map[int64]bool)
	for i, rec := range captured {
		assert.Equal(t, wantTexts[i], rec.Text)
		assert.Equal(t, wantPages[i], rec.PageNumber)
		assert.Equal(t, "doc-1", rec.DocumentID)
		assert.GreaterOrEqual(t, rec.ID, int64(0))
		assert.False(t, seen[rec.ID], "passage ids must be unique")
		seen[rec.ID] = true
	}
}

func TestIngestReplacesExistingCollection(t *testing.T) {
	idx := index.NewMemoryIndex()
	extractor := &fakeExtractor{pages: map[string][]models.PageText{
		"/docs/v1.pdf": {{Number: 1, Text: "Old content."}},
		"/docs/v2.pdf": {{Number: 1, Text: "New content."}},
	}}
	p := NewPipeline(extractor, llm.NewMockEmbedder(8), idx)

	_, err := p.Ingest(context.Background(), "/docs/v1.pdf", "doc-1")
	require.NoError(t, err)
	handle, err := p.Ingest(context.Background(), "/docs/v2.pdf", "doc-1")
	require.NoError(t, err)

	embedder := llm.NewMockEmbedder(8)
	qv, err := embedder.EmbedTexts(context.Background(), []string{"content"})
	require.NoError(t, err)
	hits, err := idx.Search(context.Background(), handle.CollectionName, qv[0], 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "old passages must be unreachable after re-ingest")
	assert.Equal(t, "New content.", hits[0].Text)
}

func TestIngestEmptyDocument(t *testing.T) {
	idx := index.NewMemoryIndex()
	extractor := &fakeExtractor{pages: map[string][]models.PageText{
		"/docs/blank.pdf": {{Number: 1, Text: "   "}, {Number: 2, Text: ""}},
	}}
	p := NewPipeline(extractor, llm.NewMockEmbedder(8), idx)

	_, err := p.Ingest(context.Background(), "/docs/blank.pdf", "doc-1")
	assert.ErrorIs(t, err, core.ErrEmptyDocument)

	ok, err := idx.Has(context.Background(), CollectionName("doc-1"))
	require.NoError(t, err)
	assert.False(t, ok, "no collection may exist after a failed ingest")
}

func TestIngestEmbeddingFailureLeavesNothing(t *testing.T) {
	idx := index.NewMemoryIndex()
	extractor := &fakeExtractor{pages: map[string][]models.PageText{"/docs/ab.pdf": twoPageDoc()}}
	p := NewPipeline(extractor, failingEmbedder{}, idx)

	_, err := p.Ingest(context.Background(), "/docs/ab.pdf", "doc-1")
	assert.ErrorIs(t, err, core.ErrEmbedding)

	ok, err := idx.Has(context.Background(), CollectionName("doc-1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngestExtractionFailure(t *testing.T) {
	p := NewPipeline(&fakeExtractor{}, llm.NewMockEmbedder(8), index.NewMemoryIndex())
	_, err := p.Ingest(context.Background(), "/docs/missing.pdf", "doc-1")
	assert.ErrorIs(t, err, core.ErrExtraction)
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "pdf_doc_1", CollectionName("doc-1"))
	assert.Equal(t, "pdf_abc", CollectionName("ABC"))
	assert.Equal(t, CollectionName("x y.z"), CollectionName("x y.z"), "deterministic")
	assert.Equal(t, "pdf_x_y_z", CollectionName("x y.z"))
}

// capturingIndex records inserted passages while delegating to MemoryIndex.
type capturingIndex struct {
	*index.MemoryIndex
	captured *[]models.PassageRecord
}

func (c *capturingIndex) Insert(ctx context.Context, name string, passages []models.PassageRecord, vectors [][]float32) error {
	*c.captured = append(*c.captured, passages...)
	return c.MemoryIndex.Insert(ctx, name, passages, vectors)
}
