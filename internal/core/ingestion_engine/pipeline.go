package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"deepread/internal/core"
	"deepread/internal/core/textproc"
	"deepread/internal/models"
)

// Pipeline turns one source document into one searchable collection of
// sentence-level passage vectors. Every step is synchronous; when Ingest
// returns, the collection answers searches.
type Pipeline struct {
	extractor core.DocumentExtractor
	embedder  core.EmbeddingProvider
	index     core.VectorIndex
}

func NewPipeline(extractor core.DocumentExtractor, embedder core.EmbeddingProvider, index core.VectorIndex) *Pipeline {
	return &Pipeline{extractor: extractor, embedder: embedder, index: index}
}

// Ingest extracts, cleans, segments, embeds, and indexes the document at
// path under documentID. A collection that already exists for the document
// is replaced wholesale; on any failure before the final insert, the old
// collection is gone and no new one is created, never a partial one.
func (p *Pipeline) Ingest(ctx context.Context, path, documentID string) (models.CollectionHandle, error) {
	var handle models.CollectionHandle

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return handle, err
	}
	if len(pages) == 0 {
		return handle, fmt.Errorf("%w: %s", core.ErrExtraction, path)
	}

	sourceFilename := filepath.Base(path)
	var passages []models.PassageRecord
	for _, page := range pages {
		cleaned := textproc.CleanText(page.Text)
		for _, sentence := range textproc.SegmentSentences(cleaned) {
			passages = append(passages, models.PassageRecord{
				ID:             nextPassageID(),
				Text:           sentence,
				PageNumber:     page.Number,
				DocumentID:     documentID,
				SourceFilename: sourceFilename,
			})
		}
	}
	if len(passages) == 0 {
		return handle, fmt.Errorf("%w: %s", core.ErrEmptyDocument, path)
	}

	texts := make([]string, len(passages))
	for i, rec := range passages {
		texts[i] = rec.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return handle, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	if len(vectors) != len(passages) {
		return handle, fmt.Errorf("%w: got %d vectors for %d passages", core.ErrEmbedding, len(vectors), len(passages))
	}

	name := CollectionName(documentID)
	exists, err := p.index.Has(ctx, name)
	if err != nil {
		return handle, fmt.Errorf("check collection %q: %w", name, err)
	}
	if exists {
		log.Printf("INGEST: replacing existing collection %q", name)
		if err := p.index.Drop(ctx, name); err != nil {
			return handle, fmt.Errorf("drop collection %q: %w", name, err)
		}
	}
	if err := p.index.Create(ctx, name, len(vectors[0])); err != nil {
		return handle, fmt.Errorf("create collection %q: %w", name, err)
	}
	if err := p.index.Insert(ctx, name, passages, vectors); err != nil {
		// Leave no half-filled collection behind.
		_ = p.index.Drop(ctx, name)
		return handle, fmt.Errorf("insert into collection %q: %w", name, err)
	}

	log.Printf("INGEST: %s -> collection %q with %d passages over %d pages",
		sourceFilename, name, len(passages), len(pages))

	return models.CollectionHandle{
		DocumentID:     documentID,
		CollectionName: name,
		SourceFilename: sourceFilename,
	}, nil
}
