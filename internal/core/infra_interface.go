package core

import (
	"context"
	"io"

	"deepread/internal/models"
)

// DbClient defines the persistence operations the services need for the
// document registry. It abstracts Postgres so higher layers never depend on a
// specific driver.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	DeleteDocument(ctx context.Context, id string) error

	Close() error
}

// ObjectClient defines interactions with object storage for uploaded
// documents. It's abstract so local disk and S3 are interchangeable; each
// implementation resolves keys against its own bucket or root directory.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error

	// GetObjectReader streams a stored object. The caller owns the reader
	// and must close it.
	GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error)
}

// VectorIndex stores passage vectors per named collection and answers
// nearest-neighbor queries. The similarity metric is cosine on every backend,
// both at population and at query time.
type VectorIndex interface {
	// Has reports whether a collection with this name exists.
	Has(ctx context.Context, name string) (bool, error)

	// Create makes an empty collection sized to the embedding dimension.
	Create(ctx context.Context, name string, dimension int) error

	// Drop removes the collection and every passage in it. Dropping a
	// collection that does not exist is not an error.
	Drop(ctx context.Context, name string) error

	// Insert adds all passages with their vectors in one batch. vectors[i]
	// belongs to passages[i]. The collection is searchable when Insert
	// returns.
	Insert(ctx context.Context, name string, passages []models.PassageRecord, vectors [][]float32) error

	// Search returns the top k passages nearest to the query vector, best
	// match first.
	Search(ctx context.Context, name string, query []float32, k int) ([]models.RetrievedPassage, error)
}

// DocumentExtractor converts a source file into its pages, in source order.
type DocumentExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]models.PageText, error)
}
