package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"deepread/internal/core"
	"deepread/internal/models"
)

// PgvectorIndex stores collections in Postgres with pgvector embeddings.
// One row in the collections table per live collection; passages cascade on
// drop, so replace-on-reingest never leaves orphans.
type PgvectorIndex struct {
	db *sql.DB
}

func NewPgvectorIndex(db *sql.DB) *PgvectorIndex {
	return &PgvectorIndex{db: db}
}

var _ core.VectorIndex = (*PgvectorIndex)(nil)

func (p *PgvectorIndex) Has(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check collection %q: %w", name, err)
	}
	return exists, nil
}

func (p *PgvectorIndex) Create(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("create collection %q: invalid dimension %d", name, dimension)
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO collections (name, dimension) VALUES ($1, $2)`, name, dimension)
	if err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}
	return nil
}

func (p *PgvectorIndex) Drop(ctx context.Context, name string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM collections WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("drop collection %q: %w", name, err)
	}
	return nil
}

// Insert writes all passages in a single transaction so a failed ingestion
// leaves nothing behind.
func (p *PgvectorIndex) Insert(ctx context.Context, name string, passages []models.PassageRecord, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("insert into %q: %d passages but %d vectors", name, len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO passages
			(id, collection_name, text, page_number, document_id, source_filename, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range passages {
		rec := &passages[i]
		vec := pgvector.NewVector(vectors[i])
		if _, err := stmt.ExecContext(ctx,
			rec.ID, name, rec.Text, rec.PageNumber, rec.DocumentID, rec.SourceFilename, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert passage %d into %q: %w", rec.ID, name, err)
		}
	}
	return tx.Commit()
}

// Search runs a cosine KNN over the collection; score is 1 - cosine distance.
func (p *PgvectorIndex) Search(ctx context.Context, name string, query []float32, k int) ([]models.RetrievedPassage, error) {
	if k <= 0 {
		k = 5
	}
	const q = `
		SELECT text, page_number, 1 - (embedding <=> $2) AS score
		FROM passages
		WHERE collection_name = $1
		ORDER BY embedding <=> $2, id
		LIMIT $3
	`
	vec := pgvector.NewVector(query)
	rows, err := p.db.QueryContext(ctx, q, name, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search collection %q: %w", name, err)
	}
	defer rows.Close()

	out := make([]models.RetrievedPassage, 0, k)
	for rows.Next() {
		var r models.RetrievedPassage
		if err := rows.Scan(&r.Text, &r.PageNumber, &r.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
