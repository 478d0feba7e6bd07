package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"deepread/internal/core"
	"deepread/internal/models"
)

// MemoryIndex is an in-process vector index with cosine similarity. It backs
// tests and small local deployments where Postgres is not available.
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dimension int
	passages  []models.PassageRecord
	vectors   [][]float32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{collections: make(map[string]*memoryCollection)}
}

var _ core.VectorIndex = (*MemoryIndex)(nil)

func (m *MemoryIndex) Has(ctx context.Context, name string) (bool, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *MemoryIndex) Create(ctx context.Context, name string, dimension int) error {
	_ = ctx
	if dimension <= 0 {
		return fmt.Errorf("create collection %q: invalid dimension %d", name, dimension)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; ok {
		return fmt.Errorf("collection %q already exists", name)
	}
	m.collections[name] = &memoryCollection{dimension: dimension}
	return nil
}

func (m *MemoryIndex) Drop(ctx context.Context, name string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *MemoryIndex) Insert(ctx context.Context, name string, passages []models.PassageRecord, vectors [][]float32) error {
	_ = ctx
	if len(passages) != len(vectors) {
		return fmt.Errorf("insert into %q: %d passages but %d vectors", name, len(passages), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("collection %q does not exist", name)
	}
	for i, v := range vectors {
		if len(v) != col.dimension {
			return fmt.Errorf("insert into %q: vector %d has dimension %d, want %d", name, i, len(v), col.dimension)
		}
	}
	col.passages = append(col.passages, passages...)
	col.vectors = append(col.vectors, vectors...)
	return nil
}

// Search ranks by cosine similarity, best first. Ties keep insertion order so
// repeated searches over the same state return identical rankings.
func (m *MemoryIndex) Search(ctx context.Context, name string, query []float32, k int) ([]models.RetrievedPassage, error) {
	_ = ctx
	if k <= 0 {
		k = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", name)
	}
	if len(query) != col.dimension {
		return nil, fmt.Errorf("search %q: query dimension %d, want %d", name, len(query), col.dimension)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(col.vectors))
	for i, v := range col.vectors {
		scores[i] = scored{idx: i, score: cosineSimilarity(query, v)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]models.RetrievedPassage, 0, k)
	for _, s := range scores[:k] {
		p := col.passages[s.idx]
		out = append(out, models.RetrievedPassage{
			Text:       p.Text,
			PageNumber: p.PageNumber,
			Score:      s.score,
		})
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
