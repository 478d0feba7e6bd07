package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"deepread/internal/core"
	"deepread/internal/models"
)

// MockEmbedder produces deterministic unit vectors from a hash of the input,
// so retrieval ranking is reproducible without a real model.
type MockEmbedder struct {
	dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &MockEmbedder{dim: dim}
}

var _ core.EmbeddingProvider = (*MockEmbedder)(nil)

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	_ = ctx
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, deterministicVector(t, m.dim))
	}
	return out, nil
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}

// MockLLM answers deterministically; set Err to exercise the degraded path.
type MockLLM struct {
	Reply string
	Err   error

	// Calls records every prompt and the history length it was called with.
	Calls []MockLLMCall
}

type MockLLMCall struct {
	HistoryLen int
	Prompt     string
}

var _ core.LLMProvider = (*MockLLM)(nil)

func (m *MockLLM) Chat(ctx context.Context, history []models.ChatMessage, prompt string) (string, error) {
	_ = ctx
	m.Calls = append(m.Calls, MockLLMCall{HistoryLen: len(history), Prompt: prompt})
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return fmt.Sprintf("Mock answer to %d-char prompt.", len(prompt)), nil
}
