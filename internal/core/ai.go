package core

import (
	"context"

	"deepread/internal/models"
)

// EmbeddingProvider maps a batch of texts to fixed-dimension vectors, one per
// input in input order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider is a stateless call to a text-generation service. history holds
// the prior turns of the conversation; prompt is the final (augmented) user
// message. Failures wrap ErrUpstream.
type LLMProvider interface {
	Chat(ctx context.Context, history []models.ChatMessage, prompt string) (string, error)
}
