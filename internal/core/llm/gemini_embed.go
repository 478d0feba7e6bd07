package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"deepread/internal/core"
)

// geminiMaxBatch is the per-request content limit of the batch embedding API.
const geminiMaxBatch = 100

type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder: api key not set")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiEmbedder{client: cl, modelName: modelName}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

// EmbedTexts embeds all texts in input order. Inputs beyond the API's batch
// limit are split into sub-batches fanned out concurrently, then reassembled
// at their original offsets.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	grp, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := start + geminiMaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		grp.Go(func() error {
			em := g.client.EmbeddingModel(g.modelName)
			batch := em.NewBatch()
			for _, t := range texts[start:end] {
				batch.AddContent(genai.Text(t))
			}
			resp, err := em.BatchEmbedContents(gctx, batch)
			if err != nil {
				return fmt.Errorf("gemini batch embed: %w", err)
			}
			if len(resp.Embeddings) != end-start {
				return fmt.Errorf("gemini batch embed: got %d embeddings for %d inputs", len(resp.Embeddings), end-start)
			}
			for i, e := range resp.Embeddings {
				out[start+i] = e.Values
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
