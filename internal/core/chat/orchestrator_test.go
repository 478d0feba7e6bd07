package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepread/internal/core"
	"deepread/internal/core/index"
	"deepread/internal/core/ingestion_engine"
	"deepread/internal/core/llm"
	"deepread/internal/core/session"
	"deepread/internal/models"
)

type fixture struct {
	orch     *Orchestrator
	sessions *session.Store
	idx      *index.MemoryIndex
	llm      *llm.MockLLM
	handle   models.CollectionHandle
}

// pageExtractor serves one fixed document.
type pageExtractor struct {
	pages []models.PageText
}

func (p *pageExtractor) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	return p.pages, nil
}

func newFixture(t *testing.T, pages []models.PageText) *fixture {
	t.Helper()
	idx := index.NewMemoryIndex()
	embedder := llm.NewMockEmbedder(16)

	pipe := ingestion_engine.NewPipeline(&pageExtractor{pages: pages}, embedder, idx)
	handle, err := pipe.Ingest(context.Background(), "/docs/test.pdf", "doc-1")
	require.NoError(t, err)

	sessions := session.NewStore(10, time.Hour)
	mockLLM := &llm.MockLLM{Reply: "A fine answer."}
	return &fixture{
		orch:     NewOrchestrator(sessions, embedder, idx, mockLLM, 5, time.Minute),
		sessions: sessions,
		idx:      idx,
		llm:      mockLLM,
		handle:   handle,
	}
}

func TestAnswerRetrievesRelevantPassage(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 3, Text: "Beta is a letter."}})

	result, err := f.orch.Answer(context.Background(), "s1", f.handle.CollectionName, "What is Beta?")
	require.NoError(t, err)
	assert.Equal(t, "A fine answer.", result.Answer)

	require.NotEmpty(t, result.RetrievedPassages)
	assert.Equal(t, "Beta is a letter.", result.RetrievedPassages[0].Text)
	assert.Equal(t, 3, result.RetrievedPassages[0].PageNumber)

	require.Len(t, f.llm.Calls, 1)
	assert.Contains(t, f.llm.Calls[0].Prompt, "Beta is a letter.")
	assert.Contains(t, f.llm.Calls[0].Prompt, "What is Beta?")
}

func TestAnswerValidation(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content."}})
	ctx := context.Background()

	cases := []struct {
		name                            string
		sessionID, collection, question string
	}{
		{"empty question", "s1", f.handle.CollectionName, ""},
		{"blank question", "s1", f.handle.CollectionName, "   "},
		{"empty session", "", f.handle.CollectionName, "hi"},
		{"empty collection", "s1", "", "hi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orch.Answer(ctx, tc.sessionID, tc.collection, tc.question)
			assert.ErrorIs(t, err, core.ErrInvalidRequest)
		})
	}
	assert.Empty(t, f.llm.Calls, "rejected requests must not reach the model")
	assert.Empty(t, f.orch.History("s1"), "rejected requests must not touch the session")
}

func TestAnswerAppendsBothTurns(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content here."}})

	_, err := f.orch.Answer(context.Background(), "s1", f.handle.CollectionName, "First question?")
	require.NoError(t, err)

	history := f.orch.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "First question?", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "A fine answer.", history[1].Content)
}

func TestAnswerSendsPriorTurnsWithoutCurrentQuestion(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content here."}})
	ctx := context.Background()

	_, err := f.orch.Answer(ctx, "s1", f.handle.CollectionName, "First?")
	require.NoError(t, err)
	_, err = f.orch.Answer(ctx, "s1", f.handle.CollectionName, "Second?")
	require.NoError(t, err)

	require.Len(t, f.llm.Calls, 2)
	assert.Equal(t, 0, f.llm.Calls[0].HistoryLen, "first turn has no prior history")
	assert.Equal(t, 2, f.llm.Calls[1].HistoryLen, "second turn sees first q/a but not itself")
}

func TestAnswerUnknownCollectionFallsBack(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content."}})

	result, err := f.orch.Answer(context.Background(), "s1", "pdf_nonexistent", "Anything?")
	require.NoError(t, err)
	assert.Empty(t, result.RetrievedPassages)

	require.Len(t, f.llm.Calls, 1)
	assert.Contains(t, f.llm.Calls[0].Prompt, "No relevant passages were found")
	assert.Contains(t, f.llm.Calls[0].Prompt, "Anything?")
}

func TestAnswerDegradedLLMPath(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content."}})
	f.llm.Err = fmt.Errorf("%w: connection refused", core.ErrUpstream)

	result, err := f.orch.Answer(context.Background(), "s1", f.handle.CollectionName, "Question?")
	require.NoError(t, err, "an upstream failure must not fail the turn")
	assert.NotEmpty(t, result.Answer)
	assert.Equal(t, llmErrorAnswer, result.Answer)

	history := f.orch.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, llmErrorAnswer, history[1].Content)
}

func TestClearHistory(t *testing.T) {
	f := newFixture(t, []models.PageText{{Number: 1, Text: "Content."}})

	_, err := f.orch.Answer(context.Background(), "s1", f.handle.CollectionName, "Question?")
	require.NoError(t, err)
	require.NotEmpty(t, f.orch.History("s1"))

	f.orch.ClearHistory("s1")
	assert.Empty(t, f.orch.History("s1"))

	// Unknown id is fine.
	f.orch.ClearHistory("never-seen")
}

func TestBuildPrompt(t *testing.T) {
	passages := []models.RetrievedPassage{
		{Text: "Beta is a letter.", PageNumber: 3, Score: 0.9},
		{Text: "Alpha comes first.", PageNumber: 1, Score: 0.7},
	}
	prompt := BuildPrompt("What is Beta?", passages)

	assert.Contains(t, prompt, "1. (page 3) Beta is a letter.")
	assert.Contains(t, prompt, "2. (page 1) Alpha comes first.")
	assert.Contains(t, prompt, "Question: What is Beta?")

	empty := BuildPrompt("What is Beta?", nil)
	assert.Contains(t, empty, "No relevant passages were found")
	assert.Contains(t, empty, "Question: What is Beta?")
}
