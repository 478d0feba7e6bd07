package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"deepread/internal/core"
	"deepread/internal/core/session"
	"deepread/internal/models"
)

// llmErrorAnswer is what the user sees when the language model cannot be
// reached. It is recorded as the assistant turn so the transcript reflects
// what was shown.
const llmErrorAnswer = "Sorry, I could not reach the language model to answer this question. Please try again in a moment."

// Orchestrator answers questions against an ingested document: it retrieves
// the most similar passages, folds them into a prompt together with the
// session's prior turns, and delegates generation to the language model.
type Orchestrator struct {
	sessions   *session.Store
	embedder   core.EmbeddingProvider
	index      core.VectorIndex
	llm        core.LLMProvider
	topK       int
	llmTimeout time.Duration
}

func NewOrchestrator(sessions *session.Store, embedder core.EmbeddingProvider, index core.VectorIndex, llm core.LLMProvider, topK int, llmTimeout time.Duration) *Orchestrator {
	if topK <= 0 {
		topK = 5
	}
	if llmTimeout <= 0 {
		llmTimeout = 2 * time.Minute
	}
	return &Orchestrator{
		sessions:   sessions,
		embedder:   embedder,
		index:      index,
		llm:        llm,
		topK:       topK,
		llmTimeout: llmTimeout,
	}
}

// Answer runs one conversational turn. A language-model failure does not
// fail the turn: the user gets a readable placeholder answer and the
// transcript stays consistent. A retrieval failure degrades to answering
// without context. All other failures are returned as errors.
func (o *Orchestrator) Answer(ctx context.Context, sessionID, collectionName, question string) (models.ChatResult, error) {
	var result models.ChatResult

	if strings.TrimSpace(question) == "" {
		return result, fmt.Errorf("%w: query is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(sessionID) == "" {
		return result, fmt.Errorf("%w: pdf_session_id is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(collectionName) == "" {
		return result, fmt.Errorf("%w: collection_name_for_rag is required", core.ErrInvalidRequest)
	}

	// Prior turns go to the model; the new question is appended afterwards
	// so it reaches the model exactly once, inside the augmented prompt.
	priorTurns := o.sessions.Read(sessionID)
	o.sessions.Append(sessionID, models.RoleUser, question)

	passages := o.retrieve(ctx, collectionName, question)
	prompt := BuildPrompt(question, passages)

	llmCtx, cancel := context.WithTimeout(ctx, o.llmTimeout)
	defer cancel()
	answer, err := o.llm.Chat(llmCtx, priorTurns, prompt)
	if err != nil {
		log.Printf("CHAT: language model call failed for session %s: %v", sessionID, err)
		answer = llmErrorAnswer
	}

	o.sessions.Append(sessionID, models.RoleAssistant, answer)

	result.Answer = answer
	result.RetrievedPassages = passages
	return result, nil
}

// History returns the transcript for a session, empty for unknown ids.
func (o *Orchestrator) History(sessionID string) []models.ChatMessage {
	return o.sessions.Read(sessionID)
}

// ClearHistory empties a session; unknown ids are a no-op.
func (o *Orchestrator) ClearHistory(sessionID string) {
	o.sessions.Clear(sessionID)
}

// retrieve embeds the question and searches the collection. Any failure is
// logged and yields zero passages; a context-free answer beats a failed turn.
func (o *Orchestrator) retrieve(ctx context.Context, collectionName, question string) []models.RetrievedPassage {
	vectors, err := o.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(vectors) != 1 {
		log.Printf("CHAT: query embedding failed: %v", err)
		return nil
	}

	exists, err := o.index.Has(ctx, collectionName)
	if err != nil {
		log.Printf("CHAT: collection lookup failed for %q: %v", collectionName, err)
		return nil
	}
	if !exists {
		log.Printf("CHAT: collection %q does not exist, answering without context", collectionName)
		return nil
	}

	passages, err := o.index.Search(ctx, collectionName, vectors[0], o.topK)
	if err != nil {
		log.Printf("CHAT: search failed for %q: %v", collectionName, err)
		return nil
	}
	return passages
}
