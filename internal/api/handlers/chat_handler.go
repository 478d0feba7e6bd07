package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deepread/internal/core/chat"
	"deepread/internal/models"
)

type ChatHandler struct {
	orchestrator *chat.Orchestrator
}

func NewChatHandler(orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// ChatWithPDF answers one question against an ingested document. Upstream
// model failures still return 200 with a placeholder answer; only bad
// requests and retrieval-infrastructure errors surface as HTTP errors.
func (h *ChatHandler) ChatWithPDF(w http.ResponseWriter, r *http.Request) {
	var req models.ChatWithPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.Answer(r.Context(), req.PDFSessionID, req.CollectionName, req.Query)
	if err != nil {
		log.Printf("ERROR chat session=%s: %v", req.PDFSessionID, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, models.ChatWithPDFResponse{
		Answer:            result.Answer,
		RetrievedPassages: result.RetrievedPassages,
		PDFSessionID:      req.PDFSessionID,
	})
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	messages := h.orchestrator.History(sessionID)
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, models.ChatHistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	h.orchestrator.ClearHistory(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "history cleared",
		"session_id": sessionID,
	})
}
