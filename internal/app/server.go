package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"deepread/internal/api/handlers"
	"deepread/internal/config"
	"deepread/internal/core"
	"deepread/internal/core/chat"
	"deepread/internal/core/ingestion_engine"
	"deepread/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, pipeline *ingestion_engine.Pipeline, idx core.VectorIndex, orchestrator *chat.Orchestrator) *Server {
	documentService := services.NewDocumentService(db, obj, pipeline, idx, cfg.PDFDir)

	docHandler := handlers.NewDocumentHandler(documentService)
	chatHandler := handlers.NewChatHandler(orchestrator)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/process_pdf", docHandler.ProcessPDF)
		api.Post("/documents/upload", docHandler.UploadDocument)
		api.Get("/documents", docHandler.GetDocuments)
		api.Get("/documents/{id}/file", docHandler.DownloadDocument)
		api.Delete("/documents/{id}", docHandler.DeleteDocument)

		api.Post("/chat_with_pdf", chatHandler.ChatWithPDF)
		api.Get("/chat_history/{session_id}", chatHandler.GetHistory)
		api.Delete("/chat_history/{session_id}", chatHandler.ClearHistory)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
