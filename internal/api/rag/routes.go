package rag

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers RAG routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/upload", h.Upload)
	r.Get("/query", h.Query)
	r.Post("/chat", h.Chat)

	r.Route("/summary", func(r chi.Router) {
		r.Post("/", h.Summary)
		r.Post("/export", h.ExportSummary)
	})

	r.Get("/documents", h.ListDocuments)
	r.Delete("/clear", h.Clear)
}
