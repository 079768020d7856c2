package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleState)
		r.Post("/flashcards/{id}/grade", s.handleGradeFlashcard)
		r.Post("/generate", s.handleGenerate)
		r.Put("/settings", s.handleUpdateSettings)
	})

	return r
}
