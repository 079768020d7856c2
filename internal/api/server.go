package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mprates/dailylesson/internal/jobs"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/repository"
	"github.com/mprates/dailylesson/internal/scheduler"
)

type Server struct {
	Lessons   repository.LessonRepository
	Cards     repository.FlashcardRepository
	Stats     repository.StatsRepository
	Settings  repository.SettingsRepository
	Scheduler *scheduler.Scheduler
	Queue     jobs.Queue

	validate *validator.Validate
}

func NewServer(
	lessons repository.LessonRepository,
	cards repository.FlashcardRepository,
	stats repository.StatsRepository,
	settings repository.SettingsRepository,
	sched *scheduler.Scheduler,
	queue jobs.Queue,
) *Server {
	return &Server{
		Lessons:   lessons,
		Cards:     cards,
		Stats:     stats,
		Settings:  settings,
		Scheduler: sched,
		Queue:     queue,
		validate:  validator.New(),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}
