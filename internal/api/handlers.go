package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/mprates/dailylesson/internal/errors"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/scheduler"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleState returns the full application state in one payload: current
// settings, the retained lesson list, every flashcard and aggregate stats.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	log.Debug("assembling state payload")

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	lessons, err := s.Lessons.Recent(ctx, scheduler.MaxLessons)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.Cards.List(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.Stats.Get(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"settings":   settings,
		"lessons":    lessons,
		"flashcards": cards,
		"stats":      stats,
	})
}

type gradePayload struct {
	Grade *int `json:"grade" validate:"required"`
}

func (s *Server) handleGradeFlashcard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	cardID := chi.URLParam(r, "id")

	var payload gradePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		handleError(w, r, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		handleError(w, r, validationError(err))
		return
	}

	log.Debug("grading flashcard %s with grade %d", cardID, *payload.Grade)
	if err := s.Scheduler.Grade(ctx, cardID, *payload.Grade); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Get(ctx, cardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		// Grading an unknown card is deliberately not an error.
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.Queue.EnqueueGeneration(); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("manual generation queued")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}

type sourcePayload struct {
	ID        string `json:"id"`
	Kind      string `json:"kind" validate:"required,oneof=text url file"`
	Title     string `json:"title" validate:"required"`
	Reference string `json:"reference"`
	URL       string `json:"url" validate:"omitempty,url"`
	Text      string `json:"text"`
	Data      []byte `json:"data"`
	MimeType  string `json:"mime_type"`
}

type settingsPayload struct {
	Mode           string          `json:"mode" validate:"required,oneof=autonomous curated"`
	Topic          string          `json:"topic" validate:"required"`
	LessonLength   string          `json:"lesson_length" validate:"required,oneof=short medium long"`
	CardsPerLesson int             `json:"cards_per_lesson" validate:"min=1,max=20"`
	BackendOrder   []string        `json:"backend_order" validate:"omitempty,dive,oneof=ondevice local cloud"`
	GenerationHour int             `json:"generation_hour" validate:"min=0,max=23"`
	Sources        []sourcePayload `json:"sources" validate:"dive"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		handleError(w, r, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		handleError(w, r, validationError(err))
		return
	}

	settings := models.Settings{
		Mode:           models.Mode(payload.Mode),
		Topic:          payload.Topic,
		LessonLength:   payload.LessonLength,
		CardsPerLesson: payload.CardsPerLesson,
		BackendOrder:   payload.BackendOrder,
		GenerationHour: payload.GenerationHour,
	}
	for _, src := range payload.Sources {
		id := src.ID
		if id == "" {
			id = uuid.NewString()
		}
		settings.Sources = append(settings.Sources, models.SourceDescriptor{
			ID:        id,
			Kind:      models.SourceKind(src.Kind),
			Title:     src.Title,
			Reference: src.Reference,
			URL:       src.URL,
			Text:      src.Text,
			Data:      src.Data,
			MimeType:  src.MimeType,
		})
	}

	if err := s.Settings.Save(ctx, settings); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("settings updated: mode=%s, topic=%q, %d sources", settings.Mode, settings.Topic, len(settings.Sources))
	writeJSON(w, r, http.StatusOK, settings)
}

// validationError converts validator failures into a client-facing error
// naming the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if ok := stderrors.As(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(strings.ToLower(fe.Field()), "failed on rule "+fe.Tag())
	}
	return apperrors.NewBadRequestError(err.Error())
}
